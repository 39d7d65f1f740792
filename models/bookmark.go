package models

import (
	"net/url"
	"time"
)

// Bookmark is the canonical record for a URL. The first user to save a URL
// creates it; later savers attach their own BookmarkInstance to it. A
// bookmark with no remaining instances is deleted together with the last one.
type Bookmark struct {
	ID               uint      `json:"id" gorm:"primaryKey"`
	URL              string    `json:"url" gorm:"unique;not null"`
	Description      string    `json:"description" gorm:"size:100"`
	Note             string    `json:"note"`
	Slug             string    `json:"slug" gorm:"index"`
	HasFavicon       bool      `json:"has_favicon"`
	FaviconCheckedAt time.Time `json:"favicon_checked_at"`
	AdderID          *uint     `json:"adder_id"`
	AddedAt          time.Time `json:"added_at" gorm:"index"`

	Instances []BookmarkInstance `json:"instances,omitempty" gorm:"foreignKey:BookmarkID"`
}

// FaviconURL returns the favicon location for the bookmark's site, or ""
// when no favicon is known. With force=true the URL is derived even if no
// favicon has been recorded, which is what the probe itself needs.
func (b *Bookmark) FaviconURL(force bool) string {
	if !b.HasFavicon && !force {
		return ""
	}
	u, err := url.Parse(b.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/favicon.ico"
}

type BookmarkInstance struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	BookmarkID  uint      `json:"bookmark_id" gorm:"index;not null"`
	UserID      uint      `json:"user_id" gorm:"index;not null"`
	Description string    `json:"description" gorm:"size:100"`
	Note        string    `json:"note"`
	SavedAt     time.Time `json:"saved_at"`

	Bookmark Bookmark `json:"bookmark,omitempty" gorm:"foreignKey:BookmarkID"`
}
