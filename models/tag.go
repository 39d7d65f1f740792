package models

import (
	"time"
)

// Taggable types stored in taggings.taggable_type. Both the shared Bookmark
// and each per-user BookmarkInstance carry their own tag set.
const (
	TaggableBookmark = "bookmark"
	TaggableInstance = "bookmark_instance"
)

type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"unique;not null"`
	CreatedAt time.Time `json:"created_at"`
	Taggings  []Tagging `json:"-" gorm:"foreignKey:TagID"`
}

type Tagging struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	TagID        uint   `json:"tag_id" gorm:"index;not null"`
	TaggableType string `json:"taggable_type" gorm:"index:idx_taggable;not null"`
	TaggableID   uint   `json:"taggable_id" gorm:"index:idx_taggable;not null"`
}
