package services

import (
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"bookmark_manager/models"
)

// bookmarkSlug derives a detail-page slug from the description. Detail pages
// are addressed by (date, slug), so the slug only has to be unique among
// bookmarks added the same day; collisions get a numeric suffix.
func bookmarkSlug(tx *gorm.DB, description string, addedAt time.Time) (string, error) {
	base := slug.Make(description)
	if base == "" {
		base = "bookmark"
	}

	addedAt = addedAt.UTC()
	dayStart := time.Date(addedAt.Year(), addedAt.Month(), addedAt.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	candidate := base
	for i := 2; ; i++ {
		var count int64
		err := tx.Model(&models.Bookmark{}).
			Where("slug = ? AND added_at >= ? AND added_at < ?", candidate, dayStart, dayEnd).
			Count(&count).Error
		if err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}
