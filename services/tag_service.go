package services

import (
	"strings"

	"gorm.io/gorm"

	"bookmark_manager/database"
	"bookmark_manager/models"
)

// ParseTagLabels splits a comma-separated blob into trimmed, de-duplicated
// labels, preserving first-seen order.
func ParseTagLabels(blob string) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, part := range strings.Split(blob, ",") {
		label := strings.TrimSpace(part)
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// SetTags replaces the object's tag set with the labels parsed from blob.
func SetTags(tx *gorm.DB, taggableType string, taggableID uint, blob string) error {
	if err := tx.Where("taggable_type = ? AND taggable_id = ?", taggableType, taggableID).
		Delete(&models.Tagging{}).Error; err != nil {
		return err
	}

	for _, label := range ParseTagLabels(blob) {
		var tag models.Tag
		if err := tx.Where("name = ?", label).
			FirstOrCreate(&tag, models.Tag{Name: label}).Error; err != nil {
			return err
		}
		tagging := models.Tagging{
			TagID:        tag.ID,
			TaggableType: taggableType,
			TaggableID:   taggableID,
		}
		if err := tx.Create(&tagging).Error; err != nil {
			return err
		}
	}
	return nil
}

// ClearTags removes all taggings for an object, typically right before the
// object itself is deleted.
func ClearTags(tx *gorm.DB, taggableType string, taggableID uint) error {
	return tx.Where("taggable_type = ? AND taggable_id = ?", taggableType, taggableID).
		Delete(&models.Tagging{}).Error
}

// ListTags returns the object's tag names.
func ListTags(taggableType string, taggableID uint) ([]string, error) {
	var names []string
	err := database.DB.Model(&models.Tag{}).
		Joins("JOIN taggings ON taggings.tag_id = tags.id").
		Where("taggings.taggable_type = ? AND taggings.taggable_id = ?", taggableType, taggableID).
		Order("taggings.id").
		Pluck("tags.name", &names).Error
	return names, err
}

// ListBookmarksByTag returns bookmarks carrying the tag, newest first.
func ListBookmarksByTag(tagName string) ([]models.Bookmark, error) {
	var bookmarks []models.Bookmark
	err := database.DB.
		Joins("JOIN taggings ON taggings.taggable_type = ? AND taggings.taggable_id = bookmarks.id", models.TaggableBookmark).
		Joins("JOIN tags ON tags.id = taggings.tag_id").
		Where("tags.name = ?", tagName).
		Order("bookmarks.added_at desc").
		Find(&bookmarks).Error
	return bookmarks, err
}
