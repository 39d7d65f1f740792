package services

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"bookmark_manager/database"
	"bookmark_manager/models"
)

var bookmarkOps = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bookmark_operations_total",
		Help: "Total number of bookmark operations",
	},
	[]string{"operation"}, // save, edit, delete
)

type SaveBookmarkInput struct {
	URL         string
	Description string
	Note        string
	Tags        string
}

type EditInstanceInput struct {
	Description string
	Note        string
	Tags        string
}

// SaveBookmark runs the submission workflow: reject a per-user duplicate,
// find or create the canonical bookmark for the URL, and attach a new
// instance carrying the submitter's own description/note/tags. Bookmark,
// instance and taggings are committed in one transaction; the favicon probe
// happens afterwards, outside this function.
func SaveBookmark(userID uint, in SaveBookmarkInput) (*models.BookmarkInstance, error) {
	if in.URL == "" {
		return nil, ErrEmptyURL
	}

	// The duplicate check is scoped per-user: other users bookmarking the
	// same URL is the whole point of the shared bookmark record.
	var count int64
	err := database.DB.Model(&models.BookmarkInstance{}).
		Joins("JOIN bookmarks ON bookmarks.id = bookmark_instances.bookmark_id").
		Where("bookmarks.url = ? AND bookmark_instances.user_id = ?", in.URL, userID).
		Count(&count).Error
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrAlreadyBookmarked
	}

	var instance *models.BookmarkInstance
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		bookmark, err := findOrCreateBookmark(tx, userID, in)
		if err != nil {
			return err
		}

		inst := &models.BookmarkInstance{
			BookmarkID:  bookmark.ID,
			UserID:      userID,
			Description: in.Description,
			Note:        in.Note,
			SavedAt:     time.Now().UTC(),
		}
		if err := tx.Create(inst).Error; err != nil {
			return err
		}
		if err := SetTags(tx, models.TaggableInstance, inst.ID, in.Tags); err != nil {
			return err
		}

		inst.Bookmark = *bookmark
		instance = inst
		return nil
	})
	if err != nil {
		return nil, err
	}

	bookmarkOps.WithLabelValues("save").Inc()
	return instance, nil
}

// findOrCreateBookmark returns the canonical bookmark for the URL, creating
// it from this submission when it is the first save. Two users racing on the
// same new URL collide on the unique index; the loser falls back to reading
// the winner's row.
func findOrCreateBookmark(tx *gorm.DB, userID uint, in SaveBookmarkInput) (*models.Bookmark, error) {
	var bookmark models.Bookmark
	err := tx.Where("url = ?", in.URL).First(&bookmark).Error
	if err == nil {
		return &bookmark, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	created, err := createBookmark(tx, userID, in)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}

	// Lost the race: the competing insert committed between the read and
	// the write. The savepoint rollback in createBookmark leaves the outer
	// transaction usable, so attach to the winner's row.
	bookmark = models.Bookmark{}
	if err := tx.Where("url = ?", in.URL).First(&bookmark).Error; err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// createBookmark inserts the canonical row. The insert runs in a nested
// transaction so gorm wraps it in a savepoint; on postgres a plain unique
// violation would otherwise abort the whole surrounding transaction and the
// find-then-attach retry could never run.
func createBookmark(tx *gorm.DB, userID uint, in SaveBookmarkInput) (*models.Bookmark, error) {
	now := time.Now().UTC()
	slug, err := bookmarkSlug(tx, in.Description, now)
	if err != nil {
		return nil, err
	}

	bookmark := models.Bookmark{
		URL:              in.URL,
		Description:      in.Description,
		Note:             in.Note,
		Slug:             slug,
		FaviconCheckedAt: now,
		AdderID:          &userID,
		AddedAt:          now,
	}
	err = tx.Transaction(func(tx2 *gorm.DB) error {
		if err := tx2.Create(&bookmark).Error; err != nil {
			return err
		}
		// First saver's tags double as the bookmark-level tag set.
		return SetTags(tx2, models.TaggableBookmark, bookmark.ID, in.Tags)
	})
	if err != nil {
		return nil, err
	}
	return &bookmark, nil
}

// GetInstance loads an instance scoped to its owner; any miss is NotFound so
// foreign ids are indistinguishable from absent ones.
func GetInstance(userID, instanceID uint) (*models.BookmarkInstance, error) {
	var instance models.BookmarkInstance
	err := database.DB.Preload("Bookmark").
		Where("id = ? AND user_id = ?", instanceID, userID).
		First(&instance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &instance, nil
}

// EditInstance updates the instance's own description/note/tags. The URL and
// the parent bookmark are never touched.
func EditInstance(userID, instanceID uint, in EditInstanceInput) (*models.BookmarkInstance, error) {
	var instance *models.BookmarkInstance
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var inst models.BookmarkInstance
		err := tx.Where("id = ? AND user_id = ?", instanceID, userID).First(&inst).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		inst.Description = in.Description
		inst.Note = in.Note
		if err := tx.Model(&inst).Updates(map[string]interface{}{
			"description": in.Description,
			"note":        in.Note,
		}).Error; err != nil {
			return err
		}
		if err := SetTags(tx, models.TaggableInstance, inst.ID, in.Tags); err != nil {
			return err
		}

		if err := tx.Preload("Bookmark").First(&inst, inst.ID).Error; err != nil {
			return err
		}
		instance = &inst
		return nil
	})
	if err != nil {
		return nil, err
	}

	bookmarkOps.WithLabelValues("edit").Inc()
	return instance, nil
}

// DeleteInstance removes the user's instance and, when it was the last one,
// the bookmark it pointed at. The bookmark's lifetime is exactly the union
// of its instances' lifetimes.
func DeleteInstance(userID, instanceID uint) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		var inst models.BookmarkInstance
		err := tx.Where("id = ? AND user_id = ?", instanceID, userID).First(&inst).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Delete(&inst).Error; err != nil {
			return err
		}
		if err := ClearTags(tx, models.TaggableInstance, inst.ID); err != nil {
			return err
		}

		var remaining int64
		err = tx.Model(&models.BookmarkInstance{}).
			Where("bookmark_id = ?", inst.BookmarkID).
			Count(&remaining).Error
		if err != nil {
			return err
		}
		if remaining == 0 {
			if err := ClearTags(tx, models.TaggableBookmark, inst.BookmarkID); err != nil {
				return err
			}
			if err := tx.Delete(&models.Bookmark{}, inst.BookmarkID).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	bookmarkOps.WithLabelValues("delete").Inc()
	return nil
}

// ListBookmarks returns all bookmarks, newest first.
func ListBookmarks(page, pageSize int) ([]models.Bookmark, int64, error) {
	var bookmarks []models.Bookmark
	var total int64

	if err := database.DB.Model(&models.Bookmark{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := database.DB.Limit(pageSize).Offset((page - 1) * pageSize).
		Order("added_at desc").Find(&bookmarks).Error
	if err != nil {
		return nil, 0, err
	}

	return bookmarks, total, nil
}

// ListUserInstances returns the user's saved instances, newest first.
func ListUserInstances(userID uint, page, pageSize int) ([]models.BookmarkInstance, int64, error) {
	var instances []models.BookmarkInstance
	var total int64

	err := database.DB.Model(&models.BookmarkInstance{}).
		Where("user_id = ?", userID).Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	err = database.DB.Preload("Bookmark").
		Where("user_id = ?", userID).
		Limit(pageSize).Offset((page - 1) * pageSize).
		Order("saved_at desc").Find(&instances).Error
	if err != nil {
		return nil, 0, err
	}

	return instances, total, nil
}

// GetBookmarkByDateSlug resolves the detail-page address: the slug within
// the UTC calendar day the bookmark was added. Timestamps are stored and
// windowed in UTC so the server's local zone never shifts the day boundary.
func GetBookmarkByDateSlug(year int, month time.Month, day int, slug string) (*models.Bookmark, error) {
	dayStart := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.AddDate(0, 0, 1)

	var bookmark models.Bookmark
	err := database.DB.
		Where("slug = ? AND added_at >= ? AND added_at < ?", slug, dayStart, dayEnd).
		First(&bookmark).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &bookmark, nil
}
