package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bookmark_manager/auth"
	"bookmark_manager/config"
	"bookmark_manager/models"
	"bookmark_manager/services"
)

var (
	cfg           *config.Config
	faviconClient *http.Client
)

// Init wires the handlers to the loaded configuration.
func Init(c *config.Config) {
	cfg = c
	faviconClient = services.NewFaviconClient(c.FaviconTimeout)
}

const bookmarksPage = "/bookmarks"
const yourBookmarksPage = "/api/bookmarks/mine"

type AddBookmarkRequest struct {
	URL         string `json:"url" form:"url" binding:"required,bookmarkurl"`
	Description string `json:"description" form:"description" binding:"required,max=100"`
	Note        string `json:"note" form:"note"`
	Tags        string `json:"tags" form:"tags"`
	Redirect    bool   `json:"redirect" form:"redirect"`
}

type EditInstanceRequest struct {
	Description string `json:"description" form:"description" binding:"required,max=100"`
	Note        string `json:"note" form:"note"`
	Tags        string `json:"tags" form:"tags"`
	Redirect    bool   `json:"redirect" form:"redirect"`
}

func bookmarklet() string {
	return "javascript:location.href='/api/add?url='+encodeURIComponent(location.href)+" +
		"';description='+encodeURIComponent(document.title)+';redirect=on'"
}

// ShowAddForm echoes initial form values from the query string, which is how
// the bookmarklet pre-fills a submission.
func ShowAddForm(c *gin.Context) {
	initial := gin.H{}
	for _, field := range []string{"url", "description", "redirect"} {
		if v, ok := c.GetQuery(field); ok {
			initial[field] = strings.TrimSpace(v)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"initial":     initial,
		"bookmarklet": bookmarklet(),
	})
}

// AddBookmark runs the submission workflow and then the favicon probe. The
// probe happens after the transaction has committed; whatever it does cannot
// undo the save.
func AddBookmark(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var req AddBookmarkRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if cfg.VerifyExists {
		if err := services.VerifyURLReachable(faviconClient, req.URL); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	instance, err := services.SaveBookmark(userID, services.SaveBookmarkInput{
		URL:         req.URL,
		Description: req.Description,
		Note:        req.Note,
		Tags:        req.Tags,
	})
	if err != nil {
		switch err {
		case services.ErrAlreadyBookmarked, services.ErrEmptyURL:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			zap.S().Errorf("failed to save bookmark: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save bookmark"})
		}
		return
	}

	services.CheckFavicon(faviconClient, &instance.Bookmark)

	target := bookmarksPage
	if req.Redirect {
		target = instance.Bookmark.URL
	}
	c.Header("Location", target)
	c.JSON(http.StatusFound, gin.H{
		"message":     fmt.Sprintf("You have saved bookmark \"%s\"", instance.Description),
		"redirect":    target,
		"instance_id": instance.ID,
		"bookmark_id": instance.BookmarkID,
	})
}

func ListBookmarks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	bookmarks, total, err := services.ListBookmarks(page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmarks": bookmarks,
		"total":     total,
		"page":      page,
		"size":      pageSize,
	})
}

func ListMyBookmarks(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	instances, total, err := services.ListUserInstances(userID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmark_instances": instances,
		"total":              total,
		"page":               page,
		"size":               pageSize,
	})
}

// BookmarksByTag lists all bookmarks carrying a tag, newest first.
func BookmarksByTag(c *gin.Context) {
	tagName := c.Param("name")

	bookmarks, err := services.ListBookmarksByTag(tagName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tag":       tagName,
		"bookmarks": bookmarks,
	})
}

// BookmarkDetail resolves a bookmark by (year, month, day, slug). The month
// segment accepts a number or a lowercase abbreviated name ("jan").
func BookmarkDetail(c *gin.Context) {
	year, errY := strconv.Atoi(c.Param("year"))
	month, errM := parseMonth(c.Param("month"))
	day, errD := strconv.Atoi(c.Param("day"))
	if errY != nil || errM != nil || errD != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	bookmark, err := services.GetBookmarkByDateSlug(year, month, day, c.Param("slug"))
	if err != nil {
		if err == services.ErrNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	tags, err := services.ListTags(models.TaggableBookmark, bookmark.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	absoluteURL := detailPath(bookmark)
	if cfg.AbsoluteURLIsBookmark {
		absoluteURL = bookmark.URL
	}

	c.JSON(http.StatusOK, gin.H{
		"bookmark":     bookmark,
		"tags":         tags,
		"favicon_url":  bookmark.FaviconURL(false),
		"absolute_url": absoluteURL,
	})
}

func detailPath(b *models.Bookmark) string {
	added := b.AddedAt.UTC()
	return fmt.Sprintf("/bookmarks/%d/%s/%d/%s",
		added.Year(), strings.ToLower(added.Format("Jan")), added.Day(), b.Slug)
}

func parseMonth(s string) (time.Month, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 1 || n > 12 {
			return 0, fmt.Errorf("month out of range: %d", n)
		}
		return time.Month(n), nil
	}
	t, err := time.Parse("Jan", s)
	if err != nil {
		return 0, err
	}
	return t.Month(), nil
}

// ShowEditForm returns the instance's current values. The URL is immutable
// after creation, so the form never carries it.
func ShowEditForm(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	instanceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	instance, err := services.GetInstance(userID, uint(instanceID))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	tags, err := services.ListTags(models.TaggableInstance, instance.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"initial": gin.H{
			"description": instance.Description,
			"note":        instance.Note,
			"tags":        strings.Join(tags, ", "),
		},
		"bookmarklet": bookmarklet(),
	})
}

func EditInstance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	instanceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	var req EditInstanceRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	instance, err := services.EditInstance(userID, uint(instanceID), services.EditInstanceInput{
		Description: req.Description,
		Note:        req.Note,
		Tags:        req.Tags,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}

	target := yourBookmarksPage
	if req.Redirect {
		target = instance.Bookmark.URL
	}
	c.Header("Location", target)
	c.JSON(http.StatusFound, gin.H{
		"message":     fmt.Sprintf("You have finished editing bookmark \"%s\"", instance.Description),
		"redirect":    target,
		"instance_id": instance.ID,
	})
}

func DeleteInstance(c *gin.Context) {
	userID, exists := auth.GetUserID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	instanceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
		return
	}

	if err := services.DeleteInstance(userID, uint(instanceID)); err != nil {
		respondServiceError(c, err)
		return
	}

	target := c.DefaultQuery("next", bookmarksPage)
	c.Header("Location", target)
	c.JSON(http.StatusFound, gin.H{
		"message":  "Bookmark Deleted",
		"redirect": target,
	})
}

func respondServiceError(c *gin.Context, err error) {
	switch err {
	case services.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
	case services.ErrAlreadyBookmarked, services.ErrEmptyURL:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zap.S().Errorf("bookmark operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
