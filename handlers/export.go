package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bookmark_manager/database"
	"bookmark_manager/models"
)

// ExportModel serializes bookmarks or instances as JSON, optionally filtered
// to a single id. JSON is the only format served; the XML variant this
// replaces never actually produced XML.
func ExportModel(c *gin.Context) {
	var dest interface{}
	switch c.Param("model") {
	case "bookmarks":
		dest = &[]models.Bookmark{}
	case "instances":
		dest = &[]models.BookmarkInstance{}
	default:
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown model"})
		return
	}

	query := database.DB
	if idParam := c.Query("id"); idParam != "" {
		id, err := strconv.ParseUint(idParam, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid id"})
			return
		}
		query = query.Where("id = ?", id)
	}

	if err := query.Find(dest).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, dest)
}
