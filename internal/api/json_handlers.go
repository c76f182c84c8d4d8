package api

import (
	"errors"
	"log"
	"net/http"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/services"
	"github.com/gin-gonic/gin"
)

// CreateBookmarkRequest represents the JSON request body for creating a bookmark
type CreateBookmarkRequest struct {
	URL  string   `json:"url" binding:"required,url"`
	Tags []string `json:"tags"`
}

// CreateBookmarkResponse is returned with 201 Created
type CreateBookmarkResponse struct {
	Bookmark    *models.Bookmark `json:"bookmark"`
	UnknownTags []string         `json:"unknown_tags,omitempty"`
}

// ListBookmarksHandler returns both partitions, filtered by the q parameter.
func ListBookmarksHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := bookmarkService.ListBookmarks(c.Query("q"))
		if err != nil {
			log.Printf("Error listing bookmarks: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, listing)
	}
}

// CreateBookmarkHandler handles the creation of one bookmark
func CreateBookmarkHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateBookmarkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		result, err := bookmarkService.AddBookmarkWithTags(c.Request.Context(), req.URL, req.Tags)
		if err != nil {
			if errors.Is(err, customerrors.ErrInvalidURL) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Printf("Error creating bookmark for %s: %v", req.URL, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create bookmark"})
			return
		}

		c.JSON(http.StatusCreated, CreateBookmarkResponse{
			Bookmark:    result.Bookmark,
			UnknownTags: result.UnknownTags,
		})
	}
}

// BookmarkTagsHandler returns the tags attached to one bookmark
func BookmarkTagsHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
			return
		}
		bookmark, err := bookmarkService.GetBookmark(id)
		if err != nil {
			if errors.Is(err, customerrors.ErrBookmarkNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Bookmark not found"})
				return
			}
			log.Printf("Error retrieving bookmark %d: %v", id, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookmark_id": bookmark.ID, "tags": bookmark.Tags})
	}
}

// ListTagsHandler returns the tag catalog
func ListTagsHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := bookmarkService.ListTags()
		if err != nil {
			log.Printf("Error listing tags: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"tags": tags})
	}
}
