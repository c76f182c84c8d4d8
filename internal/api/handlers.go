package api

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/services"
	"github.com/gin-gonic/gin"
)

//go:embed web/templates/*.html web/static/*
var webFS embed.FS

// SetupRoutes configures all Gin routes and injects the bookmark service.
// Parameters:
//   - router: Gin engine instance to configure routes on
//   - bookmarkService: business logic service for bookmark operations
func SetupRoutes(router *gin.Engine, bookmarkService *services.BookmarkService) {
	templates := template.New("").Funcs(template.FuncMap{"dict": dict})
	router.SetHTMLTemplate(template.Must(templates.ParseFS(webFS, "web/templates/*.html")))

	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err) // the embed pattern above guarantees the directory
	}
	router.StaticFS("/static", http.FS(static))

	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	// HTML pages; every mutation redirects back to the index
	router.GET("/", IndexHandler(bookmarkService))
	router.GET("/search", IndexHandler(bookmarkService))
	router.POST("/add", AddBookmarkHandler(bookmarkService))
	router.POST("/delete/:id", BookmarkActionHandler(bookmarkService.DeleteBookmark, "Bookmark deleted."))
	router.POST("/archive/:id", BookmarkActionHandler(bookmarkService.ArchiveBookmark, "Bookmark archived."))
	router.POST("/unarchive/:id", BookmarkActionHandler(bookmarkService.UnarchiveBookmark, "Bookmark restored."))
	router.GET("/remove-tag/:id/:tag", RemoveTagHandler(bookmarkService))
	router.GET("/init-tags", InitTagsHandler(bookmarkService))
	router.GET("/start", InitTagsHandler(bookmarkService))

	// API Routes Group - JSON endpoints under /api/v1 prefix
	api := router.Group("/api/v1")
	{
		api.GET("/bookmarks", ListBookmarksHandler(bookmarkService))
		api.POST("/bookmarks", CreateBookmarkHandler(bookmarkService))
		api.GET("/bookmarks/:id/tags", BookmarkTagsHandler(bookmarkService))
		api.GET("/tags", ListTagsHandler(bookmarkService))
	}
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// AddBookmarkForm is the form posted by the index page.
type AddBookmarkForm struct {
	URL  string `form:"url" binding:"required,url"`
	Tags string `form:"tags"`
}

// IndexHandler renders both bookmark lists. The optional q parameter turns
// the page into search results.
func IndexHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		listing, err := bookmarkService.ListBookmarks(c.Query("q"))
		if err != nil {
			log.Printf("Error listing bookmarks: %v", err)
			c.String(http.StatusInternalServerError, "Failed to load bookmarks")
			return
		}
		tags, err := bookmarkService.ListTags()
		if err != nil {
			log.Printf("Error listing tags: %v", err)
			c.String(http.StatusInternalServerError, "Failed to load tags")
			return
		}

		c.HTML(http.StatusOK, "index.html", gin.H{
			"Listing": listing,
			"Tags":    tags,
			"Flash":   popFlash(c),
		})
	}
}

// AddBookmarkHandler creates a bookmark from the posted form. A malformed URL
// is rejected before anything is stored.
func AddBookmarkHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form AddBookmarkForm
		if err := c.ShouldBind(&form); err != nil {
			setFlash(c, "Please enter a valid URL.")
			redirectHome(c)
			return
		}

		result, err := bookmarkService.AddBookmark(c.Request.Context(), form.URL, form.Tags)
		if err != nil {
			if !errors.Is(err, customerrors.ErrInvalidURL) {
				log.Printf("Error adding bookmark %s: %v", form.URL, err)
			}
			setFlash(c, flashMessage(err))
			redirectHome(c)
			return
		}

		switch {
		case len(result.UnknownTags) > 0:
			setFlash(c, fmt.Sprintf("Bookmark added. Unknown tags ignored: %s.", strings.Join(result.UnknownTags, ", ")))
		case result.Bookmark.FetchError != "":
			setFlash(c, "Bookmark added, but its title could not be fetched.")
		default:
			setFlash(c, "Bookmark added.")
		}
		redirectHome(c)
	}
}

// BookmarkActionHandler applies action to the bookmark named by the :id
// path parameter, then redirects to the index.
func BookmarkActionHandler(action func(id uint) error, success string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			redirectHome(c)
			return
		}
		if err := action(id); err != nil {
			logUnexpected(c, err)
			setFlash(c, flashMessage(err))
			redirectHome(c)
			return
		}
		setFlash(c, success)
		redirectHome(c)
	}
}

// RemoveTagHandler detaches the :tag tag from the :id bookmark.
func RemoveTagHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			redirectHome(c)
			return
		}
		if err := bookmarkService.RemoveTag(id, c.Param("tag")); err != nil {
			logUnexpected(c, err)
			setFlash(c, flashMessage(err))
		}
		redirectHome(c)
	}
}

// InitTagsHandler creates the seed tags if they are missing.
func InitTagsHandler(bookmarkService *services.BookmarkService) gin.HandlerFunc {
	return func(c *gin.Context) {
		created, err := bookmarkService.SeedTags()
		if err != nil {
			logUnexpected(c, err)
			setFlash(c, flashMessage(err))
			redirectHome(c)
			return
		}
		if created > 0 {
			setFlash(c, fmt.Sprintf("%d tag(s) created.", created))
		}
		redirectHome(c)
	}
}

// dict builds a map from alternating keys and values so one template block can
// render both bookmark lists.
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, errors.New("dict expects key/value pairs")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict key %v is not a string", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

func redirectHome(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, "/")
}

func parseID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func flashMessage(err error) string {
	switch {
	case errors.Is(err, customerrors.ErrInvalidURL):
		return "Please enter a valid URL."
	case errors.Is(err, customerrors.ErrBookmarkNotFound):
		return "Bookmark not found."
	case errors.Is(err, customerrors.ErrTagNotFound):
		return "Tag not found."
	default:
		return "Something went wrong, please try again."
	}
}

func logUnexpected(c *gin.Context, err error) {
	if errors.Is(err, customerrors.ErrBookmarkNotFound) || errors.Is(err, customerrors.ErrTagNotFound) {
		return
	}
	log.Printf("Error handling %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
}
