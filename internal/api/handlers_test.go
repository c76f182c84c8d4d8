package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/filestore"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/seeds"
	"github.com/axellelanca/linkshelf/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct{}

func (stubFetcher) FetchTitle(_ context.Context, rawURL string) (string, error) {
	if strings.Contains(rawURL, "down.invalid") {
		return "", customerrors.ErrFetchFailed{URL: rawURL, Reason: "connection refused"}
	}
	return "Example Domain", nil
}

func setupRouter(t *testing.T) (*gin.Engine, *services.BookmarkService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repository.NewJSONRepository(filestore.NewStore(filepath.Join(t.TempDir(), "urls.json")), seeds.Catalog())
	svc := services.NewBookmarkService(repo, repo, stubFetcher{})

	router := gin.New()
	SetupRoutes(router, svc)
	return router, svc
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func get(router *gin.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func flashCookieFrom(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == flashCookie {
			return c
		}
	}
	t.Fatalf("no %s cookie in response", flashCookie)
	return nil
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIndexRendersEmptyLists(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Nothing here.")
	assert.Contains(t, body, `data-tag="work"`)
}

func TestAddThenIndexShowsBookmarkAndFlash(t *testing.T) {
	router, svc := setupRouter(t)

	rec := postForm(router, "/add", url.Values{"url": {"https://example.com"}, "tags": {"work, bogus"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	listing, err := svc.ListBookmarks("")
	require.NoError(t, err)
	require.Len(t, listing.Active, 1)
	assert.Equal(t, []string{"work"}, listing.Active[0].TagNames())

	page := get(router, "/", flashCookieFrom(t, rec))
	require.Equal(t, http.StatusOK, page.Code)
	assert.Contains(t, page.Body.String(), "Example Domain")
	assert.Contains(t, page.Body.String(), "Unknown tags ignored: bogus.")
}

func TestAddRejectsInvalidURL(t *testing.T) {
	router, svc := setupRouter(t)

	for _, raw := range []string{"", "not a url", "ftp://example.com/file"} {
		rec := postForm(router, "/add", url.Values{"url": {raw}})
		assert.Equal(t, http.StatusSeeOther, rec.Code, raw)
		assert.Contains(t, flashCookieFrom(t, rec).Value, "valid")
	}

	count, err := svc.CountBookmarks()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAddFlashesFetchFailure(t *testing.T) {
	router, svc := setupRouter(t)

	rec := postForm(router, "/add", url.Values{"url": {"http://down.invalid/"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)

	listing, err := svc.ListBookmarks("")
	require.NoError(t, err)
	require.Len(t, listing.Active, 1)
	assert.Equal(t, "http://down.invalid/", listing.Active[0].Title)
	assert.NotEmpty(t, listing.Active[0].FetchError)
}

func TestArchiveUnarchiveDelete(t *testing.T) {
	router, svc := setupRouter(t)
	result, err := svc.AddBookmark(context.Background(), "https://example.com", "")
	require.NoError(t, err)
	id := result.Bookmark.ID

	rec := postForm(router, fmt.Sprintf("/archive/%d", id), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	listing, err := svc.ListBookmarks("")
	require.NoError(t, err)
	assert.Empty(t, listing.Active)
	assert.Len(t, listing.Archived, 1)

	rec = postForm(router, fmt.Sprintf("/unarchive/%d", id), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	listing, err = svc.ListBookmarks("")
	require.NoError(t, err)
	assert.Len(t, listing.Active, 1)
	assert.Empty(t, listing.Archived)

	rec = postForm(router, fmt.Sprintf("/delete/%d", id), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	count, err := svc.CountBookmarks()
	require.NoError(t, err)
	assert.Zero(t, count)

	// Deleting again reports the missing bookmark.
	rec = postForm(router, fmt.Sprintf("/delete/%d", id), nil)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, flashCookieFrom(t, rec).Value, "not")
}

func TestNonNumericIDIsNoOp(t *testing.T) {
	router, svc := setupRouter(t)
	_, err := svc.AddBookmark(context.Background(), "https://example.com", "")
	require.NoError(t, err)

	for _, path := range []string{"/delete/abc", "/archive/-1", "/unarchive/0"} {
		rec := postForm(router, path, nil)
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
	}
	rec := get(router, "/remove-tag/abc/work")
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	listing, err := svc.ListBookmarks("")
	require.NoError(t, err)
	assert.Len(t, listing.Active, 1)
}

func TestRemoveTagRoute(t *testing.T) {
	router, svc := setupRouter(t)
	result, err := svc.AddBookmark(context.Background(), "https://example.com", "work,news")
	require.NoError(t, err)
	id := result.Bookmark.ID

	rec := get(router, fmt.Sprintf("/remove-tag/%d/work", id))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	tags, err := svc.TagsForBookmark(id)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "news", tags[0].Name)

	rec = get(router, fmt.Sprintf("/remove-tag/%d/nope", id))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, flashCookieFrom(t, rec).Value, "Tag")
}

func TestSearchFiltersBothLists(t *testing.T) {
	router, svc := setupRouter(t)
	ctx := context.Background()
	_, err := svc.AddBookmark(ctx, "https://example.com", "")
	require.NoError(t, err)
	other, err := svc.AddBookmark(ctx, "https://golang.org", "")
	require.NoError(t, err)
	require.NoError(t, svc.ArchiveBookmark(other.Bookmark.ID))

	rec := get(router, "/search?q=golang")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `Results for "golang"`)
	assert.Contains(t, body, `href="https://golang.org"`)
	assert.NotContains(t, body, `href="https://example.com"`)
}

func TestInitTagsIsIdempotent(t *testing.T) {
	router, svc := setupRouter(t)

	for _, path := range []string{"/init-tags", "/start"} {
		rec := get(router, path)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
	}

	tags, err := svc.ListTags()
	require.NoError(t, err)
	assert.Len(t, tags, len(seeds.Tags))
}

func TestStaticAssetsAreServed(t *testing.T) {
	router, _ := setupRouter(t)

	rec := get(router, "/static/script.js")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tags-input")
}

func TestCreateBookmarkAPI(t *testing.T) {
	router, _ := setupRouter(t)

	body := `{"url":"https://example.com","tags":["work","bogus"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookmarks", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var resp struct {
		Bookmark struct {
			ID    uint   `json:"id"`
			Title string `json:"title"`
			Tags  []struct {
				Name string `json:"name"`
			} `json:"tags"`
		} `json:"bookmark"`
		UnknownTags []string `json:"unknown_tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Bookmark.ID)
	assert.Equal(t, "Example Domain", resp.Bookmark.Title)
	require.Len(t, resp.Bookmark.Tags, 1)
	assert.Equal(t, "work", resp.Bookmark.Tags[0].Name)
	assert.Equal(t, []string{"bogus"}, resp.UnknownTags)

	tagsRec := get(router, fmt.Sprintf("/api/v1/bookmarks/%d/tags", resp.Bookmark.ID))
	require.Equal(t, http.StatusOK, tagsRec.Code)
	assert.Contains(t, tagsRec.Body.String(), `"work"`)
}

func TestCreateBookmarkAPIRejectsInvalidURL(t *testing.T) {
	router, _ := setupRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookmarks", strings.NewReader(`{"url":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookmarkTagsAPINotFound(t *testing.T) {
	router, _ := setupRouter(t)

	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/bookmarks/42/tags").Code)
	assert.Equal(t, http.StatusNotFound, get(router, "/api/v1/bookmarks/abc/tags").Code)
}

func TestListAPIs(t *testing.T) {
	router, svc := setupRouter(t)
	_, err := svc.AddBookmark(context.Background(), "https://example.com", "")
	require.NoError(t, err)

	rec := get(router, "/api/v1/bookmarks?q=example")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Active     []map[string]any `json:"active"`
		Archived   []map[string]any `json:"archived"`
		SearchMode bool             `json:"search_mode"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Active, 1)
	assert.Empty(t, listing.Archived)
	assert.True(t, listing.SearchMode)

	rec = get(router, "/api/v1/tags")
	require.Equal(t, http.StatusOK, rec.Code)
	var tags struct {
		Tags []map[string]any `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tags))
	assert.Len(t, tags.Tags, len(seeds.Tags))
}
