package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/axellelanca/linkshelf/internal/config"
	"github.com/axellelanca/linkshelf/internal/database"
	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/filestore"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/seeds"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	titles map[string]string
	err    error
	calls  int
}

func (f *fakeFetcher) FetchTitle(_ context.Context, url string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	if title, ok := f.titles[url]; ok {
		return title, nil
	}
	return "No title found", nil
}

type backend func(t *testing.T) (repository.BookmarkRepository, repository.TagRepository)

var backends = map[string]backend{
	"sql": func(t *testing.T) (repository.BookmarkRepository, repository.TagRepository) {
		cfg := &config.Config{}
		cfg.Storage.Backend = config.BackendSQL
		cfg.Database.Name = filepath.Join(t.TempDir(), "bookmarks.db")
		db, err := database.Bootstrap(cfg)
		require.NoError(t, err)
		t.Cleanup(func() { database.Close(db) })
		return repository.NewBookmarkRepository(db), repository.NewTagRepository(db)
	},
	"json": func(t *testing.T) (repository.BookmarkRepository, repository.TagRepository) {
		repo := repository.NewJSONRepository(filestore.NewStore(filepath.Join(t.TempDir(), "urls.json")), seeds.Catalog())
		return repo, repo
	},
}

// forEachBackend runs fn once per storage backend.
func forEachBackend(t *testing.T, fn func(t *testing.T, svc *BookmarkService, f *fakeFetcher)) {
	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			bookmarks, tags := open(t)
			f := &fakeFetcher{titles: map[string]string{"https://example.com": "Example Domain"}}
			fn(t, NewBookmarkService(bookmarks, tags, f), f)
		})
	}
}

func TestAddArchiveDeleteScenario(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, _ *fakeFetcher) {
		result, err := svc.AddBookmark(context.Background(), "https://example.com", "work, news, bogus")
		require.NoError(t, err)

		b := result.Bookmark
		require.NotZero(t, b.ID)
		assert.Equal(t, "Example Domain", b.Title)
		assert.Empty(t, b.FetchError)
		assert.False(t, b.IsArchived)
		assert.ElementsMatch(t, []string{"work", "news"}, b.TagNames())
		assert.Equal(t, []string{"bogus"}, result.UnknownTags)

		require.NoError(t, svc.ArchiveBookmark(b.ID))
		listing, err := svc.ListBookmarks("")
		require.NoError(t, err)
		assert.Empty(t, listing.Active)
		require.Len(t, listing.Archived, 1)
		assert.Equal(t, b.ID, listing.Archived[0].ID)

		require.NoError(t, svc.DeleteBookmark(b.ID))
		listing, err = svc.ListBookmarks("")
		require.NoError(t, err)
		assert.Empty(t, listing.Active)
		assert.Empty(t, listing.Archived)

		tags, err := svc.TagsForBookmark(b.ID)
		require.NoError(t, err)
		assert.Empty(t, tags)
	})
}

func TestAddRejectsMalformedURL(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, f *fakeFetcher) {
		for _, raw := range []string{"not a url", "", "ftp://example.com/file", "https://", "/relative/path"} {
			_, err := svc.AddBookmark(context.Background(), raw, "work")
			assert.True(t, errors.Is(err, customerrors.ErrInvalidURL), "input %q: %v", raw, err)
		}
		count, err := svc.CountBookmarks()
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, f.calls, "no fetch for rejected URLs")
	})
}

func TestAddKeepsBookmarkWhenFetchFails(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, f *fakeFetcher) {
		f.err = customerrors.ErrFetchFailed{URL: "https://down.example", Reason: "connection refused"}

		result, err := svc.AddBookmark(context.Background(), "https://down.example", "")
		require.NoError(t, err)
		assert.Equal(t, "https://down.example", result.Bookmark.Title)
		assert.Contains(t, result.Bookmark.FetchError, "connection refused")

		count, err := svc.CountBookmarks()
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})
}

func TestArchiveUnarchiveRoundTrip(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, _ *fakeFetcher) {
		result, err := svc.AddBookmark(context.Background(), "https://example.com", "learning")
		require.NoError(t, err)
		before, err := svc.GetBookmark(result.Bookmark.ID)
		require.NoError(t, err)

		require.NoError(t, svc.ArchiveBookmark(before.ID))
		archived, err := svc.GetBookmark(before.ID)
		require.NoError(t, err)
		assert.True(t, archived.IsArchived)

		require.NoError(t, svc.UnarchiveBookmark(before.ID))
		after, err := svc.GetBookmark(before.ID)
		require.NoError(t, err)

		assert.Equal(t, before.ID, after.ID)
		assert.Equal(t, before.URL, after.URL)
		assert.Equal(t, before.Title, after.Title)
		assert.Equal(t, before.IsArchived, after.IsArchived)
		assert.Equal(t, before.TagNames(), after.TagNames())
	})
}

func TestMissingBookmarkIsReported(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, _ *fakeFetcher) {
		assert.ErrorIs(t, svc.ArchiveBookmark(42), customerrors.ErrBookmarkNotFound)
		assert.ErrorIs(t, svc.UnarchiveBookmark(42), customerrors.ErrBookmarkNotFound)
		assert.ErrorIs(t, svc.DeleteBookmark(42), customerrors.ErrBookmarkNotFound)
		assert.ErrorIs(t, svc.RemoveTag(42, "work"), customerrors.ErrBookmarkNotFound)
		_, err := svc.GetBookmark(42)
		assert.ErrorIs(t, err, customerrors.ErrBookmarkNotFound)
	})
}

func TestSearch(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, f *fakeFetcher) {
		f.titles["https://go.dev/doc"] = "Documentation - The Go Programming Language"
		f.titles["https://news.ycombinator.com"] = "Hacker News"
		ctx := context.Background()

		_, err := svc.AddBookmark(ctx, "https://go.dev/doc", "")
		require.NoError(t, err)
		hn, err := svc.AddBookmark(ctx, "https://news.ycombinator.com", "news")
		require.NoError(t, err)
		require.NoError(t, svc.ArchiveBookmark(hn.Bookmark.ID))

		listing, err := svc.ListBookmarks("  PROGRAMMING ")
		require.NoError(t, err)
		assert.True(t, listing.SearchMode)
		assert.Equal(t, "PROGRAMMING", listing.Query)
		require.Len(t, listing.Active, 1)
		assert.Equal(t, "https://go.dev/doc", listing.Active[0].URL)
		assert.Empty(t, listing.Archived)

		// Matches on the URL of an archived bookmark.
		listing, err = svc.ListBookmarks("ycombinator")
		require.NoError(t, err)
		assert.Empty(t, listing.Active)
		require.Len(t, listing.Archived, 1)

		for _, q := range []string{"nothing-matches-this", "%", "_"} {
			listing, err = svc.ListBookmarks(q)
			require.NoError(t, err)
			assert.Empty(t, listing.Active, "query %q", q)
			assert.Empty(t, listing.Archived, "query %q", q)
		}

		listing, err = svc.ListBookmarks("")
		require.NoError(t, err)
		assert.False(t, listing.SearchMode)
		assert.Len(t, listing.Active, 1)
		assert.Len(t, listing.Archived, 1)
	})
}

func TestRemoveTag(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, _ *fakeFetcher) {
		result, err := svc.AddBookmark(context.Background(), "https://example.com", "work,news")
		require.NoError(t, err)
		id := result.Bookmark.ID

		require.NoError(t, svc.RemoveTag(id, "work"))
		tags, err := svc.TagsForBookmark(id)
		require.NoError(t, err)
		require.Len(t, tags, 1)
		assert.Equal(t, "news", tags[0].Name)

		// Known tag that is not attached: no-op.
		require.NoError(t, svc.RemoveTag(id, "tools"))
		require.NoError(t, svc.RemoveTag(id, "work"))

		assert.ErrorIs(t, svc.RemoveTag(id, "no-such-tag"), customerrors.ErrTagNotFound)

		tags, err = svc.TagsForBookmark(id)
		require.NoError(t, err)
		assert.Len(t, tags, 1)
	})
}

func TestSeedTagsIsIdempotent(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, _ *fakeFetcher) {
		created, err := svc.SeedTags()
		require.NoError(t, err)
		assert.Zero(t, created)

		tags, err := svc.ListTags()
		require.NoError(t, err)
		assert.Len(t, tags, len(seeds.Tags))
	})
}

func TestRefreshTitle(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, f *fakeFetcher) {
		f.err = errors.New("timeout")
		result, err := svc.AddBookmark(context.Background(), "https://example.com", "")
		require.NoError(t, err)

		failed, err := svc.FailedFetches()
		require.NoError(t, err)
		require.Len(t, failed, 1)

		ok, err := svc.RefreshTitle(context.Background(), failed[0])
		require.NoError(t, err)
		assert.False(t, ok)

		f.err = nil
		ok, err = svc.RefreshTitle(context.Background(), failed[0])
		require.NoError(t, err)
		assert.True(t, ok)

		b, err := svc.GetBookmark(result.Bookmark.ID)
		require.NoError(t, err)
		assert.Equal(t, "Example Domain", b.Title)
		assert.Empty(t, b.FetchError)

		failed, err = svc.FailedFetches()
		require.NoError(t, err)
		assert.Empty(t, failed)
	})
}

func TestImportThenExport(t *testing.T) {
	forEachBackend(t, func(t *testing.T, svc *BookmarkService, f *fakeFetcher) {
		state := &filestore.State{
			Active: []filestore.Entry{
				{URL: "https://a.example", Title: "A", Tags: []string{"work", "work", "unknown"}},
				{URL: "https://b.example", Title: "", Tags: []string{}},
			},
			Archived: []filestore.Entry{
				{URL: "https://c.example", Title: "C", Tags: []string{"news"}},
			},
		}

		ticks := 0
		report, err := svc.ImportState(state, func() { ticks++ })
		require.NoError(t, err)
		assert.Equal(t, ImportReport{Active: 2, Archived: 1}, report)
		assert.Equal(t, 3, report.Total())
		assert.Equal(t, 3, ticks)
		assert.Zero(t, f.calls, "import keeps stored titles")

		out, err := svc.ExportState()
		require.NoError(t, err)
		require.Len(t, out.Active, 2)
		require.Len(t, out.Archived, 1)
		assert.Equal(t, []string{"work"}, out.Active[0].Tags)
		assert.Equal(t, "https://b.example", out.Active[1].Title)
		assert.Equal(t, []string{"news"}, out.Archived[0].Tags)
		assert.Equal(t, "C", out.Archived[0].Title)
	})
}

func TestParseTagNames(t *testing.T) {
	assert.Equal(t, []string{"work", "news"}, ParseTagNames(" work, news ,work,, "))
	assert.Nil(t, ParseTagNames(""))
	assert.Nil(t, ParseTagNames(" , ,"))
}

func TestValidateURL(t *testing.T) {
	got, err := ValidateURL("  https://example.com/path?q=1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/path?q=1", got)

	for _, raw := range []string{"not a url", "example.com", "mailto:me@example.com", "http://"} {
		_, err := ValidateURL(raw)
		assert.ErrorIs(t, err, customerrors.ErrInvalidURL, "input %q", raw)
	}
}
