// Package services contains the business logic layer for the bookmark manager
package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/fetcher"
	"github.com/axellelanca/linkshelf/internal/models"
	"github.com/axellelanca/linkshelf/internal/repository"
	"github.com/axellelanca/linkshelf/internal/seeds"
)

// BookmarkService provides business logic methods for managing bookmarks.
// It acts as an intermediary between the HTTP handlers and the repositories.
type BookmarkService struct {
	bookmarkRepo repository.BookmarkRepository
	tagRepo      repository.TagRepository
	fetcher      fetcher.TitleFetcher
}

// NewBookmarkService creates and returns a new instance of BookmarkService.
func NewBookmarkService(bookmarkRepo repository.BookmarkRepository, tagRepo repository.TagRepository, titleFetcher fetcher.TitleFetcher) *BookmarkService {
	return &BookmarkService{
		bookmarkRepo: bookmarkRepo,
		tagRepo:      tagRepo,
		fetcher:      titleFetcher,
	}
}

// AddResult is the outcome of AddBookmark.
type AddResult struct {
	Bookmark *models.Bookmark
	// UnknownTags lists the requested tag names that are not in the catalog.
	// They are not attached.
	UnknownTags []string
}

// ValidateURL trims rawURL and checks that it is an absolute http(s) URL
// with a host. It returns ErrInvalidURL otherwise.
func ValidateURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	u, err := url.ParseRequestURI(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %q", customerrors.ErrInvalidURL, rawURL)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", customerrors.ErrInvalidURL, rawURL)
	}
	return rawURL, nil
}

// ParseTagNames turns the comma-separated tag input into a list of distinct,
// trimmed, non-empty names in input order.
func ParseTagNames(raw string) []string {
	return normalizeTagNames(strings.Split(raw, ","))
}

func normalizeTagNames(names []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// resolveTags splits names into known tags and unknown names.
func (s *BookmarkService) resolveTags(names []string) ([]models.Tag, []string, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}
	tags, err := s.tagRepo.GetTagsByNames(names)
	if err != nil {
		return nil, nil, err
	}
	known := make(map[string]bool, len(tags))
	for _, tag := range tags {
		known[tag.Name] = true
	}
	var unknown []string
	for _, name := range names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	return tags, unknown, nil
}

// fetchTitle never fails: on error the URL stands in for the title and the
// error text is returned separately.
func (s *BookmarkService) fetchTitle(ctx context.Context, rawURL string) (title, fetchErr string) {
	title, err := s.fetcher.FetchTitle(ctx, rawURL)
	if err != nil {
		log.Printf("Title fetch failed for %s: %v", rawURL, err)
		return rawURL, err.Error()
	}
	return title, ""
}

// AddBookmark validates rawURL, fetches the page title and stores a new active
// bookmark linked to the known tags among the comma-separated rawTags.
func (s *BookmarkService) AddBookmark(ctx context.Context, rawURL, rawTags string) (*AddResult, error) {
	return s.AddBookmarkWithTags(ctx, rawURL, ParseTagNames(rawTags))
}

// AddBookmarkWithTags is AddBookmark with the tag names already split.
func (s *BookmarkService) AddBookmarkWithTags(ctx context.Context, rawURL string, tagNames []string) (*AddResult, error) {
	validURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	tags, unknown, err := s.resolveTags(normalizeTagNames(tagNames))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(unknown) > 0 {
		log.Printf("Ignoring unknown tag(s) %v for %s", unknown, validURL)
	}

	title, fetchErr := s.fetchTitle(ctx, validURL)
	bookmark := &models.Bookmark{
		URL:        validURL,
		Title:      title,
		FetchError: fetchErr,
	}

	tagIDs := make([]uint, 0, len(tags))
	for _, tag := range tags {
		tagIDs = append(tagIDs, tag.ID)
	}
	if err := s.bookmarkRepo.CreateBookmark(bookmark, tagIDs); err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	return &AddResult{Bookmark: bookmark, UnknownTags: unknown}, nil
}

// ListBookmarks returns both partitions, filtered by query when it is not blank.
func (s *BookmarkService) ListBookmarks(query string) (*models.Listing, error) {
	query = strings.TrimSpace(query)

	active, err := s.bookmarkRepo.ListBookmarks(false, query)
	if err != nil {
		return nil, err
	}
	archived, err := s.bookmarkRepo.ListBookmarks(true, query)
	if err != nil {
		return nil, err
	}

	return &models.Listing{
		Active:     active,
		Archived:   archived,
		Query:      query,
		SearchMode: query != "",
	}, nil
}

// GetBookmark retrieves one bookmark with its tags.
func (s *BookmarkService) GetBookmark(id uint) (*models.Bookmark, error) {
	return s.bookmarkRepo.GetBookmarkByID(id)
}

// ArchiveBookmark moves a bookmark to the archived partition.
func (s *BookmarkService) ArchiveBookmark(id uint) error {
	return s.bookmarkRepo.SetArchived(id, true)
}

// UnarchiveBookmark moves a bookmark back to the active partition.
func (s *BookmarkService) UnarchiveBookmark(id uint) error {
	return s.bookmarkRepo.SetArchived(id, false)
}

// DeleteBookmark removes a bookmark and its tag links.
func (s *BookmarkService) DeleteBookmark(id uint) error {
	return s.bookmarkRepo.DeleteBookmark(id)
}

// RemoveTag detaches tagName from a bookmark. A tag that exists but is not
// attached is a no-op; an unknown bookmark or tag is reported.
func (s *BookmarkService) RemoveTag(id uint, tagName string) error {
	bookmark, err := s.bookmarkRepo.GetBookmarkByID(id)
	if err != nil {
		return err
	}
	tagName = strings.TrimSpace(tagName)
	tag, err := s.tagRepo.GetTagByName(tagName)
	if err != nil {
		return err
	}
	if !bookmark.HasTag(tagName) {
		return nil
	}
	if _, err := s.bookmarkRepo.DetachTag(id, tag.ID); err != nil {
		return err
	}
	return nil
}

// TagsForBookmark returns the tags attached to a bookmark, empty when the
// bookmark does not exist.
func (s *BookmarkService) TagsForBookmark(id uint) ([]models.Tag, error) {
	return s.bookmarkRepo.GetTagsForBookmark(id)
}

// ListTags returns the tag catalog.
func (s *BookmarkService) ListTags() ([]models.Tag, error) {
	return s.tagRepo.GetAllTags()
}

// SeedTags creates the missing seed tags and returns how many were created.
func (s *BookmarkService) SeedTags() (int, error) {
	return s.tagRepo.EnsureTags(seeds.Tags)
}

// CountBookmarks returns the number of stored bookmarks.
func (s *BookmarkService) CountBookmarks() (int64, error) {
	return s.bookmarkRepo.CountBookmarks()
}

// FailedFetches returns the bookmarks whose last title fetch failed.
func (s *BookmarkService) FailedFetches() ([]models.Bookmark, error) {
	return s.bookmarkRepo.GetFailedFetches()
}

// RefreshTitle fetches the title of bookmark again and stores the result.
// It reports whether the fetch succeeded.
func (s *BookmarkService) RefreshTitle(ctx context.Context, bookmark models.Bookmark) (bool, error) {
	title, err := s.fetcher.FetchTitle(ctx, bookmark.URL)
	if err != nil {
		if updateErr := s.bookmarkRepo.UpdateTitle(bookmark.ID, bookmark.Title, err.Error()); updateErr != nil {
			return false, updateErr
		}
		return false, nil
	}
	if err := s.bookmarkRepo.UpdateTitle(bookmark.ID, title, ""); err != nil {
		return false, err
	}
	return true, nil
}
