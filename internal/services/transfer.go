package services

import (
	"log"

	"github.com/axellelanca/linkshelf/internal/filestore"
	"github.com/axellelanca/linkshelf/internal/models"
)

// ImportReport counts the outcome of ImportState.
type ImportReport struct {
	Active   int
	Archived int
	Failed   int
}

// Total returns the number of imported bookmarks.
func (r ImportReport) Total() int {
	return r.Active + r.Archived
}

// ImportState copies every entry of a JSON document into the repository,
// keeping stored titles (no page is fetched). Tag names that are not in the
// catalog are dropped. A failing entry is logged and skipped; progress, when
// not nil, is called once per entry.
func (s *BookmarkService) ImportState(state *filestore.State, progress func()) (ImportReport, error) {
	var report ImportReport

	catalog, err := s.tagRepo.GetAllTags()
	if err != nil {
		return report, err
	}
	tagIDs := make(map[string]uint, len(catalog))
	for _, tag := range catalog {
		tagIDs[tag.Name] = tag.ID
	}

	importList := func(entries []filestore.Entry, archived bool) {
		for _, entry := range entries {
			if progress != nil {
				progress()
			}
			var ids []uint
			for _, name := range entry.Tags {
				if id, ok := tagIDs[name]; ok {
					ids = append(ids, id)
				}
			}
			title := entry.Title
			if title == "" {
				title = entry.URL
			}
			bookmark := &models.Bookmark{
				URL:        entry.URL,
				Title:      title,
				FetchError: entry.FetchError,
				IsArchived: archived,
			}
			if err := s.bookmarkRepo.CreateBookmark(bookmark, ids); err != nil {
				log.Printf("Error migrating URL %s: %v", entry.URL, err)
				report.Failed++
				continue
			}
			if archived {
				report.Archived++
			} else {
				report.Active++
			}
		}
	}

	importList(state.Active, false)
	importList(state.Archived, true)
	return report, nil
}

// ExportState builds a JSON document from the repository contents.
func (s *BookmarkService) ExportState() (*filestore.State, error) {
	listing, err := s.ListBookmarks("")
	if err != nil {
		return nil, err
	}
	state := &filestore.State{
		Active:   toEntries(listing.Active),
		Archived: toEntries(listing.Archived),
	}
	return state, nil
}

func toEntries(bookmarks []models.Bookmark) []filestore.Entry {
	entries := make([]filestore.Entry, 0, len(bookmarks))
	for _, b := range bookmarks {
		entries = append(entries, filestore.Entry{
			ID:         b.ID,
			URL:        b.URL,
			Title:      b.Title,
			FetchError: b.FetchError,
			Tags:       b.TagNames(),
		})
	}
	return entries
}
