package repository

import (
	"errors"
	"fmt"
	"sync"

	customerrors "github.com/axellelanca/linkshelf/internal/errors"
	"github.com/axellelanca/linkshelf/internal/filestore"
	"github.com/axellelanca/linkshelf/internal/models"
)

// JSONRepository stores bookmarks in a filestore document and keeps the tag
// catalog in memory. It implements both BookmarkRepository and TagRepository.
// Every call loads the document, and every mutation saves it back, under one
// mutex so that concurrent requests in this process do not lose updates.
type JSONRepository struct {
	store *filestore.Store
	mu    sync.Mutex

	tagsMu sync.RWMutex
	tags   []models.Tag
}

// NewJSONRepository crée un JSONRepository sur store avec le catalogue catalog.
func NewJSONRepository(store *filestore.Store, catalog []models.Tag) *JSONRepository {
	tags := make([]models.Tag, len(catalog))
	copy(tags, catalog)
	for i := range tags {
		if tags[i].ID == 0 {
			tags[i].ID = uint(i + 1)
		}
	}
	return &JSONRepository{store: store, tags: tags}
}

// update runs fn on the loaded state and saves it when fn returns nil.
func (r *JSONRepository) update(fn func(state *filestore.State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, err := r.store.Load()
	if err != nil {
		return err
	}
	if err := fn(state); err != nil {
		return err
	}
	return r.store.Save(state)
}

func (r *JSONRepository) read() (*filestore.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.store.Load()
}

// locate returns the partition holding id and the index in it.
func locate(state *filestore.State, id uint) (archived bool, index int, ok bool) {
	for i, e := range state.Active {
		if e.ID == id {
			return false, i, true
		}
	}
	for i, e := range state.Archived {
		if e.ID == id {
			return true, i, true
		}
	}
	return false, -1, false
}

func (r *JSONRepository) tagByID(id uint) (models.Tag, bool) {
	r.tagsMu.RLock()
	defer r.tagsMu.RUnlock()
	for _, tag := range r.tags {
		if tag.ID == id {
			return tag, true
		}
	}
	return models.Tag{}, false
}

func (r *JSONRepository) tagByName(name string) (models.Tag, bool) {
	r.tagsMu.RLock()
	defer r.tagsMu.RUnlock()
	for _, tag := range r.tags {
		if tag.Name == name {
			return tag, true
		}
	}
	return models.Tag{}, false
}

func (r *JSONRepository) toModel(e filestore.Entry, archived bool) models.Bookmark {
	bookmark := models.Bookmark{
		ID:         e.ID,
		URL:        e.URL,
		Title:      e.Title,
		FetchError: e.FetchError,
		IsArchived: archived,
		Tags:       []models.Tag{},
	}
	for _, name := range e.Tags {
		if tag, ok := r.tagByName(name); ok {
			bookmark.Tags = append(bookmark.Tags, tag)
		}
	}
	return bookmark
}

// CreateBookmark ajoute une entrée à la fin de sa partition.
func (r *JSONRepository) CreateBookmark(bookmark *models.Bookmark, tagIDs []uint) error {
	entry := filestore.Entry{URL: bookmark.URL, Title: bookmark.Title, FetchError: bookmark.FetchError, Tags: []string{}}
	seen := make(map[uint]bool, len(tagIDs))
	for _, id := range tagIDs {
		tag, ok := r.tagByID(id)
		if !ok {
			return fmt.Errorf("failed to link tag %d: %w", id, customerrors.ErrTagNotFound)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		entry.Tags = append(entry.Tags, tag.Name)
	}

	return r.update(func(state *filestore.State) error {
		entry.ID = state.NextID()
		if bookmark.IsArchived {
			state.Archived = append(state.Archived, entry)
		} else {
			state.Active = append(state.Active, entry)
		}
		*bookmark = r.toModel(entry, bookmark.IsArchived)
		return nil
	})
}

// GetBookmarkByID récupère une entrée par son id.
func (r *JSONRepository) GetBookmarkByID(id uint) (*models.Bookmark, error) {
	state, err := r.read()
	if err != nil {
		return nil, err
	}
	archived, i, ok := locate(state, id)
	if !ok {
		return nil, customerrors.ErrBookmarkNotFound
	}
	list := state.Active
	if archived {
		list = state.Archived
	}
	bookmark := r.toModel(list[i], archived)
	return &bookmark, nil
}

// ListBookmarks récupère une partition, filtrée ou non.
func (r *JSONRepository) ListBookmarks(archived bool, query string) ([]models.Bookmark, error) {
	state, err := r.read()
	if err != nil {
		return nil, err
	}
	list := state.Active
	if archived {
		list = state.Archived
	}
	var bookmarks []models.Bookmark
	for _, e := range list {
		if matchesQuery(e.URL, e.Title, query) {
			bookmarks = append(bookmarks, r.toModel(e, archived))
		}
	}
	return bookmarks, nil
}

// SetArchived déplace l'entrée vers l'autre partition si nécessaire.
func (r *JSONRepository) SetArchived(id uint, archived bool) error {
	return r.update(func(state *filestore.State) error {
		current, i, ok := locate(state, id)
		if !ok {
			return customerrors.ErrBookmarkNotFound
		}
		if current == archived {
			return nil
		}
		if archived {
			entry := state.Active[i]
			state.Active = append(state.Active[:i], state.Active[i+1:]...)
			state.Archived = append(state.Archived, entry)
		} else {
			entry := state.Archived[i]
			state.Archived = append(state.Archived[:i], state.Archived[i+1:]...)
			state.Active = append(state.Active, entry)
		}
		return nil
	})
}

// DeleteBookmark supprime l'entrée et donc ses tags.
func (r *JSONRepository) DeleteBookmark(id uint) error {
	return r.update(func(state *filestore.State) error {
		archived, i, ok := locate(state, id)
		if !ok {
			return customerrors.ErrBookmarkNotFound
		}
		if archived {
			state.Archived = append(state.Archived[:i], state.Archived[i+1:]...)
		} else {
			state.Active = append(state.Active[:i], state.Active[i+1:]...)
		}
		return nil
	})
}

// DetachTag retire un tag d'une entrée.
func (r *JSONRepository) DetachTag(bookmarkID, tagID uint) (bool, error) {
	tag, ok := r.tagByID(tagID)
	if !ok {
		return false, nil
	}
	removed := false
	err := r.update(func(state *filestore.State) error {
		archived, i, ok := locate(state, bookmarkID)
		if !ok {
			return nil
		}
		entry := &state.Active[i]
		if archived {
			entry = &state.Archived[i]
		}
		kept := entry.Tags[:0]
		for _, name := range entry.Tags {
			if name == tag.Name {
				removed = true
				continue
			}
			kept = append(kept, name)
		}
		entry.Tags = kept
		return nil
	})
	return removed, err
}

// GetTagsForBookmark récupère les tags d'une entrée; vide si l'entrée n'existe pas.
func (r *JSONRepository) GetTagsForBookmark(id uint) ([]models.Tag, error) {
	bookmark, err := r.GetBookmarkByID(id)
	if errors.Is(err, customerrors.ErrBookmarkNotFound) {
		return []models.Tag{}, nil
	}
	if err != nil {
		return nil, err
	}
	return bookmark.Tags, nil
}

// GetFailedFetches récupère les entrées avec une erreur de récupération.
func (r *JSONRepository) GetFailedFetches() ([]models.Bookmark, error) {
	state, err := r.read()
	if err != nil {
		return nil, err
	}
	var bookmarks []models.Bookmark
	for _, archived := range []bool{false, true} {
		list := state.Active
		if archived {
			list = state.Archived
		}
		for _, e := range list {
			if e.FetchError != "" {
				bookmarks = append(bookmarks, r.toModel(e, archived))
			}
		}
	}
	return bookmarks, nil
}

// UpdateTitle remplace le titre et l'erreur de récupération.
func (r *JSONRepository) UpdateTitle(id uint, title, fetchError string) error {
	return r.update(func(state *filestore.State) error {
		archived, i, ok := locate(state, id)
		if !ok {
			return customerrors.ErrBookmarkNotFound
		}
		entry := &state.Active[i]
		if archived {
			entry = &state.Archived[i]
		}
		entry.Title = title
		entry.FetchError = fetchError
		return nil
	})
}

// CountBookmarks compte les entrées des deux partitions.
func (r *JSONRepository) CountBookmarks() (int64, error) {
	state, err := r.read()
	if err != nil {
		return 0, err
	}
	return int64(state.Len()), nil
}

// GetAllTags retourne le catalogue.
func (r *JSONRepository) GetAllTags() ([]models.Tag, error) {
	r.tagsMu.RLock()
	defer r.tagsMu.RUnlock()
	tags := make([]models.Tag, len(r.tags))
	copy(tags, r.tags)
	return tags, nil
}

// GetTagsByNames retourne les tags connus parmi names.
func (r *JSONRepository) GetTagsByNames(names []string) ([]models.Tag, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}
	r.tagsMu.RLock()
	defer r.tagsMu.RUnlock()
	var tags []models.Tag
	for _, tag := range r.tags {
		if wanted[tag.Name] {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// GetTagByName retourne un tag du catalogue.
func (r *JSONRepository) GetTagByName(name string) (*models.Tag, error) {
	tag, ok := r.tagByName(name)
	if !ok {
		return nil, customerrors.ErrTagNotFound
	}
	return &tag, nil
}

// EnsureTags ajoute au catalogue en mémoire les tags absents.
func (r *JSONRepository) EnsureTags(tags []models.Tag) (int, error) {
	r.tagsMu.Lock()
	defer r.tagsMu.Unlock()

	known := make(map[string]bool, len(r.tags))
	for _, tag := range r.tags {
		known[tag.Name] = true
	}
	created := 0
	for _, tag := range tags {
		if known[tag.Name] {
			continue
		}
		known[tag.Name] = true
		tag.ID = uint(len(r.tags) + 1)
		r.tags = append(r.tags, tag)
		created++
	}
	return created, nil
}
