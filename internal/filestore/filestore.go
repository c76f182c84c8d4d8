// Package filestore persists bookmarks as a single JSON document of the form
// {"active": [...], "archived": [...]}.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
)

// Entry is one bookmark inside the document. Tags are stored by name.
type Entry struct {
	ID         uint     `json:"id,omitempty"`
	URL        string   `json:"url"`
	Title      string   `json:"title"`
	FetchError string   `json:"fetch_error,omitempty"`
	Tags       []string `json:"tags"`
}

// State is the whole document.
type State struct {
	Active   []Entry `json:"active"`
	Archived []Entry `json:"archived"`
}

// Len returns the number of entries in both partitions.
func (s *State) Len() int {
	return len(s.Active) + len(s.Archived)
}

// NextID returns one more than the highest id in use.
func (s *State) NextID() uint {
	var max uint
	for _, list := range [][]Entry{s.Active, s.Archived} {
		for _, e := range list {
			if e.ID > max {
				max = e.ID
			}
		}
	}
	return max + 1
}

// assignIDs gives every entry without an id a fresh one, keeping document order.
func (s *State) assignIDs() {
	next := s.NextID()
	for _, list := range [][]Entry{s.Active, s.Archived} {
		for i := range list {
			if list[i].ID == 0 {
				list[i].ID = next
				next++
			}
		}
	}
}

// Store reads and writes the document at Path.
type Store struct {
	Path string
}

// NewStore creates a Store for the given file.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the current state. A missing or corrupt file yields an empty
// state; only I/O errors other than "not exist" are returned.
func (s *Store) Load() (*State, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", s.Path, err)
	}
	state, ok := Decode(data)
	if !ok {
		log.Printf("[FILESTORE] %s is not valid JSON, starting from an empty state", s.Path)
	}
	return state, nil
}

// Decode parses a document. The first revisions of the file held a bare array
// of entries; those are read as all active. ok is false when data is not JSON.
func Decode(data []byte) (state *State, ok bool) {
	state = &State{}
	if len(data) == 0 || !gjson.ValidBytes(data) {
		return state, len(data) == 0
	}

	root := gjson.ParseBytes(data)
	switch {
	case root.IsArray():
		state.Active = decodeEntries(root)
	case root.IsObject():
		state.Active = decodeEntries(root.Get("active"))
		state.Archived = decodeEntries(root.Get("archived"))
	}
	state.assignIDs()
	return state, true
}

func decodeEntries(list gjson.Result) []Entry {
	var entries []Entry
	list.ForEach(func(_, item gjson.Result) bool {
		url := item.Get("url").String()
		if url == "" {
			return true
		}
		entry := Entry{
			ID:         uint(item.Get("id").Uint()),
			URL:        url,
			Title:      item.Get("title").String(),
			FetchError: item.Get("fetch_error").String(),
			Tags:       []string{},
		}
		item.Get("tags").ForEach(func(_, tag gjson.Result) bool {
			if name := tag.String(); name != "" {
				entry.Tags = append(entry.Tags, name)
			}
			return true
		})
		entries = append(entries, entry)
		return true
	})
	return entries
}

// Save replaces the document. The new content is written to a temporary file
// in the same directory and renamed over the old one, so a reader sees either
// the previous or the new document, never a partial write.
func (s *Store) Save(state *State) error {
	if state.Active == nil {
		state.Active = []Entry{}
	}
	if state.Archived == nil {
		state.Archived = []Entry{}
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.Path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmpName, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	return nil
}
