package models

import "time"

// Bookmark is a saved URL together with the title fetched from the page.
type Bookmark struct {
	ID  uint   `gorm:"primaryKey" json:"id"`
	URL string `gorm:"not null" json:"url"`

	// Title is always set: the page title, "No title found", or the URL itself
	// when the page could not be fetched.
	Title string `gorm:"not null" json:"title"`

	// FetchError holds the reason the last title fetch failed, empty on success.
	FetchError string `json:"fetch_error,omitempty"`

	// IsArchived splits bookmarks into the active and archived partitions
	// - index: both partitions are listed on every page render
	IsArchived bool `gorm:"not null;default:false;index" json:"is_archived"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Tags goes through the bookmark_tags join table (see BookmarkTag)
	Tags []Tag `gorm:"many2many:bookmark_tags;" json:"tags"`
}

// HasTag reports whether a tag with the given name is attached.
func (b *Bookmark) HasTag(name string) bool {
	for _, tag := range b.Tags {
		if tag.Name == name {
			return true
		}
	}
	return false
}

// TagNames returns the names of the attached tags in order.
func (b *Bookmark) TagNames() []string {
	names := make([]string, 0, len(b.Tags))
	for _, tag := range b.Tags {
		names = append(names, tag.Name)
	}
	return names
}

// Listing is what the index page and the listing API render.
type Listing struct {
	Active     []Bookmark `json:"active"`
	Archived   []Bookmark `json:"archived"`
	Query      string     `json:"query,omitempty"`
	SearchMode bool       `json:"search_mode"`
}
