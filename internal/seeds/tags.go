// Package seeds holds the fixed data every store starts with.
package seeds

import "github.com/axellelanca/linkshelf/internal/models"

// Tags is the tag catalog created at bootstrap. There is no endpoint to add
// more, so tag input is resolved against this list only.
var Tags = []models.Tag{
	{Name: "work", Color: "#3b82f6"},
	{Name: "personal", Color: "#10b981"},
	{Name: "news", Color: "#f59e0b"},
	{Name: "learning", Color: "#8b5cf6"},
	{Name: "tools", Color: "#ef4444"},
}

// Catalog returns a copy of Tags with ids assigned in seed order, for stores
// that keep the catalog in memory instead of a tags table.
func Catalog() []models.Tag {
	catalog := make([]models.Tag, len(Tags))
	for i, tag := range Tags {
		tag.ID = uint(i + 1)
		catalog[i] = tag
	}
	return catalog
}
