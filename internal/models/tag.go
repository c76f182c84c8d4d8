package models

// Tag is a named, colored label. Tags come from a fixed seed set.
type Tag struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"uniqueIndex;size:50;not null" json:"name"`
	Color string `gorm:"size:20;not null" json:"color"`
}

// BookmarkTag is the join row between a bookmark and a tag.
// The composite primary key rules out duplicate pairs.
type BookmarkTag struct {
	BookmarkID uint `gorm:"primaryKey"`
	TagID      uint `gorm:"primaryKey;index"`
}
