package errors

import (
	"errors"
	"fmt"
)

// Custom error types for the bookmark manager

// ErrBookmarkNotFound is returned when no bookmark has the requested id
var ErrBookmarkNotFound = errors.New("bookmark not found")

// ErrTagNotFound is returned when a tag name is not part of the tag catalog
var ErrTagNotFound = errors.New("tag not found")

// ErrInvalidURL is returned when the provided URL is not an absolute http(s) URL
var ErrInvalidURL = errors.New("invalid URL format")

// ErrDatabaseConnection is returned when database connection fails
var ErrDatabaseConnection = errors.New("database connection failed")

// ErrFetchFailed is returned when a page title could not be retrieved
type ErrFetchFailed struct {
	URL    string
	Reason string
}

func (e ErrFetchFailed) Error() string {
	return fmt.Sprintf("failed to fetch title for %s: %s", e.URL, e.Reason)
}

// ErrConfigLoad is returned when configuration loading fails
type ErrConfigLoad struct {
	Path   string
	Reason string
}

func (e ErrConfigLoad) Error() string {
	return fmt.Sprintf("failed to load config from %s: %s", e.Path, e.Reason)
}
