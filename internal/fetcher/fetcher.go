// Package fetcher retrieves page titles for new bookmarks.
package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	customerrors "github.com/axellelanca/linkshelf/internal/errors"
)

// NoTitle is stored when a page has no usable <title> element.
const NoTitle = "No title found"

// MaxBodyBytes caps how much of a page is parsed; the <title> sits in the head.
const MaxBodyBytes = 2 << 20

// TitleFetcher returns the title of the page at a URL.
type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}

// HTTPTitleFetcher fetches pages over HTTP and reads their <title>.
type HTTPTitleFetcher struct {
	httpClient *http.Client
	userAgent  string
}

// NewHTTPTitleFetcher creates a fetcher whose requests give up after timeout.
func NewHTTPTitleFetcher(timeout time.Duration, userAgent string) *HTTPTitleFetcher {
	return &HTTPTitleFetcher{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// FetchTitle issues a GET for url and returns the trimmed text of the first
// <title> element, or NoTitle. Any failure is returned as ErrFetchFailed.
// The status code is not checked: error pages usually carry a title too.
func (f *HTTPTitleFetcher) FetchTitle(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", customerrors.ErrFetchFailed{URL: url, Reason: err.Error()}
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", customerrors.ErrFetchFailed{URL: url, Reason: err.Error()}
	}
	defer resp.Body.Close()

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, MaxBodyBytes))
	if err != nil {
		return "", customerrors.ErrFetchFailed{URL: url, Reason: fmt.Sprintf("parse HTML: %v", err)}
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		return NoTitle, nil
	}
	return title, nil
}
