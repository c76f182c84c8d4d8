package monitor

import (
	"context"
	"log"
	"time"

	"github.com/axellelanca/linkshelf/internal/models"
)

// TitleRefresher is the part of the bookmark service the monitor needs.
type TitleRefresher interface {
	FailedFetches() ([]models.Bookmark, error)
	RefreshTitle(ctx context.Context, bookmark models.Bookmark) (bool, error)
}

// TitleMonitor periodically retries the title fetch of bookmarks whose
// previous fetch failed.
type TitleMonitor struct {
	refresher TitleRefresher
	interval  time.Duration
}

// NewTitleMonitor creates and returns a new instance of TitleMonitor.
// interval parameter determines how frequently failed titles are retried.
func NewTitleMonitor(refresher TitleRefresher, interval time.Duration) *TitleMonitor {
	return &TitleMonitor{
		refresher: refresher,
		interval:  interval,
	}
}

// Start runs the retry loop until ctx is cancelled.
func (m *TitleMonitor) Start(ctx context.Context) {
	log.Printf("[MONITOR] Starting title monitor with interval of %v...", m.interval)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	// Execute an immediate check on startup before waiting for the first tick
	m.CheckOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("[MONITOR] Title monitor stopped.")
			return
		case <-ticker.C:
			m.CheckOnce(ctx)
		}
	}
}

// CheckOnce retries every failed fetch once and returns how many succeeded.
func (m *TitleMonitor) CheckOnce(ctx context.Context) int {
	bookmarks, err := m.refresher.FailedFetches()
	if err != nil {
		log.Printf("[MONITOR] ERROR retrieving bookmarks for monitoring: %v", err)
		return 0
	}
	if len(bookmarks) == 0 {
		return 0
	}

	log.Printf("[MONITOR] Retrying title fetch for %d bookmark(s)...", len(bookmarks))
	recovered := 0
	for _, bookmark := range bookmarks {
		if ctx.Err() != nil {
			break
		}
		ok, err := m.refresher.RefreshTitle(ctx, bookmark)
		if err != nil {
			log.Printf("[MONITOR] ERROR updating bookmark %d (%s): %v", bookmark.ID, bookmark.URL, err)
			continue
		}
		if ok {
			recovered++
			log.Printf("[NOTIFICATION] Title recovered for bookmark %d (%s)", bookmark.ID, bookmark.URL)
		}
	}
	log.Printf("[MONITOR] Title retry completed: %d/%d recovered.", recovered, len(bookmarks))
	return recovered
}
