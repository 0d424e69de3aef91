package memory

import (
	"iter"
	"slices"
	"sync"
	"time"

	"broadcaster/internal/models"
)

// Directory is an in-memory implementation of storage.Directory.
// It grows without bound; state lives for the lifetime of the process.
type Directory struct {
	mu      sync.RWMutex
	entries []models.DirectoryEntry
	index   map[int64]int
	now     func() time.Time
}

// Option configures a Directory
type Option func(*Directory)

// WithClock overrides the clock used for last-seen timestamps
func WithClock(now func() time.Time) Option {
	return func(d *Directory) {
		d.now = now
	}
}

// NewDirectory creates an empty directory
func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		entries: make([]models.DirectoryEntry, 0),
		index:   make(map[int64]int),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// RecordSighting upserts the account and refreshes its last-seen time
func (d *Directory) RecordSighting(accountID int64, displayName, handle string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	seenAt := d.now()

	if i, ok := d.index[accountID]; ok {
		entry := &d.entries[i]
		// Keep the previous values when the update omits them
		if displayName != "" {
			entry.DisplayName = displayName
		}
		if handle != "" {
			entry.Handle = handle
		}
		entry.LastSeenAt = seenAt
		return
	}

	d.index[accountID] = len(d.entries)
	d.entries = append(d.entries, models.DirectoryEntry{
		AccountID:   accountID,
		DisplayName: displayName,
		Handle:      handle,
		LastSeenAt:  seenAt,
	})
}

// ListKnown returns a lazy sequence over a snapshot of the directory
func (d *Directory) ListKnown() iter.Seq[models.DirectoryEntry] {
	d.mu.RLock()
	snapshot := slices.Clone(d.entries)
	d.mu.RUnlock()

	return func(yield func(models.DirectoryEntry) bool) {
		for _, entry := range snapshot {
			if !yield(entry) {
				return
			}
		}
	}
}

// Len returns the number of known accounts
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.entries)
}

// Close does nothing for the in-memory directory
func (d *Directory) Close() error {
	return nil
}
