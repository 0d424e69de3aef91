package memory

import (
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"broadcaster/internal/models"
)

// stepClock returns a clock that advances one minute on every call
func stepClock(start time.Time) (func() time.Time, *time.Time) {
	current := start
	return func() time.Time {
		current = current.Add(time.Minute)
		return current
	}, &current
}

func TestDirectory_RecordSighting(t *testing.T) {
	now, _ := stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	dir := NewDirectory(WithClock(now))

	dir.RecordSighting(1, "Alice", "alice")

	entries := slices.Collect(dir.ListKnown())
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].AccountID)
	assert.Equal(t, "Alice", entries[0].DisplayName)
	assert.Equal(t, "alice", entries[0].Handle)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC), entries[0].LastSeenAt)
}

func TestDirectory_OneEntryPerAccountWithLatestTimestamp(t *testing.T) {
	now, current := stepClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	dir := NewDirectory(WithClock(now))

	sightings := []struct {
		id     int64
		name   string
		handle string
	}{
		{1, "Alice", "alice"},
		{2, "Bob", ""},
		{1, "Alice", "alice"},
		{3, "", "carol"},
		{2, "Bobby", "bob"},
	}

	lastSeen := make(map[int64]time.Time)
	for _, s := range sightings {
		dir.RecordSighting(s.id, s.name, s.handle)
		lastSeen[s.id] = *current
	}

	entries := slices.Collect(dir.ListKnown())
	require.Len(t, entries, 3)
	assert.Equal(t, 3, dir.Len())

	// First-sighting order is preserved
	ids := make([]int64, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.AccountID)
		assert.Equal(t, lastSeen[e.AccountID], e.LastSeenAt, "account %d", e.AccountID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)

	assert.Equal(t, "Bobby", entries[1].DisplayName)
	assert.Equal(t, "bob", entries[1].Handle)
}

func TestDirectory_EmptyFieldsKeepPreviousValues(t *testing.T) {
	dir := NewDirectory()

	dir.RecordSighting(7, "Dave", "dave")
	dir.RecordSighting(7, "", "")

	entries := slices.Collect(dir.ListKnown())
	require.Len(t, entries, 1)
	assert.Equal(t, "Dave", entries[0].DisplayName)
	assert.Equal(t, "dave", entries[0].Handle)
}

func TestDirectory_ListKnownIsSnapshot(t *testing.T) {
	dir := NewDirectory()
	dir.RecordSighting(1, "Alice", "")
	dir.RecordSighting(2, "Bob", "")

	var seen []models.DirectoryEntry
	for entry := range dir.ListKnown() {
		// Sightings during iteration must not show up in this pass
		dir.RecordSighting(entry.AccountID+100, "Late", "")
		seen = append(seen, entry)
	}

	assert.Len(t, seen, 2)
	assert.Equal(t, 4, dir.Len())
}

func TestDirectory_EarlyStop(t *testing.T) {
	dir := NewDirectory()
	for i := int64(1); i <= 5; i++ {
		dir.RecordSighting(i, "User", "")
	}

	count := 0
	for range dir.ListKnown() {
		count++
		if count == 2 {
			break
		}
	}
	assert.Equal(t, 2, count)
}

func TestDirectory_ConcurrentSightings(t *testing.T) {
	dir := NewDirectory()

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := int64(0); i < 50; i++ {
				dir.RecordSighting(i, "User", "")
				for range dir.ListKnown() {
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, dir.Len())
}
