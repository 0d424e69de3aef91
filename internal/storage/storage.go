package storage

import (
	"iter"

	"broadcaster/internal/models"
)

// Directory defines the interface for the cache of accounts seen by the bot
type Directory interface {
	// RecordSighting inserts the account or refreshes its name, handle and
	// last-seen time. Entries are never removed.
	RecordSighting(accountID int64, displayName, handle string)

	// ListKnown iterates a snapshot of the directory taken when it is called,
	// in first-sighting order. Sightings recorded during the iteration are not
	// visible to it.
	ListKnown() iter.Seq[models.DirectoryEntry]

	// Len returns the number of known accounts
	Len() int

	// Lifecycle
	Close() error
}
