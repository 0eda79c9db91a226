package reconcile

import (
	"time"

	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/entities"
)

// EntryStore is the subset of the entry repository a sync round touches.
type EntryStore interface {
	GetEntryByID(id uint) (*entities.Entry, error)
	SoftDeleteVersioned(id uint) error
	MergeVersioned(id uint, fields entities.EntryFields, deviceID string, expectedVersion, nextVersion int) (*entities.Entry, error)
	EntriesSince(since time.Time, excludeDeviceID string) ([]entities.Entry, error)
}

// Store runs a whole sync round inside one transaction.
type Store interface {
	Transaction(fn func(tx EntryStore) error) error
}

type repositoryStore struct {
	repo *entries.Repository
}

// NewRepositoryStore adapts the gorm entry repository to Store.
func NewRepositoryStore(repo *entries.Repository) Store {
	return repositoryStore{repo: repo}
}

func (s repositoryStore) Transaction(fn func(tx EntryStore) error) error {
	return s.repo.Transaction(func(tx *entries.Repository) error {
		return fn(tx)
	})
}
