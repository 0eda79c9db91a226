package services

import (
	"time"

	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/similarity"
)

// EntryStore is the persistence the entry service needs.
type EntryStore interface {
	CreateEntry(entry *entities.Entry) error
	GetEntryByID(id uint) (*entities.Entry, error)
	ListEntries(offset, limit int) ([]entities.Entry, error)
	SearchEntries(query string) ([]entities.Entry, error)
	EntriesSince(since time.Time, excludeDeviceID string) ([]entities.Entry, error)
	UpdateVersioned(id uint, fields entities.EntryFields, expectedVersion int) (*entities.Entry, error)
	DeleteEntry(id uint) error
	AllLiveEntries() ([]entities.Entry, error)
}

// VectorIndex is the similarity index the entry service maintains.
type VectorIndex interface {
	Upsert(id uint, content string, embedding []float32, meta similarity.Metadata) error
	Query(embedding []float32, k int) []similarity.Match
	Remove(id uint) error
	Reset(records []similarity.Record) error
	Len() int
}

// ReanalysisScheduler queues a later analysis attempt for an entry that was
// stored with the fallback record.
type ReanalysisScheduler interface {
	ScheduleReanalysis(entryID uint, version int) error
}

// EventLogger records entry lifecycle events for auditing.
type EventLogger interface {
	LogEntryEvent(eventType entities.AuditEventType, deviceID string, entryID uint, description string, err error)
}
