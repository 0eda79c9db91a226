package http

import (
	"context"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/services"
)

// Each controller depends only on the methods it uses.

// EntryService is what EntriesController needs from the entry service.
type EntryService interface {
	Create(ctx context.Context, input services.CreateInput) (*entities.Entry, error)
	List(offset, limit int) ([]entities.Entry, error)
	Get(id uint) (*entities.Entry, error)
	Search(query string) ([]entities.Entry, error)
	Changes(since time.Time, excludeDeviceID string) ([]entities.Entry, error)
	FindSimilar(id uint, limit int) ([]services.SimilarEntry, error)
	Update(ctx context.Context, id uint, input services.UpdateInput, expectedVersion int) (*entities.Entry, error)
	Delete(id uint, deviceID string) error
}

// Syncer runs one reconciliation round.
type Syncer interface {
	Sync(ctx context.Context, req *entities.SyncRequest) (*entities.SyncResponse, error)
}

// TaskQueue enqueues background tasks and reports their status.
type TaskQueue interface {
	Enqueue(task backlite.Task) (string, error)
	Status(ctx context.Context, taskID string) (backlite.TaskStatus, error)
}

// AuditReader lists recorded audit events.
type AuditReader interface {
	GetEvents(deviceID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// Pinger checks storage connectivity.
type Pinger interface {
	Ping() error
}

// IndexSizer reports how many vectors the similarity index holds.
type IndexSizer interface {
	IndexSize() int
}
