// Package reconcile merges a device's local view of its entries into the
// server copy using per-entry scalar versions.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mrlokans/phrasebook/internal/database/entries"
	"github.com/mrlokans/phrasebook/internal/entities"
)

var ErrMissingDevice = errors.New("device_id is required")

// Outcome is what happened to one incoming entry.
type Outcome string

const (
	OutcomeDeleted    Outcome = "deleted"
	OutcomeUnknown    Outcome = "unknown"
	OutcomeServerWins Outcome = "server_wins"
	OutcomeConflict   Outcome = "conflict"
	OutcomeMerged     Outcome = "merged"
)

// Stats summarizes a round for logging and auditing.
type Stats struct {
	Deleted    int `json:"deleted"`
	Unknown    int `json:"unknown"`
	ServerWins int `json:"server_wins"`
	Conflicts  int `json:"conflicts"`
	Merged     int `json:"merged"`
	Returned   int `json:"returned"`
}

func (s *Stats) add(o Outcome) {
	switch o {
	case OutcomeDeleted:
		s.Deleted++
	case OutcomeUnknown:
		s.Unknown++
	case OutcomeServerWins:
		s.ServerWins++
	case OutcomeConflict:
		s.Conflicts++
	case OutcomeMerged:
		s.Merged++
	}
}

// IndexMaintainer keeps the similarity index in step with committed sync
// writes. RefreshIndex re-reads the entry, so concurrent rounds cannot leave
// an older row's vector behind.
type IndexMaintainer interface {
	RefreshIndex(id uint) error
	RemoveFromIndex(id uint) error
}

// RoundLogger is notified after every sync round, successful or not.
type RoundLogger interface {
	LogSyncRound(req *entities.SyncRequest, resp *entities.SyncResponse, stats Stats, err error)
}

type Reconciler struct {
	store  Store
	index  IndexMaintainer
	rounds RoundLogger
	now    func() time.Time
}

func NewReconciler(store Store, index IndexMaintainer, rounds RoundLogger) *Reconciler {
	return &Reconciler{
		store:  store,
		index:  index,
		rounds: rounds,
		now:    time.Now,
	}
}

// Sync applies req.LocalEntries in order and returns every live entry last
// written by another device. The round is atomic: a storage error rolls back
// all of its writes.
func (r *Reconciler) Sync(ctx context.Context, req *entities.SyncRequest) (*entities.SyncResponse, error) {
	if req.DeviceID == "" {
		return nil, ErrMissingDevice
	}

	var (
		stats     Stats
		conflicts = []entities.SyncEntry{}
		merged    []uint
		deleted   []uint
		snapshot  []entities.Entry
	)

	err := r.store.Transaction(func(tx EntryStore) error {
		for _, local := range req.LocalEntries {
			if err := ctx.Err(); err != nil {
				return err
			}

			outcome, entry, err := r.apply(tx, req.DeviceID, local)
			if err != nil {
				return fmt.Errorf("reconcile entry %d: %w", local.ID, err)
			}
			stats.add(outcome)

			switch outcome {
			case OutcomeConflict:
				conflicts = append(conflicts, local)
			case OutcomeMerged:
				merged = append(merged, entry.ID)
			case OutcomeDeleted:
				deleted = append(deleted, local.ID)
			}
		}

		var err error
		snapshot, err = tx.EntriesSince(time.Time{}, req.DeviceID)
		return err
	})

	var resp *entities.SyncResponse
	if err == nil {
		resp = &entities.SyncResponse{
			ServerEntries: make([]entities.SyncEntry, 0, len(snapshot)),
			Conflicts:     conflicts,
			LastSyncTime:  r.now().UTC(),
		}
		for _, e := range snapshot {
			resp.ServerEntries = append(resp.ServerEntries, entities.NewSyncEntry(e))
		}
		stats.Returned = len(resp.ServerEntries)
		r.maintainIndex(merged, deleted)
		log.Printf("[SYNC] device=%s merged=%d deleted=%d conflicts=%d server_wins=%d unknown=%d returned=%d",
			req.DeviceID, stats.Merged, stats.Deleted, stats.Conflicts, stats.ServerWins, stats.Unknown, stats.Returned)
	} else {
		log.Printf("[SYNC] device=%s round failed: %v", req.DeviceID, err)
	}

	if r.rounds != nil {
		r.rounds.LogSyncRound(req, resp, stats, err)
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// apply decides the fate of one incoming entry. The checks run in a fixed
// order and the first match wins.
func (r *Reconciler) apply(tx EntryStore, deviceID string, local entities.SyncEntry) (Outcome, *entities.Entry, error) {
	if local.Deleted {
		err := tx.SoftDeleteVersioned(local.ID)
		if errors.Is(err, entries.ErrNotFound) {
			return OutcomeUnknown, nil, nil
		}
		if err != nil {
			return "", nil, err
		}
		return OutcomeDeleted, nil, nil
	}

	server, err := tx.GetEntryByID(local.ID)
	if errors.Is(err, entries.ErrNotFound) {
		return OutcomeUnknown, nil, nil
	}
	if err != nil {
		return "", nil, err
	}

	if !server.UpdatedAt.Before(local.UpdatedAt) {
		return OutcomeServerWins, nil, nil
	}

	if server.DeviceID != deviceID && server.Version == local.Version {
		return OutcomeConflict, nil, nil
	}

	// A tombstone cannot be resurrected by an older live copy.
	if server.Deleted {
		return OutcomeServerWins, nil, nil
	}

	next := max(server.Version, local.Version) + 1
	updated, err := tx.MergeVersioned(local.ID, local.Fields(), deviceID, server.Version, next)
	if errors.Is(err, entries.ErrVersionConflict) {
		return OutcomeConflict, nil, nil
	}
	if errors.Is(err, entries.ErrNotFound) {
		return OutcomeServerWins, nil, nil
	}
	if err != nil {
		return "", nil, err
	}
	return OutcomeMerged, updated, nil
}

// maintainIndex runs after commit. The index is derived state, so failures
// are logged and left for the periodic rebuild.
func (r *Reconciler) maintainIndex(merged, deleted []uint) {
	if r.index == nil {
		return
	}
	for _, id := range deleted {
		if err := r.index.RemoveFromIndex(id); err != nil {
			log.Printf("[SYNC] Failed to drop vector for entry %d: %v", id, err)
		}
	}
	for _, id := range merged {
		if err := r.index.RefreshIndex(id); err != nil {
			log.Printf("[SYNC] Failed to re-index entry %d: %v", id, err)
		}
	}
}
