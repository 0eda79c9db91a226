package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mrlokans/phrasebook/internal/database/audit"
	"github.com/mrlokans/phrasebook/internal/entities"
	"github.com/mrlokans/phrasebook/internal/reconcile"
)

const maxErrorLength = 500

// Service provides high-level audit logging functionality.
type Service struct {
	repo     *audit.Repository
	auditor  *Auditor
	inflight sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// SetEnvelopeAuditor enables dumping every sync request/response pair to disk.
func (s *Service) SetEnvelopeAuditor(auditor *Auditor) {
	s.auditor = auditor
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("[AUDIT] Failed to log audit event: %v", err)
		}
	}()
}

// Flush waits for pending async writes.
func (s *Service) Flush() {
	s.inflight.Wait()
}

// LogEntryEvent records a create/update/delete/reindex of a single entry.
func (s *Service) LogEntryEvent(eventType entities.AuditEventType, deviceID string, entryID uint, description string, err error) {
	event := &entities.AuditEvent{
		DeviceID:    deviceID,
		EventType:   eventType,
		Action:      "entry_" + string(eventType),
		Description: truncate(description, maxErrorLength),
		Status:      entities.AuditStatusSuccess,
	}
	if entryID != 0 {
		id := entryID
		event.EntityID = &id
	}
	markFailed(event, err)

	s.LogAsync(event)
}

// LogSyncRound records the outcome counts of a sync round.
func (s *Service) LogSyncRound(req *entities.SyncRequest, resp *entities.SyncResponse, stats reconcile.Stats, err error) {
	event := &entities.AuditEvent{
		EventType: entities.AuditEventSync,
		Action:    "sync_round",
		Status:    entities.AuditStatusSuccess,
	}
	if req != nil {
		event.DeviceID = req.DeviceID
		event.Description = fmt.Sprintf("Synced %d local entries", len(req.LocalEntries))
	}
	if mdBytes, e := json.Marshal(stats); e == nil {
		event.Metadata = string(mdBytes)
	}
	markFailed(event, err)

	s.LogAsync(event)

	if s.auditor != nil {
		envelope := map[string]any{
			"request":  req,
			"response": resp,
			"stats":    stats,
		}
		if err != nil {
			envelope["error"] = err.Error()
		}
		if _, saveErr := s.auditor.SaveJSON(envelope); saveErr != nil {
			log.Printf("[AUDIT] Failed to save sync envelope: %v", saveErr)
		}
	}
}

// GetEvents retrieves paginated audit events. Empty filters match everything.
func (s *Service) GetEvents(deviceID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(deviceID, eventType, limit, offset)
}

// PruneEvents removes events older than retention, counted per event type.
func (s *Service) PruneEvents(retention time.Duration) (map[entities.AuditEventType]int64, error) {
	return s.repo.PruneEvents(time.Now().Add(-retention))
}

// PruneEnvelopes removes sync envelope dumps older than retention. It is a
// no-op when envelopes are not being saved.
func (s *Service) PruneEnvelopes(retention time.Duration) (int, error) {
	if s.auditor == nil {
		return 0, nil
	}
	return s.auditor.DeleteOlderThan(time.Now().Add(-retention))
}

func markFailed(event *entities.AuditEvent, err error) {
	if err == nil {
		return
	}
	event.Status = entities.AuditStatusFailed
	event.ErrorMsg = truncate(err.Error(), maxErrorLength)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
