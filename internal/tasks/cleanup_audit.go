package tasks

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/phrasebook/internal/entities"
)

// DefaultAuditRetentionDays applies when a task carries no retention.
const DefaultAuditRetentionDays = 30

// AuditPruner drops audit history past its retention: the event rows and
// the saved sync envelopes.
type AuditPruner interface {
	PruneEvents(retention time.Duration) (map[entities.AuditEventType]int64, error)
	PruneEnvelopes(retention time.Duration) (int, error)
}

// CleanupAuditEventsTask prunes audit history older than RetentionDays.
type CleanupAuditEventsTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
// Event rows go first; a failure on the envelope files still fails the task
// so backlite retries it.
func CleanupAuditEventsProcessor(pruner AuditPruner) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if pruner == nil {
			return fmt.Errorf("audit pruner not configured")
		}

		retentionDays := task.RetentionDays
		if retentionDays <= 0 {
			retentionDays = DefaultAuditRetentionDays
		}
		retention := time.Duration(retentionDays) * 24 * time.Hour

		pruned, err := pruner.PruneEvents(retention)
		if err != nil {
			return fmt.Errorf("prune audit events: %w", err)
		}
		log.Printf("[TASK] Pruned audit events older than %d days: %s", retentionDays, formatPruneCounts(pruned))

		if err := ctx.Err(); err != nil {
			return err
		}

		envelopes, err := pruner.PruneEnvelopes(retention)
		if err != nil {
			return fmt.Errorf("prune sync envelopes: %w", err)
		}
		if envelopes > 0 {
			log.Printf("[TASK] Removed %d sync envelopes older than %d days", envelopes, retentionDays)
		}
		return nil
	}
}

// formatPruneCounts renders per-type counts as "delete=1 sync=4 total=5",
// types in name order.
func formatPruneCounts(pruned map[entities.AuditEventType]int64) string {
	types := make([]string, 0, len(pruned))
	var total int64
	for t, n := range pruned {
		types = append(types, string(t))
		total += n
	}
	sort.Strings(types)

	var b strings.Builder
	for _, t := range types {
		fmt.Fprintf(&b, "%s=%d ", t, pruned[entities.AuditEventType(t)])
	}
	fmt.Fprintf(&b, "total=%d", total)
	return b.String()
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(pruner AuditPruner) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(pruner))
}
