package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/phrasebook/internal/analysis"
)

// EntryReanalyzer retries analysis for an entry captured at a given version.
type EntryReanalyzer interface {
	Reanalyze(ctx context.Context, id uint, version int) error
}

// ReanalyzeEntryTask re-runs analysis for an entry that was stored with the
// fallback record. The result is only applied if the entry is still at Version.
type ReanalyzeEntryTask struct {
	EntryID uint `json:"entry_id"`
	Version int  `json:"version"`
}

func (t ReanalyzeEntryTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "reanalyze_entry",
		MaxAttempts: 5,
		Backoff:     2 * time.Minute,
		Timeout:     time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// ReanalyzeEntryProcessor creates a processor for entry reanalysis.
func ReanalyzeEntryProcessor(reanalyzer EntryReanalyzer) backlite.QueueProcessor[ReanalyzeEntryTask] {
	return func(ctx context.Context, task ReanalyzeEntryTask) error {
		if reanalyzer == nil {
			return fmt.Errorf("entry reanalyzer not configured")
		}

		err := reanalyzer.Reanalyze(ctx, task.EntryID, task.Version)
		if errors.Is(err, analysis.ErrDisabled) {
			log.Printf("[TASK] Analysis disabled, skipping entry %d", task.EntryID)
			return nil
		}
		if err != nil {
			return err
		}

		log.Printf("[TASK] Reanalyzed entry %d at version %d", task.EntryID, task.Version)
		return nil
	}
}

func NewReanalyzeEntryQueue(reanalyzer EntryReanalyzer) backlite.Queue {
	return backlite.NewQueue(ReanalyzeEntryProcessor(reanalyzer))
}
