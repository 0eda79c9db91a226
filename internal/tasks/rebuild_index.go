package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// IndexRebuilder re-embeds every live entry into a fresh index.
type IndexRebuilder interface {
	RebuildIndex() (int, error)
}

// RebuildIndexTask repairs drift between the entry store and the
// similarity index.
type RebuildIndexTask struct{}

func (t RebuildIndexTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "rebuild_index",
		MaxAttempts: 1,
		Backoff:     time.Minute,
		Timeout:     30 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

func RebuildIndexProcessor(rebuilder IndexRebuilder) backlite.QueueProcessor[RebuildIndexTask] {
	return func(ctx context.Context, task RebuildIndexTask) error {
		if rebuilder == nil {
			return fmt.Errorf("index rebuilder not configured")
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := rebuilder.RebuildIndex()
		if err != nil {
			return fmt.Errorf("rebuild index: %w", err)
		}

		log.Printf("[TASK] Rebuilt similarity index with %d entries", n)
		return nil
	}
}

func NewRebuildIndexQueue(rebuilder IndexRebuilder) backlite.Queue {
	return backlite.NewQueue(RebuildIndexProcessor(rebuilder))
}
