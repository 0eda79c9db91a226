package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/phrasebook/internal/entities"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	return db
}

func TestRepository_LogEvent(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	event := &entities.AuditEvent{
		DeviceID:    "phone",
		EventType:   entities.AuditEventSync,
		Action:      "sync_round",
		Description: "merged 2, conflicts 1",
		Status:      entities.AuditStatusSuccess,
	}

	err := repo.LogEvent(event)
	require.NoError(t, err)
	assert.NotZero(t, event.ID)
	assert.False(t, event.CreatedAt.IsZero())
}

func TestRepository_GetEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	for i := 0; i < 15; i++ {
		event := &entities.AuditEvent{
			DeviceID:  "phone",
			EventType: entities.AuditEventCreate,
			Action:    "entry_create",
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().Add(time.Duration(-i) * time.Hour),
		}
		require.NoError(t, repo.LogEvent(event))
	}
	for i := 0; i < 5; i++ {
		event := &entities.AuditEvent{
			DeviceID:  "laptop",
			EventType: entities.AuditEventSync,
			Action:    "sync_round",
			Status:    entities.AuditStatusSuccess,
		}
		require.NoError(t, repo.LogEvent(event))
	}

	t.Run("get all events", func(t *testing.T) {
		events, total, err := repo.GetEvents("", "", 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(20), total)
		assert.Len(t, events, 20)
	})

	t.Run("filter by device with pagination", func(t *testing.T) {
		events, total, err := repo.GetEvents("phone", "", 10, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(15), total)
		assert.Len(t, events, 10)
		assert.True(t, !events[0].CreatedAt.Before(events[1].CreatedAt))
	})

	t.Run("filter by type", func(t *testing.T) {
		events, total, err := repo.GetEvents("", entities.AuditEventSync, 50, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		for _, e := range events {
			assert.Equal(t, "laptop", e.DeviceID)
		}
	})
}

func TestRepository_PruneEvents(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)

	seed := []struct {
		eventType entities.AuditEventType
		age       time.Duration
	}{
		{entities.AuditEventDelete, 48 * time.Hour},
		{entities.AuditEventSync, 72 * time.Hour},
		{entities.AuditEventSync, 96 * time.Hour},
		{entities.AuditEventSync, time.Hour},
	}
	for _, s := range seed {
		require.NoError(t, repo.LogEvent(&entities.AuditEvent{
			EventType: s.eventType,
			Action:    "entry_" + string(s.eventType),
			Status:    entities.AuditStatusSuccess,
			CreatedAt: time.Now().UTC().Add(-s.age),
		}))
	}

	pruned, err := repo.PruneEvents(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[entities.AuditEventType]int64{
		entities.AuditEventDelete: 1,
		entities.AuditEventSync:   2,
	}, pruned)

	// Nothing left to prune
	pruned, err = repo.PruneEvents(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Empty(t, pruned)

	_, total, err := repo.GetEvents("", "", 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
}
