package audit

import (
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/phrasebook/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// LogEvent saves an audit event to the database.
func (r *Repository) LogEvent(event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	return r.db.Create(event).Error
}

// GetEvents retrieves paginated audit events, most recent first. Filters are
// ignored when empty.
func (r *Repository) GetEvents(deviceID string, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	var events []entities.AuditEvent
	var total int64

	query := r.db.Model(&entities.AuditEvent{})
	if deviceID != "" {
		query = query.Where("device_id = ?", deviceID)
	}
	if eventType != "" {
		query = query.Where("event_type = ?", eventType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&events).Error
	return events, total, err
}

// PruneEvents removes audit events older than the given time and reports
// how many of each event type went.
func (r *Repository) PruneEvents(olderThan time.Time) (map[entities.AuditEventType]int64, error) {
	cutoff := olderThan.UTC()
	pruned := make(map[entities.AuditEventType]int64)

	err := r.db.Transaction(func(tx *gorm.DB) error {
		var rows []struct {
			EventType entities.AuditEventType
			Count     int64
		}
		if err := tx.Model(&entities.AuditEvent{}).
			Select("event_type, COUNT(*) AS count").
			Where("created_at < ?", cutoff).
			Group("event_type").
			Scan(&rows).Error; err != nil {
			return err
		}
		for _, row := range rows {
			pruned[row.EventType] = row.Count
		}
		return tx.Where("created_at < ?", cutoff).Delete(&entities.AuditEvent{}).Error
	})
	if err != nil {
		return nil, err
	}
	return pruned, nil
}
