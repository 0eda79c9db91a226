package entries

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/phrasebook/internal/entities"
)

var (
	ErrNotFound        = errors.New("entry not found")
	ErrVersionConflict = errors.New("entry version conflict")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Transaction runs fn against a repository bound to a single database
// transaction. Returning an error from fn rolls every write back.
func (r *Repository) Transaction(fn func(tx *Repository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&Repository{db: tx})
	})
}

// CreateEntry stores a new entry at version 1.
func (r *Repository) CreateEntry(entry *entities.Entry) error {
	now := time.Now().UTC()
	entry.ID = 0
	entry.Version = 1
	entry.SyncStatus = entities.SyncStatusSynced
	entry.Deleted = false
	entry.CreatedAt = now
	entry.UpdatedAt = now
	entry.Tags = entities.JoinTags(entities.SplitTags(entry.Tags))

	if err := r.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create entry: %w", err)
	}
	return nil
}

// GetEntryByID returns the entry including soft-deleted rows, so tombstones
// stay visible to the reconciler.
func (r *Repository) GetEntryByID(id uint) (*entities.Entry, error) {
	var entry entities.Entry
	if err := r.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns live entries, newest first.
func (r *Repository) ListEntries(offset, limit int) ([]entities.Entry, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}

	var result []entities.Entry
	err := r.db.Where("deleted = ?", false).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	return result, err
}

// AllLiveEntries returns every non-deleted entry in creation order.
func (r *Repository) AllLiveEntries() ([]entities.Entry, error) {
	var result []entities.Entry
	err := r.db.Where("deleted = ?", false).Order("id ASC").Find(&result).Error
	return result, err
}

func (r *Repository) CountEntries() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Entry{}).Where("deleted = ?", false).Count(&count).Error
	return count, err
}

// DeleteEntry removes the row outright. Sync uses SoftDeleteVersioned instead.
func (r *Repository) DeleteEntry(id uint) error {
	result := r.db.Delete(&entities.Entry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchEntries matches query as a case-sensitive substring of content or
// tags. instr is used because SQLite LIKE ignores ASCII case.
func (r *Repository) SearchEntries(query string) ([]entities.Entry, error) {
	var result []entities.Entry
	err := r.db.Where("deleted = ?", false).
		Where("instr(content, ?) > 0 OR instr(tags, ?) > 0", query, query).
		Order("created_at DESC, id DESC").
		Find(&result).Error
	return result, err
}

// EntriesSince returns live entries updated at or after since, newest update
// first. A non-empty excludeDeviceID drops that device's own writes.
func (r *Repository) EntriesSince(since time.Time, excludeDeviceID string) ([]entities.Entry, error) {
	query := r.db.Where("deleted = ?", false)
	if !since.IsZero() {
		query = query.Where("updated_at >= ?", since.UTC())
	}
	if excludeDeviceID != "" {
		query = query.Where("device_id IS NULL OR device_id != ?", excludeDeviceID)
	}

	var result []entities.Entry
	err := query.Order("updated_at DESC, id DESC").Find(&result).Error
	return result, err
}

// UpdateVersioned applies fields only while the stored version still equals
// expectedVersion. A stale version yields ErrVersionConflict and leaves the
// row untouched.
func (r *Repository) UpdateVersioned(id uint, fields entities.EntryFields, expectedVersion int) (*entities.Entry, error) {
	return r.conditionalUpdate(id, fields.Columns(), expectedVersion, expectedVersion+1)
}

// MergeVersioned is the reconciler's merge write: like UpdateVersioned but the
// next version and the writing device are supplied by the caller.
func (r *Repository) MergeVersioned(id uint, fields entities.EntryFields, deviceID string, expectedVersion, nextVersion int) (*entities.Entry, error) {
	if nextVersion <= expectedVersion {
		return nil, fmt.Errorf("next version %d must exceed %d", nextVersion, expectedVersion)
	}
	cols := fields.Columns()
	if deviceID != "" {
		cols["device_id"] = deviceID
	}
	return r.conditionalUpdate(id, cols, expectedVersion, nextVersion)
}

func (r *Repository) conditionalUpdate(id uint, cols map[string]any, expectedVersion, nextVersion int) (*entities.Entry, error) {
	cols["version"] = nextVersion
	cols["updated_at"] = time.Now().UTC()
	cols["sync_status"] = entities.SyncStatusSynced

	result := r.db.Model(&entities.Entry{}).
		Where("id = ? AND version = ? AND deleted = ?", id, expectedVersion, false).
		Updates(cols)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update entry %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		current, err := r.GetEntryByID(id)
		if err != nil {
			return nil, err
		}
		if current.Deleted {
			return nil, ErrNotFound
		}
		return nil, ErrVersionConflict
	}

	return r.GetEntryByID(id)
}

// SoftDeleteVersioned marks the entry deleted and bumps its version without a
// version check. Deleting a tombstone again is a no-op.
func (r *Repository) SoftDeleteVersioned(id uint) error {
	result := r.db.Model(&entities.Entry{}).
		Where("id = ? AND deleted = ?", id, false).
		Updates(map[string]any{
			"deleted":     true,
			"sync_status": entities.SyncStatusSynced,
			"version":     gorm.Expr("version + 1"),
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to soft delete entry %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetEntryByID(id); err != nil {
			return err
		}
	}
	return nil
}
