package devices

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/phrasebook/internal/entities"
)

var (
	ErrNotFound      = errors.New("device not found")
	ErrAlreadyExists = errors.New("device already registered")
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateDevice(device *entities.Device) error {
	var count int64
	if err := r.db.Model(&entities.Device{}).Where("device_id = ?", device.DeviceID).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrAlreadyExists
	}
	return r.db.Create(device).Error
}

func (r *Repository) GetDevice(deviceID string) (*entities.Device, error) {
	var device entities.Device
	if err := r.db.Where("device_id = ?", deviceID).First(&device).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &device, nil
}

// UpdateTokenHash replaces the stored hash, used when a token is rotated.
func (r *Repository) UpdateTokenHash(deviceID, tokenHash string) error {
	result := r.db.Model(&entities.Device{}).Where("device_id = ?", deviceID).Update("token_hash", tokenHash)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) TouchLastSeen(deviceID string, at time.Time) error {
	return r.db.Model(&entities.Device{}).Where("device_id = ?", deviceID).Update("last_seen_at", at.UTC()).Error
}

func (r *Repository) ListDevices() ([]entities.Device, error) {
	var result []entities.Device
	err := r.db.Order("created_at ASC").Find(&result).Error
	return result, err
}
