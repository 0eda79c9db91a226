package auth

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"time"

	"github.com/mrlokans/phrasebook/internal/config"
	"github.com/mrlokans/phrasebook/internal/database/devices"
	"github.com/mrlokans/phrasebook/internal/entities"
)

var deviceIDPattern = regexp.MustCompile(`^[a-zA-Z0-9._:-]{1,128}$`)

var (
	ErrDeviceNotFound  = errors.New("device not found")
	ErrDeviceExists    = errors.New("device already registered")
	ErrDeviceIDInvalid = errors.New("device id must be 1-128 characters: letters, digits, '.', '_', ':' or '-'")
	ErrAuthRequired    = errors.New("authentication required")
)

// DeviceRepository defines the device storage the service needs.
type DeviceRepository interface {
	CreateDevice(device *entities.Device) error
	GetDevice(deviceID string) (*entities.Device, error)
	UpdateTokenHash(deviceID, tokenHash string) error
	TouchLastSeen(deviceID string, at time.Time) error
}

// Service registers devices and validates their tokens.
type Service struct {
	devices DeviceRepository
	config  config.Auth
}

func NewService(devices DeviceRepository, cfg config.Auth) *Service {
	return &Service{
		devices: devices,
		config:  cfg,
	}
}

// ValidDeviceID reports whether id is acceptable as a device identifier.
func ValidDeviceID(id string) bool {
	return deviceIDPattern.MatchString(id)
}

// RegisterDevice stores a new device and returns its plaintext token.
func (s *Service) RegisterDevice(deviceID, name string) (*entities.Device, string, error) {
	if !ValidDeviceID(deviceID) {
		return nil, "", ErrDeviceIDInvalid
	}

	token, err := GenerateDeviceToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	hash, err := HashDeviceToken(token, s.config.BcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("failed to hash token: %w", err)
	}

	device := &entities.Device{
		DeviceID:  deviceID,
		Name:      name,
		TokenHash: hash,
	}
	if err := s.devices.CreateDevice(device); err != nil {
		if errors.Is(err, devices.ErrAlreadyExists) {
			return nil, "", ErrDeviceExists
		}
		return nil, "", fmt.Errorf("failed to create device: %w", err)
	}

	return device, token, nil
}

// RotateToken issues a fresh token for an existing device, invalidating the
// previous one.
func (s *Service) RotateToken(deviceID string) (string, error) {
	token, err := GenerateDeviceToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	hash, err := HashDeviceToken(token, s.config.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash token: %w", err)
	}
	if err := s.devices.UpdateTokenHash(deviceID, hash); err != nil {
		if errors.Is(err, devices.ErrNotFound) {
			return "", ErrDeviceNotFound
		}
		return "", err
	}
	return token, nil
}

// Authenticate checks a device's token and records when it was last seen.
func (s *Service) Authenticate(deviceID, token string) (*entities.Device, error) {
	if deviceID == "" || token == "" {
		return nil, ErrAuthRequired
	}

	device, err := s.devices.GetDevice(deviceID)
	if err != nil {
		if errors.Is(err, devices.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if err := CheckDeviceToken(token, device.TokenHash); err != nil {
		return nil, err
	}

	if err := s.devices.TouchLastSeen(deviceID, time.Now()); err != nil {
		log.Printf("[AUTH] Failed to update last seen for %s: %v", deviceID, err)
	}
	return device, nil
}
