package devices

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mrlokans/phrasebook/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Device{}))
	return NewRepository(db)
}

func TestRepository_CreateAndGetDevice(t *testing.T) {
	repo := setupTestDB(t)

	device := &entities.Device{DeviceID: "phone", Name: "Pixel", TokenHash: "hash"}
	require.NoError(t, repo.CreateDevice(device))
	assert.NotZero(t, device.ID)

	got, err := repo.GetDevice("phone")
	require.NoError(t, err)
	assert.Equal(t, "Pixel", got.Name)
	assert.Equal(t, "hash", got.TokenHash)
	assert.Nil(t, got.LastSeenAt)

	err = repo.CreateDevice(&entities.Device{DeviceID: "phone", TokenHash: "other"})
	assert.ErrorIs(t, err, ErrAlreadyExists)

	_, err = repo.GetDevice("unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_UpdateTokenHash(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.CreateDevice(&entities.Device{DeviceID: "laptop", TokenHash: "old"}))

	require.NoError(t, repo.UpdateTokenHash("laptop", "new"))
	got, err := repo.GetDevice("laptop")
	require.NoError(t, err)
	assert.Equal(t, "new", got.TokenHash)

	assert.ErrorIs(t, repo.UpdateTokenHash("ghost", "x"), ErrNotFound)
}

func TestRepository_TouchLastSeenAndList(t *testing.T) {
	repo := setupTestDB(t)
	require.NoError(t, repo.CreateDevice(&entities.Device{DeviceID: "a", TokenHash: "h"}))
	require.NoError(t, repo.CreateDevice(&entities.Device{DeviceID: "b", TokenHash: "h"}))

	require.NoError(t, repo.TouchLastSeen("a", time.Now()))

	got, err := repo.GetDevice("a")
	require.NoError(t, err)
	require.NotNil(t, got.LastSeenAt)

	all, err := repo.ListDevices()
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
