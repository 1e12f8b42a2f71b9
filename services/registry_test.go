package services

import (
	"testing"

	"github.com/louismrng/veil-backend/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PushRegistration{}, &models.Subscriber{}))
	return db
}

func TestRegistryUpsertReplacesExisting(t *testing.T) {
	r := NewRegistry(newTestDB(t))

	require.NoError(t, r.Upsert("alice@example.com", "device-1", models.PlatformIOS, "token-old", "com.example.veil"))
	require.NoError(t, r.Upsert("alice@example.com", "device-1", models.PlatformAndroid, "token-new", "com.example.veil"))

	regs, err := r.ListForJID("alice@example.com")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "token-new", regs[0].PushToken)
	assert.Equal(t, models.PlatformAndroid, regs[0].Platform)
}

func TestRegistryListUnknownJIDIsEmpty(t *testing.T) {
	r := NewRegistry(newTestDB(t))

	regs, err := r.ListForJID("nobody@example.com")
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestRegistryListOrdersAcrossDevices(t *testing.T) {
	r := NewRegistry(newTestDB(t))

	require.NoError(t, r.Upsert("alice@example.com", "device-b", models.PlatformAndroid, "token-b", "com.example.veil"))
	require.NoError(t, r.Upsert("alice@example.com", "device-a", models.PlatformIOS, "token-a", "com.example.veil"))

	regs, err := r.ListForJID("alice@example.com")
	require.NoError(t, err)
	require.Len(t, regs, 2)
	assert.Equal(t, "device-a", regs[0].DeviceID)
	assert.Equal(t, "device-b", regs[1].DeviceID)
}

func TestRegistryRemoveIsIdempotent(t *testing.T) {
	r := NewRegistry(newTestDB(t))

	require.NoError(t, r.Remove("alice@example.com", "never-registered"))

	require.NoError(t, r.Upsert("alice@example.com", "device-1", models.PlatformIOS, "token-x", "com.example.veil"))
	require.NoError(t, r.Remove("alice@example.com", "device-1"))
	require.NoError(t, r.Remove("alice@example.com", "device-1"))

	regs, err := r.ListForJID("alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestRegistryRemoveByToken(t *testing.T) {
	r := NewRegistry(newTestDB(t))

	require.NoError(t, r.Upsert("alice@example.com", "device-1", models.PlatformIOS, "token-dead", "com.example.veil"))
	require.NoError(t, r.Upsert("alice@example.com", "device-2", models.PlatformAndroid, "token-live", "com.example.veil"))

	require.NoError(t, r.RemoveByToken("token-dead"))

	regs, err := r.ListForJID("alice@example.com")
	require.NoError(t, err)
	require.Len(t, regs, 1)
	assert.Equal(t, "device-2", regs[0].DeviceID)
}

func TestRegistryRemoveAllForJID(t *testing.T) {
	r := NewRegistry(newTestDB(t))

	require.NoError(t, r.Upsert("alice@example.com", "device-1", models.PlatformIOS, "token-1", "com.example.veil"))
	require.NoError(t, r.Upsert("alice@example.com", "device-2", models.PlatformAndroid, "token-2", "com.example.veil"))
	require.NoError(t, r.Upsert("bob@example.com", "device-3", models.PlatformIOS, "token-3", "com.example.veil"))

	require.NoError(t, r.RemoveAllForJID("alice@example.com"))

	regs, err := r.ListForJID("alice@example.com")
	require.NoError(t, err)
	assert.Empty(t, regs)

	regs, err = r.ListForJID("bob@example.com")
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}
