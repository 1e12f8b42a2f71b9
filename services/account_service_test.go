package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/louismrng/veil-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "password123"

// stubEjabberd fakes the admin API: /register succeeds once per user,
// /check_password accepts only testPassword.
func stubEjabberd(t *testing.T) *httptest.Server {
	t.Helper()
	registered := map[string]bool{}
	mux := http.NewServeMux()
	mux.HandleFunc("/register", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if registered[body["user"]] {
			w.WriteHeader(http.StatusConflict)
			return
		}
		registered[body["user"]] = true
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/check_password", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] == testPassword {
			w.Write([]byte("0"))
			return
		}
		w.Write([]byte("1"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestAccounts(t *testing.T) (*AccountService, *Registry, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	registry := NewRegistry(db)
	ejabberd := NewEjabberdClient(stubEjabberd(t).URL)
	return NewAccountService(db, registry, ejabberd, "example.com"), registry, db
}

func TestAccountRegisterCreatesSubscriber(t *testing.T) {
	accounts, _, db := newTestAccounts(t)

	jid, err := accounts.Register("Alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", jid)

	var sub models.Subscriber
	require.NoError(t, db.Where("username = ?", "alice").First(&sub).Error)
	assert.Equal(t, "example.com", sub.Domain)
	// md5("alice:example.com:password123")
	assert.Equal(t, md5hex("alice:example.com:"+testPassword), sub.HA1)
	assert.NotEmpty(t, sub.HA1B)
}

func TestAccountRegisterDuplicate(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)

	_, err := accounts.Register("alice", testPassword)
	require.NoError(t, err)

	_, err = accounts.Register("alice", testPassword)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestAccountLoginRejectsWrongPassword(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)

	_, err := accounts.Register("alice", testPassword)
	require.NoError(t, err)

	_, err = accounts.Login("alice", "wrong-password")
	assert.ErrorIs(t, err, ErrBadCredentials)

	jid, err := accounts.Login("alice", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", jid)
}

func TestAccountDeleteCascadesPushRegistrations(t *testing.T) {
	accounts, registry, db := newTestAccounts(t)

	jid, err := accounts.Register("alice", testPassword)
	require.NoError(t, err)

	require.NoError(t, registry.Upsert(jid, "device-1", models.PlatformIOS, "token-1", "com.example.veil"))
	require.NoError(t, registry.Upsert(jid, "device-2", models.PlatformAndroid, "token-2", "com.example.veil"))

	require.NoError(t, accounts.Delete(jid, testPassword))

	regs, err := registry.ListForJID(jid)
	require.NoError(t, err)
	assert.Empty(t, regs)

	var count int64
	require.NoError(t, db.Model(&models.Subscriber{}).Where("username = ?", "alice").Count(&count).Error)
	assert.Zero(t, count)
}

func TestAccountDeleteRequiresPassword(t *testing.T) {
	accounts, registry, _ := newTestAccounts(t)

	jid, err := accounts.Register("alice", testPassword)
	require.NoError(t, err)
	require.NoError(t, registry.Upsert(jid, "device-1", models.PlatformIOS, "token-1", "com.example.veil"))

	err = accounts.Delete(jid, "wrong-password")
	assert.ErrorIs(t, err, ErrBadCredentials)

	regs, err := registry.ListForJID(jid)
	require.NoError(t, err)
	assert.Len(t, regs, 1)
}
