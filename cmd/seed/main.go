// Seed inserts mock subscribers and push registrations for local
// development, so call-notify can be exercised without real devices.
//
// Usage: go run ./cmd/seed
package main

import (
	"fmt"
	"os"

	"github.com/louismrng/veil-backend/config"
	"github.com/louismrng/veil-backend/models"
	"github.com/louismrng/veil-backend/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var users = []struct {
	username string
	platform string
}{
	{"testuser", models.PlatformIOS},
	{"alice", models.PlatformIOS},
	{"bob", models.PlatformAndroid},
	{"carol", models.PlatformAndroid},
	{"david", models.PlatformIOS},
}

const mockAppID = "com.example.veil"

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}
	registry := services.NewRegistry(db)

	for _, u := range users {
		jid := u.username + "@" + cfg.XMPPDomain
		deviceID := uuid.NewString()
		token := fmt.Sprintf("mock-%s-token-%s", u.platform, uuid.NewString())
		if err := registry.Upsert(jid, deviceID, u.platform, token, mockAppID); err != nil {
			log.Error().Err(err).Str("jid", jid).Msg("seed registration failed")
			continue
		}
		log.Info().Str("jid", jid).Str("platform", u.platform).Str("device_id", deviceID).
			Msg("seeded push registration")
	}
}
