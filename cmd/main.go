package main

import (
	"context"
	"os"

	"github.com/louismrng/veil-backend/config"
	"github.com/louismrng/veil-backend/controllers"
	"github.com/louismrng/veil-backend/routes"
	"github.com/louismrng/veil-backend/services"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg := config.Load()
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database init failed")
	}

	registry := services.NewRegistry(db)

	apns, err := services.NewAPNSSender(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("APNs init failed")
	}
	fcm, err := services.NewFCMSender(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("FCM init failed")
	}

	dispatcher := services.NewDispatcher(registry, apns, fcm, cfg.PushSendTimeout)
	ejabberd := services.NewEjabberdClient(cfg.EjabberdAPIURL)
	accounts := services.NewAccountService(db, registry, ejabberd, cfg.XMPPDomain)

	r := routes.SetupRouter(
		[]byte(cfg.JWTSecret),
		controllers.NewPushController(registry, dispatcher, cfg.XMPPDomain),
		controllers.NewAccountController(accounts, []byte(cfg.JWTSecret)),
		controllers.NewServerInfoController(cfg),
	)

	log.Info().Str("port", cfg.Port).Msg("veil backend listening")
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
