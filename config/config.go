package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/louismrng/veil-backend/models"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config collects everything the process reads from the environment.
// It is built once in main and handed to each component explicitly, so
// transport credentials never live in ambient package state.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret string

	XMPPDomain     string
	XMPPHost       string
	XMPPWSURL      string
	EjabberdAPIURL string

	SIPDomain        string
	TURNDomain       string
	HTTPUploadDomain string
	ServerVersion    string
	MinClientVersion string

	APNSKeyPath    string
	APNSKeyID      string
	APNSTeamID     string
	APNSUseSandbox bool

	FCMServiceAccountPath string

	PushSendTimeout time.Duration
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file, using process environment")
	}

	xmppDomain := envOr("XMPP_DOMAIN", "example.com")
	cfg := &Config{
		Port: envOr("PORT", "8000"),

		DBHost:     envOr("DB_HOST", "localhost"),
		DBUser:     envOr("DB_USER", "veil"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     envOr("DB_NAME", "veil"),
		DBPort:     envOr("DB_PORT", "5432"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		XMPPDomain:     xmppDomain,
		XMPPHost:       envOr("XMPP_HOST", "xmpp."+xmppDomain),
		EjabberdAPIURL: envOr("EJABBERD_API_URL", "https://ejabberd:5443/api"),

		SIPDomain:        envOr("SIP_DOMAIN", "sip.example.com"),
		TURNDomain:       envOr("TURN_DOMAIN", "turn.example.com"),
		HTTPUploadDomain: envOr("HTTP_UPLOAD_DOMAIN", "upload.example.com"),
		ServerVersion:    envOr("SERVER_VERSION", "1.0.0"),
		MinClientVersion: envOr("MIN_CLIENT_VERSION", "1.0.0"),

		APNSKeyPath:    os.Getenv("APNS_KEY_PATH"),
		APNSKeyID:      os.Getenv("APNS_KEY_ID"),
		APNSTeamID:     os.Getenv("APNS_TEAM_ID"),
		APNSUseSandbox: envBool("APNS_USE_SANDBOX", true),

		FCMServiceAccountPath: os.Getenv("FCM_SERVICE_ACCOUNT_PATH"),

		PushSendTimeout: envDuration("PUSH_SEND_TIMEOUT", 5*time.Second),
	}
	cfg.XMPPWSURL = envOr("XMPP_WS_URL", fmt.Sprintf("ws://%s:5280/ws", cfg.XMPPHost))
	return cfg
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := db.AutoMigrate(
		&models.PushRegistration{},
		&models.Subscriber{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
