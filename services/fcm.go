package services

import (
	"context"
	"fmt"
	"os"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/louismrng/veil-backend/config"
	"github.com/louismrng/veil-backend/models"

	"github.com/rs/zerolog/log"
)

// A wake push is useless once the call has stopped ringing.
const fcmTTL = 60 * time.Second

// FCMSender delivers high-priority data-only messages through Firebase
// Cloud Messaging. Data-only keeps the client in charge of its own call
// UI — FCM never raises a notification tray entry itself.
type FCMSender struct {
	client *messaging.Client
}

// NewFCMSender builds the sender from the service-account file in the
// config. A missing path or file means FCM is simply not configured for
// this deployment.
func NewFCMSender(ctx context.Context, cfg *config.Config) (*FCMSender, error) {
	if cfg.FCMServiceAccountPath == "" {
		log.Warn().Msg("FCM not configured — missing FCM_SERVICE_ACCOUNT_PATH")
		return &FCMSender{}, nil
	}
	if _, err := os.Stat(cfg.FCMServiceAccountPath); err != nil {
		log.Warn().Str("path", cfg.FCMServiceAccountPath).
			Msg("FCM service account file not found")
		return &FCMSender{}, nil
	}

	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.FCMServiceAccountPath))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init FCM messaging client: %w", err)
	}
	return &FCMSender{client: client}, nil
}

func (s *FCMSender) Configured() bool {
	return s != nil && s.client != nil
}

func (s *FCMSender) Send(ctx context.Context, deviceToken, appID string, call models.CallNotification) Outcome {
	if s.client == nil {
		return OutcomeTransient
	}

	_, err := s.client.Send(ctx, callMessage(deviceToken, call))
	if err == nil {
		return OutcomeDelivered
	}
	if messaging.IsUnregistered(err) || errorutils.IsInvalidArgument(err) {
		log.Warn().
			Str("token", RedactToken(deviceToken)).
			Msg("FCM reports token dead")
		return OutcomeBadToken
	}
	log.Error().Err(err).
		Str("token", RedactToken(deviceToken)).
		Msg("FCM send error")
	return OutcomeTransient
}

// callMessage builds the data-only wake message. The type field lets
// the client tell a call wake apart from other data pushes; the other
// three fields are the entire payload.
func callMessage(deviceToken string, call models.CallNotification) *messaging.Message {
	ttl := fcmTTL
	return &messaging.Message{
		Token: deviceToken,
		Data: map[string]string{
			"type":        "call",
			"caller_name": call.CallerName,
			"call_id":     call.CallID,
			"call_type":   call.CallType,
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
			TTL:      &ttl,
		},
	}
}
