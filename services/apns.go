package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/louismrng/veil-backend/config"
	"github.com/louismrng/veil-backend/models"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/token"
)

// APNSSender delivers VoIP pushes over the APNs HTTP/2 provider API.
// VoIP push type is what wakes the app from the background for CallKit;
// a plain alert would not.
type APNSSender struct {
	client *apns2.Client
}

// NewAPNSSender builds the sender from the p8 signing key referenced by
// the config. Missing credentials are not an error: the deployment just
// has no iOS push support and the sender reports unconfigured.
func NewAPNSSender(cfg *config.Config) (*APNSSender, error) {
	if cfg.APNSKeyPath == "" || cfg.APNSKeyID == "" || cfg.APNSTeamID == "" {
		log.Warn().Msg("APNs not configured — missing APNS_KEY_PATH, APNS_KEY_ID, or APNS_TEAM_ID")
		return &APNSSender{}, nil
	}

	authKey, err := token.AuthKeyFromFile(cfg.APNSKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load APNs signing key: %w", err)
	}

	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   cfg.APNSKeyID,
		TeamID:  cfg.APNSTeamID,
	})
	if cfg.APNSUseSandbox {
		client.Development()
	} else {
		client.Production()
	}
	return &APNSSender{client: client}, nil
}

func (s *APNSSender) Configured() bool {
	return s != nil && s.client != nil
}

func (s *APNSSender) Send(ctx context.Context, deviceToken, appID string, call models.CallNotification) Outcome {
	if s.client == nil {
		return OutcomeTransient
	}

	n := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       appID + ".voip",
		PushType:    apns2.PushTypeVOIP,
		Priority:    apns2.PriorityHigh,
		Expiration:  time.Now().Add(time.Minute),
		Payload:     voipPayload(call),
	}

	res, err := s.client.PushWithContext(ctx, n)
	if err != nil {
		log.Error().Err(err).
			Str("token", RedactToken(deviceToken)).
			Msg("APNs connection error")
		return OutcomeTransient
	}
	if res.Sent() {
		return OutcomeDelivered
	}
	if apnsBadToken(res.Reason) {
		log.Warn().
			Str("token", RedactToken(deviceToken)).
			Str("reason", res.Reason).
			Msg("APNs reports token dead")
		return OutcomeBadToken
	}
	log.Error().
		Str("token", RedactToken(deviceToken)).
		Int("status", res.StatusCode).
		Str("reason", res.Reason).
		Msg("APNs rejected push")
	return OutcomeTransient
}

// voipPayload is the full push payload: caller_name, call_id, call_type,
// nothing else. No message content ever rides along.
func voipPayload(call models.CallNotification) []byte {
	payload, _ := json.Marshal(map[string]string{
		"caller_name": call.CallerName,
		"call_id":     call.CallID,
		"call_type":   call.CallType,
	})
	return payload
}

func apnsBadToken(reason string) bool {
	switch reason {
	case apns2.ReasonBadDeviceToken,
		apns2.ReasonUnregistered,
		apns2.ReasonDeviceTokenNotForTopic:
		return true
	}
	return false
}
