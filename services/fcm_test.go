package services

import (
	"context"
	"testing"
	"time"

	"github.com/louismrng/veil-backend/config"
	"github.com/louismrng/veil-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallMessageIsDataOnly(t *testing.T) {
	msg := callMessage("fcm-token-1", models.CallNotification{
		CallerName: "Alice",
		CallID:     "call-42@kamailio",
		CallType:   models.CallTypeAudio,
	})

	assert.Equal(t, "fcm-token-1", msg.Token)
	assert.Nil(t, msg.Notification, "a call wake must never open a tray notification")
	assert.Equal(t, map[string]string{
		"type":        "call",
		"caller_name": "Alice",
		"call_id":     "call-42@kamailio",
		"call_type":   "audio",
	}, msg.Data)

	require.NotNil(t, msg.Android)
	assert.Equal(t, "high", msg.Android.Priority)
	require.NotNil(t, msg.Android.TTL)
	assert.Equal(t, 60*time.Second, *msg.Android.TTL)
}

func TestFCMSenderUnconfigured(t *testing.T) {
	sender, err := NewFCMSender(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.False(t, sender.Configured())
}

func TestFCMSenderMissingServiceAccountFile(t *testing.T) {
	sender, err := NewFCMSender(context.Background(), &config.Config{
		FCMServiceAccountPath: "/nonexistent/service-account.json",
	})
	require.NoError(t, err)
	assert.False(t, sender.Configured())
}
