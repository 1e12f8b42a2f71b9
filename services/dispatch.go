package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/louismrng/veil-backend/metrics"
	"github.com/louismrng/veil-backend/models"

	"github.com/rs/zerolog/log"
)

// Outcome is the three-way result of one send attempt. The coordinator
// only ever branches on this; the platform-specific error vocabularies
// stay inside the senders.
type Outcome int

const (
	OutcomeDelivered Outcome = iota
	// OutcomeBadToken: the push service confirmed the destination is
	// dead. Triggers registry cleanup.
	OutcomeBadToken
	// OutcomeTransient: network/backend/quota trouble. The registration
	// is left alone; the next call attempt is the retry.
	OutcomeTransient
)

// Sender delivers a wake notification to one platform's push service.
// Send is only invoked when Configured reports true. Implementations
// must be safe for concurrent use.
type Sender interface {
	Configured() bool
	Send(ctx context.Context, deviceToken, appID string, call models.CallNotification) Outcome
}

// RegistryStore is the slice of the registry the dispatcher needs.
type RegistryStore interface {
	ListForJID(jid string) ([]models.PushRegistration, error)
	RemoveByToken(pushToken string) error
}

// DispatchResult aggregates per-device outcomes for one call. Only
// these counts ever reach logs and responses, never token values.
type DispatchResult struct {
	Registrations int `json:"-"`
	Sent          int `json:"sent"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
	Removed       int `json:"removed"`
}

// Dispatcher fans a call notification out to every registered device of
// the callee and self-heals the registry when a push service reports a
// token permanently dead.
type Dispatcher struct {
	registry RegistryStore
	senders  map[string]Sender
	timeout  time.Duration
}

func NewDispatcher(registry RegistryStore, ios, android Sender, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		senders: map[string]Sender{
			models.PlatformIOS:     ios,
			models.PlatformAndroid: android,
		},
		timeout: timeout,
	}
}

// Dispatch sends the notification to all of calleeJID's devices
// concurrently. It returns an error only when the registry itself is
// unavailable; individual delivery failures are absorbed into the
// result. Zero registrations is the common case and not an error.
func (d *Dispatcher) Dispatch(ctx context.Context, calleeJID string, call models.CallNotification) (DispatchResult, error) {
	start := time.Now()
	regs, err := d.registry.ListForJID(calleeJID)
	if err != nil {
		return DispatchResult{}, fmt.Errorf("resolve devices for %s: %w", calleeJID, err)
	}

	res := DispatchResult{Registrations: len(regs)}
	if len(regs) == 0 {
		log.Info().Str("jid", calleeJID).Msg("no push registrations for callee")
		return res, nil
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, reg := range regs {
		wg.Add(1)
		go func(reg models.PushRegistration) {
			defer wg.Done()
			outcome := d.sendOne(ctx, reg, call)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeDelivered:
				res.Sent++
			case OutcomeBadToken:
				res.Removed++
			case OutcomeTransient:
				res.Failed++
			default:
				res.Skipped++
			}
		}(reg)
	}
	wg.Wait()

	metrics.PushSentTotal.Add(float64(res.Sent))
	metrics.PushSkippedTotal.Add(float64(res.Skipped))
	metrics.PushFailedTotal.Add(float64(res.Failed))
	metrics.PushRemovedTotal.Add(float64(res.Removed))
	metrics.DispatchDuration.Observe(time.Since(start).Seconds())

	log.Info().
		Str("jid", calleeJID).
		Str("call_id", call.CallID).
		Int("sent", res.Sent).
		Int("skipped", res.Skipped).
		Int("failed", res.Failed).
		Int("removed", res.Removed).
		Msg("call push dispatch complete")
	return res, nil
}

// outcomeSkipped is internal to Dispatch: platform not configured.
const outcomeSkipped Outcome = -1

func (d *Dispatcher) sendOne(ctx context.Context, reg models.PushRegistration, call models.CallNotification) Outcome {
	sender := d.senders[reg.Platform]
	if sender == nil || !sender.Configured() {
		log.Debug().
			Str("platform", reg.Platform).
			Str("device_id", reg.DeviceID).
			Msg("push service not configured, skipping device")
		return outcomeSkipped
	}

	sctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	outcome := sender.Send(sctx, reg.PushToken, reg.AppID, call)
	if outcome == OutcomeBadToken {
		// Best effort: a cleanup failure must not fail the dispatch.
		if err := d.registry.RemoveByToken(reg.PushToken); err != nil {
			log.Error().Err(err).
				Str("token", RedactToken(reg.PushToken)).
				Msg("failed to clean up dead push token")
		} else {
			log.Info().
				Str("jid", reg.JID).
				Str("token", RedactToken(reg.PushToken)).
				Msg("removed dead push token")
		}
	}
	return outcome
}

// RedactToken keeps just enough of a push token to correlate log lines.
func RedactToken(token string) string {
	if len(token) <= 12 {
		return "…"
	}
	return token[:8] + "…" + token[len(token)-4:]
}
