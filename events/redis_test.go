package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chayo-ai/backend/logger"
	"chayo-ai/backend/onboarding"
)

func TestDecodeEvent(t *testing.T) {
	org := uuid.New()
	ev, err := DecodeEvent(`{"type":"onboarding.completed","organization_id":"` + org.String() + `","at":"2026-01-02T03:04:05Z"}`)
	require.NoError(t, err)
	assert.Equal(t, onboarding.EventCompleted, ev.Type)
	assert.Equal(t, org, ev.OrganizationID)

	_, err = DecodeEvent(`{"type":"onboarding.completed"}`)
	assert.Error(t, err)
	_, err = DecodeEvent(`not json`)
	assert.Error(t, err)
}

func TestNewRedisBusRequiresAddr(t *testing.T) {
	_, err := NewRedisBus(context.Background(), " ", "", logger.Nop())
	assert.Error(t, err)
}

func TestRedisBusPublishSubscribe(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis integration tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	bus, err := NewRedisBus(ctx, addr, "onboarding-events-test-"+uuid.NewString(), logger.Nop())
	require.NoError(t, err)
	defer bus.Close()

	org, other := uuid.New(), uuid.New()
	got := make(chan onboarding.Event, 1)
	subCtx, stop := context.WithCancel(ctx)
	defer stop()
	go func() {
		_ = bus.Subscribe(subCtx, org, func(ev onboarding.Event) {
			select {
			case got <- ev:
			default:
			}
		})
	}()

	// keep publishing until the subscriber is attached
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
	for {
		select {
		case ev := <-got:
			assert.Equal(t, org, ev.OrganizationID)
			return
		case <-tick.C:
			require.NoError(t, bus.Publish(ctx, onboarding.Event{Type: onboarding.EventCompleted, OrganizationID: other, At: time.Now()}))
			require.NoError(t, bus.Publish(ctx, onboarding.Event{Type: onboarding.EventCompleted, OrganizationID: org, At: time.Now()}))
		case <-ctx.Done():
			t.Fatal("no event received")
		}
	}
}
