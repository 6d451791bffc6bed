package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"chayo-ai/backend/logger"
	"chayo-ai/backend/onboarding"
)

// RedisBus publishes onboarding events on one pub/sub channel so that every
// API instance can forward them to its connected SSE clients.
type RedisBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string
}

var _ onboarding.Publisher = (*RedisBus)(nil)

func NewRedisBus(ctx context.Context, addr, channel string, log *logger.Logger) (*RedisBus, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	if strings.TrimSpace(channel) == "" {
		channel = "onboarding-events"
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisBus{log: log.With("service", "RedisBus"), rdb: rdb, channel: channel}, nil
}

func (b *RedisBus) Publish(ctx context.Context, ev onboarding.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.rdb.Publish(ctx, b.channel, payload).Err()
}

// Subscribe calls onEvent for every event of orgID until ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, orgID uuid.UUID, onEvent func(onboarding.Event)) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			ev, err := DecodeEvent(msg.Payload)
			if err != nil {
				b.log.Warn("dropping malformed onboarding event", "error", err)
				continue
			}
			if ev.OrganizationID == orgID {
				onEvent(ev)
			}
		}
	}
}

func (b *RedisBus) Close() error { return b.rdb.Close() }

func DecodeEvent(payload string) (onboarding.Event, error) {
	var ev onboarding.Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return onboarding.Event{}, err
	}
	if ev.Type == "" || ev.OrganizationID == uuid.Nil {
		return onboarding.Event{}, fmt.Errorf("incomplete event %q", payload)
	}
	return ev, nil
}
