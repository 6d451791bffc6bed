package onboarding

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"chayo-ai/backend/logger"
)

const (
	EventCompleted           = "onboarding.completed"
	EventVibeCardRegenerated = "onboarding.vibecard_regenerated"
	defaultRegenerateTimeout = 20 * time.Second
	defaultCompleteTimeout   = 10 * time.Second
)

type Event struct {
	Type           string    `json:"type"`
	OrganizationID uuid.UUID `json:"organization_id"`
	SnapshotID     uuid.UUID `json:"snapshot_id,omitempty"`
	At             time.Time `json:"at"`
}

// Publisher fans out onboarding events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

type Options struct {
	Generator         VibeCardGenerator
	Publisher         Publisher
	RegenerateTimeout time.Duration
	// CompleteTimeout bounds one shared completion run.
	CompleteTimeout time.Duration
	Now             func() time.Time
}

// Service is the onboarding core. It holds no per-organization state; every
// call takes the organization id explicitly.
type Service struct {
	store           Store
	gen             VibeCardGenerator
	pub             Publisher
	log             *logger.Logger
	timeout         time.Duration
	completeTimeout time.Duration
	now             func() time.Time
	completes       singleflight.Group
}

func NewService(store Store, log *logger.Logger, opts Options) *Service {
	s := &Service{
		store:           store,
		gen:             opts.Generator,
		pub:             opts.Publisher,
		log:             log.With("service", "Onboarding"),
		timeout:         opts.RegenerateTimeout,
		completeTimeout: opts.CompleteTimeout,
		now:             opts.Now,
	}
	if s.timeout <= 0 {
		s.timeout = defaultRegenerateTimeout
	}
	if s.completeTimeout <= 0 {
		s.completeTimeout = defaultCompleteTimeout
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

func (s *Service) publish(ctx context.Context, ev Event) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(ctx, ev); err != nil {
		s.log.Warn("publish onboarding event failed", "type", ev.Type, "organization_id", ev.OrganizationID.String(), "error", err)
	}
}
