package onboarding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// CheckAndCompleteSetup marks setup completed once every recognized field is
// answered. It is idempotent: a completed record is returned untouched, and
// concurrent callers all observe the single stored winner.
func (s *Service) CheckAndCompleteSetup(ctx context.Context, userID int64, orgID uuid.UUID) (SetupCompletion, error) {
	if err := s.Authorize(ctx, userID, orgID); err != nil {
		return SetupCompletion{}, err
	}
	// Coalesced callers share this run, so it must not inherit the first
	// caller's cancellation.
	v, err, _ := s.completes.Do(orgID.String(), func() (interface{}, error) {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.completeTimeout)
		defer cancel()
		return s.completeIfReady(cctx, orgID)
	})
	if err != nil {
		return SetupCompletion{}, err
	}
	return v.(SetupCompletion), nil
}

func (s *Service) completeIfReady(ctx context.Context, orgID uuid.UUID) (SetupCompletion, error) {
	existing, err := s.store.GetCompletion(ctx, orgID)
	switch {
	case err == nil && existing.IsCompleted():
		return existing, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return SetupCompletion{}, fmt.Errorf("%w: get completion: %v", ErrUpstreamUnavailable, err)
	}

	fields, err := s.store.ListFields(ctx, orgID)
	if err != nil {
		return SetupCompletion{}, fmt.Errorf("%w: list fields: %v", ErrUpstreamUnavailable, err)
	}
	cls := Classify(fields)
	if err := cls.Validate(); err != nil {
		return SetupCompletion{}, err
	}
	answered := answeredSet(fields)

	if !cls.Stage3Completed {
		if len(answered) == 0 {
			row, err := s.store.EnsureCompletion(ctx, orgID, StatusNotStarted)
			if err != nil {
				return SetupCompletion{}, fmt.Errorf("%w: ensure completion: %v", ErrUpstreamUnavailable, err)
			}
			return row, nil
		}
		// Fields may have been written without going through UpsertField.
		if err := s.store.MarkInProgress(ctx, orgID); err != nil {
			return SetupCompletion{}, fmt.Errorf("%w: mark in progress: %v", ErrUpstreamUnavailable, err)
		}
		row, err := s.store.GetCompletion(ctx, orgID)
		if err != nil {
			return SetupCompletion{}, fmt.Errorf("%w: get completion: %v", ErrUpstreamUnavailable, err)
		}
		return row, nil
	}

	data := CompletionData{
		SnapshotID:     uuid.New(),
		GeneratedAt:    s.now(),
		AnsweredFields: answered,
		VibeCard:       BuildVibeCard(answered),
		VibeCardSource: SourceDerived,
	}
	row, won, err := s.store.CompleteIfNotCompleted(ctx, orgID, data)
	if err != nil {
		return SetupCompletion{}, fmt.Errorf("%w: complete setup: %v", ErrUpstreamUnavailable, err)
	}
	if !won {
		s.log.Info("setup already completed by another writer", "organization_id", orgID.String())
		return row, nil
	}
	s.log.Info("setup completed", "organization_id", orgID.String(), "snapshot_id", data.SnapshotID.String())
	s.publish(ctx, Event{Type: EventCompleted, OrganizationID: orgID, SnapshotID: data.SnapshotID, At: data.GeneratedAt})
	return row, nil
}

// RegenerateVibeCard replaces the cached card of a completed organization.
// The stored card is only overwritten after a successful generation.
func (s *Service) RegenerateVibeCard(ctx context.Context, userID int64, orgID uuid.UUID) (VibeCard, error) {
	if err := s.Authorize(ctx, userID, orgID); err != nil {
		return VibeCard{}, err
	}
	row, err := s.store.GetCompletion(ctx, orgID)
	if errors.Is(err, ErrNotFound) {
		return VibeCard{}, fmt.Errorf("%w: setup not completed", ErrPreconditionFailed)
	}
	if err != nil {
		return VibeCard{}, fmt.Errorf("%w: get completion: %v", ErrUpstreamUnavailable, err)
	}
	if !row.IsCompleted() {
		return VibeCard{}, fmt.Errorf("%w: setup not completed", ErrPreconditionFailed)
	}

	fields, err := s.store.ListFields(ctx, orgID)
	if err != nil {
		return VibeCard{}, fmt.Errorf("%w: list fields: %v", ErrUpstreamUnavailable, err)
	}
	answered := answeredSet(fields)

	card, source := BuildVibeCard(answered), SourceDerived
	if s.gen != nil {
		gctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		card, err = s.gen.GenerateVibeCard(gctx, answered)
		if err != nil {
			return VibeCard{}, fmt.Errorf("%w: generate vibe card: %v", ErrUpstreamUnavailable, err)
		}
		source = SourceGenerated
	}

	updated, err := s.store.ReplaceVibeCard(ctx, orgID, card, source)
	if errors.Is(err, ErrPreconditionFailed) {
		return VibeCard{}, err
	}
	if err != nil {
		return VibeCard{}, fmt.Errorf("%w: replace vibe card: %v", ErrUpstreamUnavailable, err)
	}
	ev := Event{Type: EventVibeCardRegenerated, OrganizationID: orgID, At: s.now()}
	if updated.CompletionData != nil {
		ev.SnapshotID = updated.CompletionData.SnapshotID
	}
	s.publish(ctx, ev)
	return card, nil
}
