package onboarding

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Authorize checks the organization exists and the caller belongs to it.
func (s *Service) Authorize(ctx context.Context, userID int64, orgID uuid.UUID) error {
	exists, err := s.store.OrganizationExists(ctx, orgID)
	if err != nil {
		return fmt.Errorf("%w: lookup organization: %v", ErrUpstreamUnavailable, err)
	}
	if !exists {
		return fmt.Errorf("%w: organization %s", ErrNotFound, orgID)
	}
	member, err := s.store.IsMember(ctx, orgID, userID)
	if err != nil {
		return fmt.Errorf("%w: lookup membership: %v", ErrUpstreamUnavailable, err)
	}
	if !member {
		return fmt.Errorf("%w: user %d is not a member of %s", ErrAccessDenied, userID, orgID)
	}
	return nil
}

func (s *Service) ListFields(ctx context.Context, userID int64, orgID uuid.UUID) ([]Field, error) {
	if err := s.Authorize(ctx, userID, orgID); err != nil {
		return nil, err
	}
	fields, err := s.store.ListFields(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("%w: list fields: %v", ErrUpstreamUnavailable, err)
	}
	return fields, nil
}

// UpsertField writes one field (last write wins). An answered value moves the
// setup record out of not_started.
func (s *Service) UpsertField(ctx context.Context, userID int64, orgID uuid.UUID, rawName string, value *string) (Field, error) {
	name, err := ParseFieldName(rawName)
	if err != nil {
		return Field{}, err
	}
	if err := s.Authorize(ctx, userID, orgID); err != nil {
		return Field{}, err
	}
	f, err := s.store.UpsertField(ctx, orgID, name, value)
	if err != nil {
		return Field{}, fmt.Errorf("%w: upsert field: %v", ErrUpstreamUnavailable, err)
	}
	if f.IsAnswered() {
		if err := s.store.MarkInProgress(ctx, orgID); err != nil {
			return Field{}, fmt.Errorf("%w: mark in progress: %v", ErrUpstreamUnavailable, err)
		}
	}
	return f, nil
}
