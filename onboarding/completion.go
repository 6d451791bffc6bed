package onboarding

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type SetupStatus string

const (
	StatusNotStarted SetupStatus = "not_started"
	StatusInProgress SetupStatus = "in_progress"
	StatusCompleted  SetupStatus = "completed"
)

func ParseSetupStatus(raw string) (SetupStatus, error) {
	switch s := SetupStatus(raw); s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return s, nil
	}
	return "", fmt.Errorf("%w: setup status %q", ErrUnrecognizedValue, raw)
}

type VibeCardSource string

const (
	SourceDerived   VibeCardSource = "derived"
	SourceGenerated VibeCardSource = "generated"
)

// CompletionData is the snapshot taken when setup completes.
type CompletionData struct {
	SnapshotID     uuid.UUID            `json:"snapshot_id"`
	GeneratedAt    time.Time            `json:"generated_at"`
	AnsweredFields map[FieldName]string `json:"answered_fields"`
	VibeCard       VibeCard             `json:"vibe_card"`
	VibeCardSource VibeCardSource       `json:"vibe_card_source"`
}

type SetupCompletion struct {
	OrganizationID uuid.UUID       `json:"organization_id"`
	SetupStatus    SetupStatus     `json:"setup_status"`
	CompletionData *CompletionData `json:"completion_data,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (c SetupCompletion) IsCompleted() bool { return c.SetupStatus == StatusCompleted }

// Store is the datastore contract. Implementations must make CompleteIfNotCompleted
// a single conditional write so that concurrent callers in different processes
// converge on one winner.
type Store interface {
	OrganizationExists(ctx context.Context, orgID uuid.UUID) (bool, error)
	IsMember(ctx context.Context, orgID uuid.UUID, userID int64) (bool, error)

	ListFields(ctx context.Context, orgID uuid.UUID) ([]Field, error)
	UpsertField(ctx context.Context, orgID uuid.UUID, name FieldName, value *string) (Field, error)

	// GetCompletion returns ErrNotFound when no record exists.
	GetCompletion(ctx context.Context, orgID uuid.UUID) (SetupCompletion, error)
	// EnsureCompletion creates the record with status if absent and returns the stored row.
	EnsureCompletion(ctx context.Context, orgID uuid.UUID, status SetupStatus) (SetupCompletion, error)
	// MarkInProgress moves not_started to in_progress, creating the record if needed.
	MarkInProgress(ctx context.Context, orgID uuid.UUID) error
	// CompleteIfNotCompleted transitions to completed only from a non-completed
	// status. won is false when another writer got there first; the returned row
	// is then the stored winner.
	CompleteIfNotCompleted(ctx context.Context, orgID uuid.UUID, data CompletionData) (row SetupCompletion, won bool, err error)
	// ReplaceVibeCard swaps the cached card of a completed record. ErrPreconditionFailed
	// if the record is not completed.
	ReplaceVibeCard(ctx context.Context, orgID uuid.UUID, card VibeCard, source VibeCardSource) (SetupCompletion, error)
}
