package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chayo-ai/backend/onboarding"
)

// OnboardingStore implements onboarding.Store on Postgres.
type OnboardingStore struct {
	pool *pgxpool.Pool
}

var _ onboarding.Store = (*OnboardingStore)(nil)

func NewOnboardingStore(pool *pgxpool.Pool) *OnboardingStore {
	return &OnboardingStore{pool: pool}
}

const completionCols = `organization_id, setup_status, completion_data, completed_at, updated_at`

// CreateOrganization inserts an organization and registers owner as its first member.
func (s *OnboardingStore) CreateOrganization(ctx context.Context, name string, owner int64) (uuid.UUID, error) {
	var id uuid.UUID
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `INSERT INTO organizations(name) VALUES($1) RETURNING id`, name).Scan(&id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO organization_members(organization_id, user_id, role) VALUES($1,$2,'owner')`, id, owner)
		return err
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create organization: %w", err)
	}
	return id, nil
}

func (s *OnboardingStore) AddMember(ctx context.Context, orgID uuid.UUID, userID int64, role string) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO organization_members(organization_id, user_id, role) VALUES($1,$2,$3)
ON CONFLICT (organization_id, user_id) DO UPDATE SET role=EXCLUDED.role`, orgID, userID, role)
	return err
}

func (s *OnboardingStore) OrganizationExists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organizations WHERE id=$1)`, orgID).Scan(&ok)
	return ok, err
}

func (s *OnboardingStore) IsMember(ctx context.Context, orgID uuid.UUID, userID int64) (bool, error) {
	var ok bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM organization_members WHERE organization_id=$1 AND user_id=$2)`, orgID, userID).Scan(&ok)
	return ok, err
}

func (s *OnboardingStore) ListFields(ctx context.Context, orgID uuid.UUID) ([]onboarding.Field, error) {
	rows, err := s.pool.Query(ctx, `SELECT organization_id, field_name, value, updated_at FROM business_info_fields WHERE organization_id=$1 ORDER BY field_name`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []onboarding.Field{}
	for rows.Next() {
		f, err := scanField(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *OnboardingStore) UpsertField(ctx context.Context, orgID uuid.UUID, name onboarding.FieldName, value *string) (onboarding.Field, error) {
	row := s.pool.QueryRow(ctx, `INSERT INTO business_info_fields(organization_id, field_name, value)
VALUES($1,$2,$3)
ON CONFLICT (organization_id, field_name) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
RETURNING organization_id, field_name, value, updated_at`, orgID, string(name), value)
	return scanField(row)
}

func (s *OnboardingStore) GetCompletion(ctx context.Context, orgID uuid.UUID) (onboarding.SetupCompletion, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+completionCols+` FROM setup_completions WHERE organization_id=$1`, orgID)
	c, err := scanCompletion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return onboarding.SetupCompletion{}, fmt.Errorf("%w: setup completion %s", onboarding.ErrNotFound, orgID)
	}
	return c, err
}

func (s *OnboardingStore) EnsureCompletion(ctx context.Context, orgID uuid.UUID, status onboarding.SetupStatus) (onboarding.SetupCompletion, error) {
	if _, err := s.pool.Exec(ctx, `INSERT INTO setup_completions(organization_id, setup_status) VALUES($1,$2)
ON CONFLICT (organization_id) DO NOTHING`, orgID, string(status)); err != nil {
		return onboarding.SetupCompletion{}, err
	}
	return s.GetCompletion(ctx, orgID)
}

func (s *OnboardingStore) MarkInProgress(ctx context.Context, orgID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `INSERT INTO setup_completions(organization_id, setup_status) VALUES($1,'in_progress')
ON CONFLICT (organization_id) DO UPDATE SET setup_status='in_progress', updated_at=now()
WHERE setup_completions.setup_status='not_started'`, orgID)
	return err
}

// CompleteIfNotCompleted is a single upsert whose update branch only fires
// while the stored status is not completed. No returned row means another
// writer already completed the record.
func (s *OnboardingStore) CompleteIfNotCompleted(ctx context.Context, orgID uuid.UUID, data onboarding.CompletionData) (onboarding.SetupCompletion, bool, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return onboarding.SetupCompletion{}, false, err
	}
	row := s.pool.QueryRow(ctx, `INSERT INTO setup_completions(organization_id, setup_status, completion_data, completed_at, updated_at)
VALUES($1,'completed',$2::jsonb,now(),now())
ON CONFLICT (organization_id) DO UPDATE
    SET setup_status='completed', completion_data=EXCLUDED.completion_data, completed_at=EXCLUDED.completed_at, updated_at=now()
    WHERE setup_completions.setup_status <> 'completed'
RETURNING `+completionCols, orgID, string(b))
	c, err := scanCompletion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		winner, err := s.GetCompletion(ctx, orgID)
		return winner, false, err
	}
	if err != nil {
		return onboarding.SetupCompletion{}, false, err
	}
	return c, true, nil
}

func (s *OnboardingStore) ReplaceVibeCard(ctx context.Context, orgID uuid.UUID, card onboarding.VibeCard, source onboarding.VibeCardSource) (onboarding.SetupCompletion, error) {
	b, err := json.Marshal(card)
	if err != nil {
		return onboarding.SetupCompletion{}, err
	}
	row := s.pool.QueryRow(ctx, `UPDATE setup_completions
SET completion_data = jsonb_set(jsonb_set(completion_data, '{vibe_card}', $2::jsonb), '{vibe_card_source}', to_jsonb($3::text)),
    updated_at = now()
WHERE organization_id=$1 AND setup_status='completed' AND completion_data IS NOT NULL
RETURNING `+completionCols, orgID, string(b), string(source))
	c, err := scanCompletion(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return onboarding.SetupCompletion{}, fmt.Errorf("%w: setup not completed", onboarding.ErrPreconditionFailed)
	}
	return c, err
}

func scanField(row pgx.Row) (onboarding.Field, error) {
	var (
		f    onboarding.Field
		name string
	)
	if err := row.Scan(&f.OrganizationID, &name, &f.Value, &f.UpdatedAt); err != nil {
		return onboarding.Field{}, err
	}
	f.Name = onboarding.FieldName(name)
	return f, nil
}

func scanCompletion(row pgx.Row) (onboarding.SetupCompletion, error) {
	var (
		c         onboarding.SetupCompletion
		status    string
		raw       []byte
		completed *time.Time
	)
	if err := row.Scan(&c.OrganizationID, &status, &raw, &completed, &c.UpdatedAt); err != nil {
		return onboarding.SetupCompletion{}, err
	}
	st, err := onboarding.ParseSetupStatus(status)
	if err != nil {
		return onboarding.SetupCompletion{}, err
	}
	c.SetupStatus = st
	c.CompletedAt = completed
	if len(raw) > 0 {
		var d onboarding.CompletionData
		if err := json.Unmarshal(raw, &d); err != nil {
			return onboarding.SetupCompletion{}, fmt.Errorf("decode completion_data: %w", err)
		}
		c.CompletionData = &d
	}
	return c, nil
}
