// Package onboardingtest provides an in-memory onboarding.Store for tests.
package onboardingtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chayo-ai/backend/onboarding"
)

// MemStore keeps everything in maps behind one mutex. CompleteIfNotCompleted
// checks and writes under the same lock, which gives it the same
// compare-and-set semantics as the Postgres store.
type MemStore struct {
	mu          sync.Mutex
	orgs        map[uuid.UUID]bool
	members     map[uuid.UUID]map[int64]bool
	fields      map[uuid.UUID]map[onboarding.FieldName]onboarding.Field
	completions map[uuid.UUID]onboarding.SetupCompletion

	// Err, when set, is returned by every call.
	Err error
	// FieldsErr, when set, is returned by ListFields only.
	FieldsErr error
	// BeforeComplete runs before the conditional write, outside the lock.
	BeforeComplete func()
	// HonorContext makes every call fail with ctx.Err() once ctx is done.
	HonorContext bool

	Writes           int
	MembershipChecks int
}

func (m *MemStore) fail(ctx context.Context) error {
	if m.Err != nil {
		return m.Err
	}
	if m.HonorContext {
		return ctx.Err()
	}
	return nil
}

func NewMemStore() *MemStore {
	return &MemStore{
		orgs:        map[uuid.UUID]bool{},
		members:     map[uuid.UUID]map[int64]bool{},
		fields:      map[uuid.UUID]map[onboarding.FieldName]onboarding.Field{},
		completions: map[uuid.UUID]onboarding.SetupCompletion{},
	}
}

// AddOrg registers an organization with the given member user ids.
func (m *MemStore) AddOrg(orgID uuid.UUID, userIDs ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orgs[orgID] = true
	if m.members[orgID] == nil {
		m.members[orgID] = map[int64]bool{}
	}
	for _, u := range userIDs {
		m.members[orgID][u] = true
	}
}

// Seed writes answered fields directly, bypassing the service.
func (m *MemStore) Seed(orgID uuid.UUID, values map[onboarding.FieldName]string) {
	for k, v := range values {
		v := v
		_, _ = m.UpsertField(context.Background(), orgID, k, &v)
	}
}

// SeedAll answers every recognized field.
func (m *MemStore) SeedAll(orgID uuid.UUID) {
	vals := map[onboarding.FieldName]string{}
	for _, f := range onboarding.RecognizedFields {
		vals[f] = "value for " + string(f)
	}
	vals[onboarding.FieldBusinessName] = "Acme"
	m.Seed(orgID, vals)
}

// Completion returns the stored record, if any.
func (m *MemStore) Completion(orgID uuid.UUID) (onboarding.SetupCompletion, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.completions[orgID]
	return c, ok
}

func (m *MemStore) OrganizationExists(ctx context.Context, orgID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return false, err
	}
	return m.orgs[orgID], nil
}

func (m *MemStore) IsMember(ctx context.Context, orgID uuid.UUID, userID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return false, err
	}
	m.MembershipChecks++
	return m.members[orgID][userID], nil
}

func (m *MemStore) ListFields(ctx context.Context, orgID uuid.UUID) ([]onboarding.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return nil, err
	}
	if m.FieldsErr != nil {
		return nil, m.FieldsErr
	}
	out := []onboarding.Field{}
	for _, name := range onboarding.RecognizedFields {
		if f, ok := m.fields[orgID][name]; ok {
			out = append(out, f)
		}
	}
	for name, f := range m.fields[orgID] {
		if !name.IsRecognized() {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *MemStore) UpsertField(ctx context.Context, orgID uuid.UUID, name onboarding.FieldName, value *string) (onboarding.Field, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return onboarding.Field{}, err
	}
	if m.fields[orgID] == nil {
		m.fields[orgID] = map[onboarding.FieldName]onboarding.Field{}
	}
	f := onboarding.Field{OrganizationID: orgID, Name: name, Value: value, UpdatedAt: time.Now().UTC()}
	m.fields[orgID][name] = f
	m.Writes++
	return f, nil
}

func (m *MemStore) GetCompletion(ctx context.Context, orgID uuid.UUID) (onboarding.SetupCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return onboarding.SetupCompletion{}, err
	}
	c, ok := m.completions[orgID]
	if !ok {
		return onboarding.SetupCompletion{}, fmt.Errorf("%w: setup completion %s", onboarding.ErrNotFound, orgID)
	}
	return c, nil
}

func (m *MemStore) EnsureCompletion(ctx context.Context, orgID uuid.UUID, status onboarding.SetupStatus) (onboarding.SetupCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return onboarding.SetupCompletion{}, err
	}
	c, ok := m.completions[orgID]
	if !ok {
		c = onboarding.SetupCompletion{OrganizationID: orgID, SetupStatus: status, UpdatedAt: time.Now().UTC()}
		m.completions[orgID] = c
		m.Writes++
	}
	return c, nil
}

func (m *MemStore) MarkInProgress(ctx context.Context, orgID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return err
	}
	c, ok := m.completions[orgID]
	if ok && c.SetupStatus != onboarding.StatusNotStarted {
		return nil
	}
	m.completions[orgID] = onboarding.SetupCompletion{OrganizationID: orgID, SetupStatus: onboarding.StatusInProgress, UpdatedAt: time.Now().UTC()}
	m.Writes++
	return nil
}

func (m *MemStore) CompleteIfNotCompleted(ctx context.Context, orgID uuid.UUID, data onboarding.CompletionData) (onboarding.SetupCompletion, bool, error) {
	if m.BeforeComplete != nil {
		m.BeforeComplete()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return onboarding.SetupCompletion{}, false, err
	}
	if c, ok := m.completions[orgID]; ok && c.IsCompleted() {
		return c, false, nil
	}
	now := time.Now().UTC()
	d := data
	c := onboarding.SetupCompletion{
		OrganizationID: orgID,
		SetupStatus:    onboarding.StatusCompleted,
		CompletionData: &d,
		CompletedAt:    &now,
		UpdatedAt:      now,
	}
	m.completions[orgID] = c
	m.Writes++
	return c, true, nil
}

func (m *MemStore) ReplaceVibeCard(ctx context.Context, orgID uuid.UUID, card onboarding.VibeCard, source onboarding.VibeCardSource) (onboarding.SetupCompletion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(ctx); err != nil {
		return onboarding.SetupCompletion{}, err
	}
	c, ok := m.completions[orgID]
	if !ok || !c.IsCompleted() || c.CompletionData == nil {
		return onboarding.SetupCompletion{}, fmt.Errorf("%w: setup not completed", onboarding.ErrPreconditionFailed)
	}
	d := *c.CompletionData
	d.VibeCard = card
	d.VibeCardSource = source
	c.CompletionData = &d
	c.UpdatedAt = time.Now().UTC()
	m.completions[orgID] = c
	m.Writes++
	return c, nil
}
