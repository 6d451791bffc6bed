package database

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chayo-ai/backend/logger"
	"chayo-ai/backend/onboarding"
)

func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("set TEST_POSTGRES_DSN to run store integration tests")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	pool, err := Connect(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, EnsureSchema(ctx, pool, logger.Nop()))
	t.Cleanup(pool.Close)
	return pool
}

func newOrg(t *testing.T, store *OnboardingStore, owner int64) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	id, err := store.CreateOrganization(ctx, "test org", owner)
	require.NoError(t, err)
	t.Cleanup(func() {
		_, _ = store.pool.Exec(context.Background(), `DELETE FROM organizations WHERE id=$1`, id)
	})
	return id
}

func TestOnboardingStoreMembership(t *testing.T) {
	store := NewOnboardingStore(testPool(t))
	ctx := context.Background()
	org := newOrg(t, store, 1)

	ok, err := store.OrganizationExists(ctx, org)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.OrganizationExists(ctx, uuid.New())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = store.IsMember(ctx, org, 1)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = store.IsMember(ctx, org, 2)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddMember(ctx, org, 2, "member"))
	ok, err = store.IsMember(ctx, org, 2)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestOnboardingStoreFieldsLastWriteWins(t *testing.T) {
	store := NewOnboardingStore(testPool(t))
	ctx := context.Background()
	org := newOrg(t, store, 1)

	a, b := "first", "second"
	_, err := store.UpsertField(ctx, org, onboarding.FieldTone, &a)
	require.NoError(t, err)
	f, err := store.UpsertField(ctx, org, onboarding.FieldTone, &b)
	require.NoError(t, err)
	assert.Equal(t, "second", *f.Value)
	_, err = store.UpsertField(ctx, org, onboarding.FieldGoals, nil)
	require.NoError(t, err)

	fields, err := store.ListFields(ctx, org)
	require.NoError(t, err)
	require.Len(t, fields, 2)
	assert.Equal(t, onboarding.FieldGoals, fields[0].Name)
	assert.False(t, fields[0].IsAnswered())
	assert.True(t, fields[1].IsAnswered())
}

func TestOnboardingStoreCompletionLifecycle(t *testing.T) {
	store := NewOnboardingStore(testPool(t))
	ctx := context.Background()
	org := newOrg(t, store, 1)

	_, err := store.GetCompletion(ctx, org)
	assert.ErrorIs(t, err, onboarding.ErrNotFound)

	c, err := store.EnsureCompletion(ctx, org, onboarding.StatusNotStarted)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusNotStarted, c.SetupStatus)

	require.NoError(t, store.MarkInProgress(ctx, org))
	c, err = store.GetCompletion(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusInProgress, c.SetupStatus)

	_, err = store.ReplaceVibeCard(ctx, org, onboarding.VibeCard{}, onboarding.SourceGenerated)
	assert.ErrorIs(t, err, onboarding.ErrPreconditionFailed)

	data := onboarding.CompletionData{
		SnapshotID:     uuid.New(),
		GeneratedAt:    time.Now().UTC(),
		AnsweredFields: map[onboarding.FieldName]string{onboarding.FieldBusinessName: "Acme"},
		VibeCard:       onboarding.VibeCard{BusinessName: "Acme"},
		VibeCardSource: onboarding.SourceDerived,
	}
	c, won, err := store.CompleteIfNotCompleted(ctx, org, data)
	require.NoError(t, err)
	assert.True(t, won)
	assert.Equal(t, onboarding.StatusCompleted, c.SetupStatus)
	assert.NotNil(t, c.CompletedAt)

	require.NoError(t, store.MarkInProgress(ctx, org))
	c, err = store.GetCompletion(ctx, org)
	require.NoError(t, err)
	assert.Equal(t, onboarding.StatusCompleted, c.SetupStatus, "completed never regresses")

	c, err = store.ReplaceVibeCard(ctx, org, onboarding.VibeCard{BusinessName: "Acme", Tagline: "new"}, onboarding.SourceGenerated)
	require.NoError(t, err)
	assert.Equal(t, "new", c.CompletionData.VibeCard.Tagline)
	assert.Equal(t, onboarding.SourceGenerated, c.CompletionData.VibeCardSource)
	assert.Equal(t, data.SnapshotID, c.CompletionData.SnapshotID)
}

func TestOnboardingStoreConcurrentCompleteSingleWinner(t *testing.T) {
	store := NewOnboardingStore(testPool(t))
	ctx := context.Background()
	org := newOrg(t, store, 1)

	const writers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
		ids  = map[uuid.UUID]bool{}
	)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			data := onboarding.CompletionData{SnapshotID: uuid.New(), GeneratedAt: time.Now().UTC()}
			c, won, err := store.CompleteIfNotCompleted(ctx, org, data)
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if won {
				wins++
			}
			ids[c.CompletionData.SnapshotID] = true
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
	assert.Len(t, ids, 1)
}
