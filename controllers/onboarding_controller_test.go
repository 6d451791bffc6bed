package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"chayo-ai/backend/logger"
	"chayo-ai/backend/middlewares"
	"chayo-ai/backend/onboarding"
	"chayo-ai/backend/onboarding/onboardingtest"
)

type scriptedSubscriber struct {
	events []onboarding.Event
	err    error
}

func (s scriptedSubscriber) Subscribe(ctx context.Context, orgID uuid.UUID, onEvent func(onboarding.Event)) error {
	for _, ev := range s.events {
		if ev.OrganizationID == orgID {
			onEvent(ev)
		}
	}
	return s.err
}

func eventsRouter(svc *onboarding.Service, sub EventSubscriber, uid int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middlewares.UserIDKey, uid)
		c.Next()
	})
	r.GET("/orgs/:org_id/events", OnboardingEvents(svc, sub))
	return r
}

func TestOnboardingEventsStream(t *testing.T) {
	store := onboardingtest.NewMemStore()
	org := uuid.New()
	store.AddOrg(org, 1)
	svc := onboarding.NewService(store, logger.Nop(), onboarding.Options{})

	sub := scriptedSubscriber{events: []onboarding.Event{
		{Type: onboarding.EventCompleted, OrganizationID: org, SnapshotID: uuid.New(), At: time.Now()},
		{Type: onboarding.EventCompleted, OrganizationID: uuid.New(), At: time.Now()},
	}}
	rec := httptest.NewRecorder()
	eventsRouter(svc, sub, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+org.String()+"/events", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	assert.Contains(t, body, "event:onboarding.status")
	assert.Contains(t, body, "event:onboarding.completed")
	assert.Contains(t, body, org.String())
	assert.NotContains(t, body, "event:error")
	assert.Equal(t, 1, store.MembershipChecks)
}

func TestOnboardingEventsDegradesProgress(t *testing.T) {
	store := onboardingtest.NewMemStore()
	org := uuid.New()
	store.AddOrg(org, 1)
	store.FieldsErr = errors.New("fields table locked")
	svc := onboarding.NewService(store, logger.Nop(), onboarding.Options{})

	rec := httptest.NewRecorder()
	eventsRouter(svc, scriptedSubscriber{}, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+org.String()+"/events", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"current_stage":"stage_1"`)
}

func TestOnboardingEventsSubscribeFailure(t *testing.T) {
	store := onboardingtest.NewMemStore()
	org := uuid.New()
	store.AddOrg(org, 1)
	svc := onboarding.NewService(store, logger.Nop(), onboarding.Options{})

	rec := httptest.NewRecorder()
	eventsRouter(svc, scriptedSubscriber{err: errors.New("redis gone")}, 1).
		ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+org.String()+"/events", nil))
	assert.Contains(t, rec.Body.String(), "event:error")
}

func TestOnboardingEventsRequiresMembership(t *testing.T) {
	store := onboardingtest.NewMemStore()
	org := uuid.New()
	store.AddOrg(org, 1)
	svc := onboarding.NewService(store, logger.Nop(), onboarding.Options{})

	rec := httptest.NewRecorder()
	eventsRouter(svc, scriptedSubscriber{}, 2).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+org.String()+"/events", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	store.Err = errors.New("db down")
	rec = httptest.NewRecorder()
	eventsRouter(svc, scriptedSubscriber{}, 1).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orgs/"+org.String()+"/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRespondErrorHidesInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	respondError(c, errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}
