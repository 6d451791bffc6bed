package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"chayo-ai/backend/onboarding"
	"chayo-ai/backend/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// EventSubscriber streams onboarding events for one organization until ctx ends.
type EventSubscriber interface {
	Subscribe(ctx context.Context, orgID uuid.UUID, onEvent func(onboarding.Event)) error
}

func GetOnboardingStatus(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		st, err := svc.GetOnboardingStatus(ctx, userID(c), orgID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, st)
	}
}

func CheckAndCompleteSetup(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
		defer cancel()
		row, err := svc.CheckAndCompleteSetup(ctx, userID(c), orgID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"is_completed": row.IsCompleted(), "setup": row})
	}
}

func RegenerateVibeCard(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
		defer cancel()
		card, err := svc.RegenerateVibeCard(ctx, userID(c), orgID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"vibe_card": card})
	}
}

func ExportOnboarding(svc *onboarding.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 15*time.Second)
		defer cancel()
		fields, err := svc.ListFields(ctx, userID(c), orgID)
		if err != nil {
			respondError(c, err)
			return
		}
		progress, err := svc.GetProgress(ctx, orgID)
		if err != nil {
			respondError(c, err)
			return
		}
		b, err := utils.OnboardingWorkbook(fields, progress)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+utils.ExportFilename(orgID.String(), time.Now())+`"`)
		c.Data(http.StatusOK, xlsxContentType, b)
	}
}

// OnboardingEvents streams the current status followed by live onboarding
// events as server-sent events.
func OnboardingEvents(svc *onboarding.Service, sub EventSubscriber) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgID, ok := orgParam(c)
		if !ok {
			return
		}
		actx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()
		if err := svc.Authorize(actx, userID(c), orgID); err != nil {
			respondError(c, err)
			return
		}
		// same degrade-to-default rule as the status endpoint
		st := onboarding.Status{Progress: onboarding.DefaultProgress()}
		if p, err := svc.GetProgress(actx, orgID); err == nil {
			st = onboarding.Status{IsCompleted: p.IsCompleted, Progress: p}
		}
		cancel()

		ctx := c.Request.Context()
		events := make(chan onboarding.Event, 16)
		subErr := make(chan error, 1)
		go func() {
			defer close(events)
			subErr <- sub.Subscribe(ctx, orgID, func(ev onboarding.Event) {
				select {
				case events <- ev:
				case <-ctx.Done():
				}
			})
		}()

		c.Header("Content-Type", "text/event-stream")
		c.Header("Cache-Control", "no-cache")
		c.Header("Connection", "keep-alive")
		c.SSEvent("onboarding.status", st)
		c.Writer.Flush()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					if err := <-subErr; err != nil {
						c.SSEvent("error", gin.H{"error": "event stream unavailable"})
						c.Writer.Flush()
					}
					return
				}
				c.SSEvent(ev.Type, ev)
				c.Writer.Flush()
			}
		}
	}
}
