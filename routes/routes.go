package routes

import (
	"github.com/gin-gonic/gin"

	"chayo-ai/backend/config"
	"chayo-ai/backend/controllers"
	"chayo-ai/backend/middlewares"
	"chayo-ai/backend/onboarding"
)

type Deps struct {
	Config     config.Config
	Onboarding *onboarding.Service
	Orgs       controllers.OrgCreator
	DB         controllers.Pinger
	// Events is optional; without it the SSE route is not mounted.
	Events controllers.EventSubscriber
}

func Register(r *gin.Engine, d Deps) {
	r.GET("/healthz", controllers.Health(d.DB))

	api := r.Group("/api")
	api.Use(middlewares.Auth(d.Config.JWTSecret))
	{
		api.POST("orgs", controllers.CreateOrganization(d.Orgs))

		org := api.Group("orgs/:org_id")
		// Business info fields collected by the assistant
		org.GET("fields", controllers.ListFields(d.Onboarding))
		org.PUT("fields/:field_name", controllers.UpsertField(d.Onboarding))
		// Onboarding progress and completion
		org.GET("onboarding/status", controllers.GetOnboardingStatus(d.Onboarding))
		org.POST("onboarding/complete", controllers.CheckAndCompleteSetup(d.Onboarding))
		org.POST("onboarding/vibe-card/regenerate", controllers.RegenerateVibeCard(d.Onboarding))
		org.GET("onboarding/export", controllers.ExportOnboarding(d.Onboarding))
		if d.Events != nil {
			org.GET("onboarding/events", controllers.OnboardingEvents(d.Onboarding, d.Events))
		}
	}
}
