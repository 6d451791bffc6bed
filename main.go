package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"chayo-ai/backend/config"
	"chayo-ai/backend/database"
	"chayo-ai/backend/events"
	"chayo-ai/backend/logger"
	"chayo-ai/backend/middlewares"
	"chayo-ai/backend/onboarding"
	"chayo-ai/backend/routes"
	"chayo-ai/backend/utils"
)

func main() {
	cfg := config.Load()
	lg, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("logger init: %v", err)
	}
	defer lg.Sync()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		lg.Fatal("database connect failed", "error", err)
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool, lg); err != nil {
		lg.Warn("schema not fully ensured", "error", err)
	}
	store := database.NewOnboardingStore(pool)

	opts := onboarding.Options{RegenerateTimeout: cfg.VibeCardTimeout}
	if cfg.GeminiAPIKey != "" {
		gen, err := utils.NewGeminiVibeCards(ctx, utils.AIConfig{APIKey: cfg.GeminiAPIKey, GenModel: cfg.GeminiModel})
		if err != nil {
			lg.Fatal("gemini client init failed", "error", err)
		}
		defer gen.Close()
		opts.Generator = gen
	} else {
		lg.Info("GEMINI_API_KEY not set, vibe cards are derived locally")
	}

	deps := routes.Deps{Config: cfg, Orgs: store, DB: pool}
	if cfg.RedisAddr != "" {
		bus, err := events.NewRedisBus(ctx, cfg.RedisAddr, cfg.RedisChannel, lg)
		if err != nil {
			lg.Fatal("redis init failed", "error", err)
		}
		defer bus.Close()
		opts.Publisher = bus
		deps.Events = bus
	}
	deps.Onboarding = onboarding.NewService(store, lg, opts)

	if cfg.LogMode == "prod" || cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(lg), middlewares.CORS(cfg.CORSOrigin))
	routes.Register(r, deps)

	lg.Info("server listening", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		lg.Fatal("server stopped", "error", err)
	}
}
