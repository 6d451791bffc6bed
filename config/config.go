package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port         string
	DatabaseURL  string // Supabase Postgres connection string
	JWTSecret    string
	GeminiAPIKey string
	GeminiModel  string
	RedisAddr    string // empty disables event fan-out
	RedisChannel string
	LogMode      string
	CORSOrigin   string
	// VibeCardTimeout bounds one generative provider call.
	VibeCardTimeout time.Duration
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Port:            get("PORT", "8080"),
		DatabaseURL:     must("SUPABASE_DB_URL"),
		JWTSecret:       must("JWT_SECRET"),
		GeminiAPIKey:    get("GEMINI_API_KEY", ""),
		GeminiModel:     get("GEMINI_MODEL", "gemini-2.5-pro"),
		RedisAddr:       get("REDIS_ADDR", ""),
		RedisChannel:    get("REDIS_CHANNEL", "onboarding-events"),
		LogMode:         get("LOG_MODE", "dev"),
		CORSOrigin:      get("CORS_ORIGIN", "*"),
		VibeCardTimeout: duration("VIBECARD_TIMEOUT", 20*time.Second),
	}
	return cfg
}

func get(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env: %s", k)
	}
	return v
}

func duration(k string, def time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		log.Printf("invalid %s=%q, using %s", k, v, def)
		return def
	}
	return d
}
