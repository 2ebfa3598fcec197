package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string

	// Database
	DBDriver   string // postgres or sqlite
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBPath     string // sqlite only

	// Chat completion (OpenAI compatible)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	ChatModel     string

	// Generation API (image, video, speech)
	ZAIAPIKey         string
	ZAIAPIURL         string
	GenerationTimeout time.Duration

	// Generated assets
	GeneratedDir string
	PublicPrefix string
}

// Load reads configuration from the environment. A .env file in the working
// directory, when present, is loaded first and never overrides variables that
// are already set.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	timeoutSecs, err := strconv.Atoi(getEnv("GENERATION_TIMEOUT", "120"))
	if err != nil || timeoutSecs <= 0 {
		timeoutSecs = 120
	}

	return &Config{
		Port:              getEnv("PORT", "3000"),
		DBDriver:          getEnv("DB_DRIVER", "postgres"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "5432"),
		DBUser:            getEnv("DB_USER", "postgres"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBName:            getEnv("DB_NAME", "companion_db"),
		DBSSLMode:         getEnv("DB_SSLMODE", "disable"),
		DBPath:            getEnv("DB_PATH", "data/companion.db"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:     getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		ChatModel:         getEnv("CHAT_MODEL", "gpt-4o-mini"),
		ZAIAPIKey:         getEnv("ZAI_API_KEY", ""),
		ZAIAPIURL:         getEnv("ZAI_API_URL", "https://api.z.ai/api/paas/v4"),
		GenerationTimeout: time.Duration(timeoutSecs) * time.Second,
		GeneratedDir:      getEnv("GENERATED_DIR", "public/generated"),
		PublicPrefix:      getEnv("PUBLIC_PREFIX", "/generated"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
