package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "CHAT_MODEL", "GENERATED_DIR", "PUBLIC_PREFIX", "GENERATION_TIMEOUT"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "gpt-4o-mini", cfg.ChatModel)
	assert.Equal(t, "public/generated", cfg.GeneratedDir)
	assert.Equal(t, "/generated", cfg.PublicPrefix)
	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_PATH", "/tmp/test.db")
	t.Setenv("GENERATION_TIMEOUT", "15")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, 15*time.Second, cfg.GenerationTimeout)
}

func TestLoadIgnoresInvalidTimeout(t *testing.T) {
	t.Setenv("GENERATION_TIMEOUT", "soon")

	cfg := Load()

	assert.Equal(t, 120*time.Second, cfg.GenerationTimeout)
}
