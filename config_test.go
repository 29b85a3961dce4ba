package bookden

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "HS256", cfg.TokenAlgorithm)
	assert.Equal(t, time.Hour, cfg.TokenLifetime)
	assert.Contains(t, cfg.DSN(), "parseTime=true")
}

func TestLoadConfigRejectsNonPositiveLifetime(t *testing.T) {
	t.Setenv("BOOKDEN_TOKEN_LIFETIME", "-30m")
	_, err := LoadConfig()
	assert.Error(t, err)

	t.Setenv("BOOKDEN_TOKEN_LIFETIME", "0s")
	_, err = LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("BOOKDEN_DB_HOST", "db.internal")
	t.Setenv("BOOKDEN_TOKEN_LIFETIME", "15m")
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.DBHost)
	assert.Equal(t, 15*time.Minute, cfg.TokenLifetime)
	assert.Contains(t, cfg.DSN(), "db.internal:3306")
}
