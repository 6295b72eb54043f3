package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "DEV", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "tuition.db", cfg.DBPath)
	assert.Equal(t, []string{"http://localhost:5173", "http://localhost:8080"}, cfg.CORSOrigins)
	assert.True(t, cfg.Debug)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("TUITION_PORT", "9090")
	t.Setenv("TUITION_DB_PATH", ":memory:")
	t.Setenv("TUITION_CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, ":memory:", cfg.DBPath)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestLoad_DotEnvFile(t *testing.T) {
	// GIVEN: a .env file setting the database path
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("TUITION_DB_PATH=from-dotenv.db\nTUITION_ENV=prod\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("TUITION_DB_PATH")
		os.Unsetenv("TUITION_ENV")
	})

	// WHEN: loading
	cfg, err := Load(path)
	require.NoError(t, err)

	// THEN: file values apply and PROD turns debug off
	assert.Equal(t, "from-dotenv.db", cfg.DBPath)
	assert.Equal(t, "PROD", cfg.Env)
	assert.False(t, cfg.Debug)
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("TUITION_PORT", "70000")

	_, err := Load("")
	assert.Error(t, err)
}
