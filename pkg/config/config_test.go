package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ImageHostConfig(t *testing.T) {
	t.Setenv("IMAGE_HOST_URL", "http://test-host/3/image")
	t.Setenv("IMAGE_HOST_CLIENT_ID", "test-client")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://test-host/3/image", cfg.ImageHost.UploadURL)
	assert.Equal(t, "test-client", cfg.ImageHost.ClientID)
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{
		"LANDMARK_API_URL", "HTTP_TIMEOUT", "IMAGE_HOST_URL", "IMAGE_HOST_CLIENT_ID",
		"ALLOWED_ORIGINS", "REDIS_ENABLED", "SERVER_PORT", "APP_ENV", "LANDMARK_ID",
		"ADMIN_JWT_SECRET",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "http://localhost:5000", cfg.LandmarkAPI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.LandmarkAPI.Timeout)
	assert.Empty(t, cfg.LandmarkAPI.Landmark)
	assert.Equal(t, "https://api.imgur.com/3/image", cfg.ImageHost.UploadURL)
	assert.Empty(t, cfg.ImageHost.ClientID)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.Redis.Enabled)
	assert.Empty(t, cfg.Server.AdminJWTSecret)
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.ServerAddr())
	assert.Equal(t, "localhost:6379", cfg.Redis.RedisAddr())
}

func TestLoad_ParsesListsAndDurations(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://walks.example.com, https://admin.example.com,")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("LANDMARK_ID", "42")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"https://walks.example.com", "https://admin.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 3*time.Second, cfg.LandmarkAPI.Timeout)
	assert.Equal(t, "42", cfg.LandmarkAPI.Landmark)
}

func TestLoad_InvalidTimeoutFallsBackToDefault(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.LandmarkAPI.Timeout)
}

func TestLoad_RejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("HTTP_TIMEOUT", "-1s")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LANDMARK_ID=42\nIMAGE_HOST_CLIENT_ID=from-file\n"), 0o600))

	t.Setenv("LANDMARK_ID", "")
	os.Unsetenv("LANDMARK_ID")
	t.Setenv("IMAGE_HOST_CLIENT_ID", "from-env")

	require.NoError(t, LoadDotEnv(path, filepath.Join(t.TempDir(), "missing.env")))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "42", cfg.LandmarkAPI.Landmark)
	assert.Equal(t, "from-env", cfg.ImageHost.ClientID)
}
