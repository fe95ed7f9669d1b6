package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "ifconnect", cfg.App.Name)
	assert.Equal(t, 50, cfg.App.RadiusKm)
	assert.Equal(t, "http://localhost:8080/api", cfg.API.BaseURL)
	assert.Equal(t, 30*time.Second, cfg.API.Timeout)
	assert.Equal(t, time.Minute, cfg.Notification.PollInterval)
	assert.NotEmpty(t, cfg.Store.Path)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("IFC_API_BASE_URL", "https://social.example.edu/api")
	t.Setenv("IFC_APP_DEMO_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://social.example.edu/api", cfg.API.BaseURL)
	assert.True(t, cfg.App.DemoMode)
}

func TestValidate(t *testing.T) {
	t.Run("rejects malformed base URL", func(t *testing.T) {
		cfg := &Config{API: APIConfig{BaseURL: "not-a-url"}}
		cfg.Notification.PollInterval = time.Minute
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects sub-second poll interval", func(t *testing.T) {
		cfg := &Config{
			API:          APIConfig{BaseURL: "http://localhost:8080/api"},
			Notification: NotificationConfig{PollInterval: 100 * time.Millisecond},
		}
		assert.Error(t, cfg.Validate())
	})
}
