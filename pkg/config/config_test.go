package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "test-config.yml")
	require.NoError(t, os.WriteFile(configPath, []byte(content), 0o600))
	return configPath
}

func TestLoad(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		configContent := `
server:
  listen: ":9090"
  timeout: 45s
  base_url: https://alerts.example.com
api:
  base_url: http://backend:8080
  timeout: 5s
  zero_based_pages: true
  news:
    page_size: 12
  disaster:
    path: api/v2/disaster
    filter_param: q
session:
  ttl: 1h
  max_sessions: 50
display:
  timezone: UTC
  summary_length: 80
rss:
  size: 5
`
		cfg, err := Load(writeConfig(t, configContent))
		require.NoError(t, err)
		require.NotNil(t, cfg)

		assert.Equal(t, ":9090", cfg.Server.Listen)
		assert.Equal(t, 45*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "https://alerts.example.com", cfg.Server.BaseURL)
		assert.Equal(t, "http://backend:8080", cfg.API.BaseURL)
		assert.Equal(t, 5*time.Second, cfg.API.Timeout)
		assert.True(t, cfg.API.ZeroBasedPages)
		assert.Equal(t, EndpointConfig{Path: "api/news", FilterParam: "ynaTtl", PageSize: 12}, cfg.API.News)
		assert.Equal(t, EndpointConfig{Path: "api/v2/disaster", FilterParam: "q", PageSize: 10}, cfg.API.Disaster)
		assert.Equal(t, time.Hour, cfg.Session.TTL)
		assert.Equal(t, 50, cfg.Session.MaxSessions)
		assert.Equal(t, "UTC", cfg.Display.Timezone)
		assert.Equal(t, 80, cfg.Display.SummaryLength)
		assert.Equal(t, 5, cfg.RSS.Size)
		assert.Equal(t, time.UTC, cfg.Location())
	})

	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, "server:\n  listen: \":3001\"\n"))
		require.NoError(t, err)
		assert.Equal(t, ":3001", cfg.Server.Listen)
		assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
		assert.Equal(t, "http://localhost:8080", cfg.API.BaseURL)
		assert.Equal(t, 10*time.Second, cfg.API.Timeout)
		assert.Equal(t, 9, cfg.API.News.PageSize)
		assert.Equal(t, 10, cfg.API.Disaster.PageSize)
		assert.Equal(t, "keyword", cfg.API.Disaster.FilterParam)
		assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
		assert.Equal(t, "Asia/Seoul", cfg.Display.Timezone)
		assert.Equal(t, "2006-01-02 15:04", cfg.Display.DateFormat)
		assert.Equal(t, 3, cfg.Display.HomeItems)
		assert.Equal(t, 20, cfg.RSS.Size)
		assert.Equal(t, "Asia/Seoul", cfg.Location().String())
	})

	t.Run("env expansion", func(t *testing.T) {
		t.Setenv("ALERTS_API", "http://api.internal:9000")
		cfg, err := Load(writeConfig(t, "api:\n  base_url: ${ALERTS_API}\n"))
		require.NoError(t, err)
		assert.Equal(t, "http://api.internal:9000", cfg.API.BaseURL)
	})

	t.Run("file not found", func(t *testing.T) {
		cfg, err := Load("/non/existent/file.yml")
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "read config file")
	})

	t.Run("invalid yaml", func(t *testing.T) {
		configContent := `
invalid yaml content
  with bad indentation
    and no structure
`
		cfg, err := Load(writeConfig(t, configContent))
		require.Error(t, err)
		assert.Nil(t, cfg)
		assert.Contains(t, err.Error(), "parse config")
	})
}

func TestLoad_Validation(t *testing.T) {
	tbl := []struct {
		name, content, errMsg string
	}{
		{"server timeout", "server:\n  timeout: 10ms\n", "server timeout must be at least 1 second"},
		{"api url", "api:\n  base_url: localhost:8080\n", "api.base_url must be an http(s) url"},
		{"api timeout", "api:\n  timeout: 1ms\n", "api.timeout must be at least 100ms"},
		{"page size", "api:\n  news:\n    page_size: -1\n", "api page_size must be at least 1"},
		{"session ttl", "session:\n  ttl: 1ms\n", "session.ttl must be at least 1 second"},
		{"timezone", "display:\n  timezone: Mars/Olympus\n", "display.timezone"},
		{"summary", "display:\n  summary_length: -5\n", "display.summary_length must be at least 1"},
		{"rss", "rss:\n  size: -1\n", "rss.size must be at least 1"},
	}
	for _, tt := range tbl {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Contains(t, err.Error(), "validate config")
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, validate(cfg))
	listen, timeout := cfg.GetServerConfig()
	assert.Equal(t, ":3000", listen)
	assert.Equal(t, 30*time.Second, timeout)
	assert.Same(t, cfg, cfg.GetFullConfig())
}

func TestConfig_LocationFallback(t *testing.T) {
	cfg := Default()
	cfg.Display.Timezone = "Nowhere/Land"
	assert.Equal(t, time.UTC, cfg.Location())
}
