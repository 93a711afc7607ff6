package config

import (
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // display timezone must load without system zoneinfo

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	API     APIConfig     `yaml:"api" json:"api" jsonschema:"description=Backend API configuration"`
	Session SessionConfig `yaml:"session" json:"session" jsonschema:"description=Browser session configuration"`
	Display DisplayConfig `yaml:"display" json:"display" jsonschema:"description=Rendering configuration"`
	RSS     RSSConfig     `yaml:"rss" json:"rss" jsonschema:"description=RSS feeds configuration"`
}

// ServerConfig holds http server settings
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:3000,description=HTTP server listen address"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	BaseURL string        `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:3000,description=Base URL for RSS feeds and external links"`
}

// APIConfig holds backend settings
type APIConfig struct {
	BaseURL        string         `yaml:"base_url" json:"base_url" jsonschema:"default=http://localhost:8080,description=Backend API base URL"`
	Timeout        time.Duration  `yaml:"timeout" json:"timeout" jsonschema:"default=10s,description=Timeout for a single backend request"`
	ZeroBasedPages bool           `yaml:"zero_based_pages" json:"zero_based_pages" jsonschema:"default=false,description=Send 0-based page numbers to the backend"`
	News           EndpointConfig `yaml:"news" json:"news" jsonschema:"description=News endpoint"`
	Disaster       EndpointConfig `yaml:"disaster" json:"disaster" jsonschema:"description=Disaster messages endpoint"`
}

// EndpointConfig describes one domain endpoint
type EndpointConfig struct {
	Path        string `yaml:"path" json:"path" jsonschema:"description=Endpoint path relative to base_url"`
	FilterParam string `yaml:"filter_param" json:"filter_param" jsonschema:"description=Query parameter carrying search text"`
	PageSize    int    `yaml:"page_size" json:"page_size" jsonschema:"minimum=1,description=Items per page"`
}

// SessionConfig holds in-memory session settings
type SessionConfig struct {
	TTL         time.Duration `yaml:"ttl" json:"ttl" jsonschema:"default=30m,description=Idle session lifetime"`
	MaxSessions int           `yaml:"max_sessions" json:"max_sessions" jsonschema:"default=1000,minimum=1,description=Maximum number of live sessions"`
}

// DisplayConfig holds rendering settings
type DisplayConfig struct {
	Timezone      string `yaml:"timezone" json:"timezone" jsonschema:"default=Asia/Seoul,description=Timezone for displayed dates"`
	DateFormat    string `yaml:"date_format" json:"date_format" jsonschema:"default=2006-01-02 15:04,description=Go layout for displayed dates"`
	SummaryLength int    `yaml:"summary_length" json:"summary_length" jsonschema:"default=100,minimum=1,description=News summary length in characters"`
	HomeItems     int    `yaml:"home_items" json:"home_items" jsonschema:"default=3,minimum=1,description=Items per domain on the home page"`
}

// RSSConfig holds rss settings
type RSSConfig struct {
	Size int `yaml:"size" json:"size" jsonschema:"default=20,minimum=1,description=Items per RSS feed"`
}

// Default returns configuration with all defaults set
func Default() *Config {
	cfg := &Config{}
	setDefaults(cfg)
	return cfg
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// verify against embedded schema
	if err := VerifyAgainstEmbeddedSchema(&cfg); err != nil {
		// log warning but don't fail - schema validation is supplementary
		fmt.Printf("warning: schema validation failed: %v\n", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":3000"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:3000"
	}

	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8080"
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = 10 * time.Second
	}
	endpointDefaults(&cfg.API.News, "api/news", "ynaTtl", 9)
	endpointDefaults(&cfg.API.Disaster, "api/disaster", "keyword", 10)

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 30 * time.Minute
	}
	if cfg.Session.MaxSessions == 0 {
		cfg.Session.MaxSessions = 1000
	}

	if cfg.Display.Timezone == "" {
		cfg.Display.Timezone = "Asia/Seoul"
	}
	if cfg.Display.DateFormat == "" {
		cfg.Display.DateFormat = "2006-01-02 15:04"
	}
	if cfg.Display.SummaryLength == 0 {
		cfg.Display.SummaryLength = 100
	}
	if cfg.Display.HomeItems == 0 {
		cfg.Display.HomeItems = 3
	}

	if cfg.RSS.Size == 0 {
		cfg.RSS.Size = 20
	}
}

func endpointDefaults(ep *EndpointConfig, path, param string, size int) {
	if ep.Path == "" {
		ep.Path = path
	}
	if ep.FilterParam == "" {
		ep.FilterParam = param
	}
	if ep.PageSize == 0 {
		ep.PageSize = size
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}

	if !strings.HasPrefix(cfg.API.BaseURL, "http://") && !strings.HasPrefix(cfg.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) url, got %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout < 100*time.Millisecond {
		return fmt.Errorf("api.timeout must be at least 100ms")
	}
	if cfg.API.News.PageSize < 1 || cfg.API.Disaster.PageSize < 1 {
		return fmt.Errorf("api page_size must be at least 1")
	}

	if cfg.Session.TTL < time.Second {
		return fmt.Errorf("session.ttl must be at least 1 second")
	}
	if cfg.Session.MaxSessions < 1 {
		return fmt.Errorf("session.max_sessions must be at least 1")
	}

	if _, err := time.LoadLocation(cfg.Display.Timezone); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	if cfg.Display.SummaryLength < 1 {
		return fmt.Errorf("display.summary_length must be at least 1")
	}
	if cfg.Display.HomeItems < 1 {
		return fmt.Errorf("display.home_items must be at least 1")
	}

	if cfg.RSS.Size < 1 {
		return fmt.Errorf("rss.size must be at least 1")
	}
	return nil
}

// Location returns the display timezone, UTC if it can't be loaded
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GetServerConfig returns server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetFullConfig returns the full configuration
func (c *Config) GetFullConfig() *Config {
	return c
}
