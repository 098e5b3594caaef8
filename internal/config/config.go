// Package config provides configuration management for the flat-stake calculator.
package config

import (
	"fmt"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Allocation AllocationConfig `mapstructure:"allocation" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Share      ShareConfig      `mapstructure:"share" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// AllocationConfig represents allocation defaults
type AllocationConfig struct {
	DefaultBudget int64 `mapstructure:"default_budget" validate:"required,gt=0"`
	StakeUnit     int64 `mapstructure:"stake_unit" validate:"required,gt=0"`
	MaxOutcomes   int   `mapstructure:"max_outcomes" validate:"required,gt=0,lte=100"`
}

// ServerConfig represents the HTTP/websocket service configuration
type ServerConfig struct {
	Port                  int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AllowedOrigins        []string `mapstructure:"allowed_origins" validate:"required,min=1"`
	ReadTimeoutSeconds    int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	WriteTimeoutSeconds   int      `mapstructure:"write_timeout_seconds" validate:"required,gt=0"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
	WSMessagesPerSecond   float64  `mapstructure:"ws_messages_per_second" validate:"required,gt=0"`
	WSBurst               int      `mapstructure:"ws_burst" validate:"required,gt=0"`
}

// ShareConfig represents the share-text settings
type ShareConfig struct {
	IntentURL string   `mapstructure:"intent_url" validate:"required,url"`
	Title     string   `mapstructure:"title" validate:"required"`
	Hashtags  []string `mapstructure:"hashtags"`
	PageURL   string   `mapstructure:"page_url" validate:"omitempty,url"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required,startswith=/"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// ListenAddress returns the address the HTTP server binds to
func (c *Config) ListenAddress() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// ReadTimeout returns the server read timeout
func (c *Config) ReadTimeout() time.Duration {
	return time.Duration(c.Server.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the server write timeout
func (c *Config) WriteTimeout() time.Duration {
	return time.Duration(c.Server.WriteTimeoutSeconds) * time.Second
}

// RequestTimeout returns the per-request handler timeout
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}
