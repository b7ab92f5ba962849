// Reelbot - Conversational Movie Catalog Assistant for Telegram
// Copyright 2026 Reelbot Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/reelbot/reelbot

// Package config loads and validates Reelbot configuration via Koanf v2
// with layered sources (highest priority wins): environment variables,
// an optional YAML config file, built-in defaults.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the root configuration.
type Config struct {
	Telegram TelegramConfig `koanf:"telegram"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Session  SessionConfig  `koanf:"session"`
	Match    MatchConfig    `koanf:"match"`
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// TelegramConfig configures the Bot API transport.
type TelegramConfig struct {
	// Token is the bot token from @BotFather.
	Token string `koanf:"token" validate:"required"`

	// AdminIDs are the numeric caller IDs allowed to mutate the catalog.
	AdminIDs []int64 `koanf:"admin_ids"`

	// PollTimeout is the getUpdates long-poll duration in seconds.
	PollTimeout int `koanf:"poll_timeout" validate:"gte=1,lte=300"`

	// SendRate / SendBurst bound outbound message throughput.
	SendRate  float64 `koanf:"send_rate" validate:"gt=0"`
	SendBurst int     `koanf:"send_burst" validate:"gte=1"`
}

// CatalogConfig configures catalog storage.
type CatalogConfig struct {
	// Path is the BadgerDB directory. Ignored when InMemory is set.
	Path string `koanf:"path"`

	// InMemory keeps the catalog in process memory (development only).
	InMemory bool `koanf:"in_memory"`
}

// SessionConfig configures pending-dialog lifetimes.
type SessionConfig struct {
	// TTL is how long an unanswered dialog stays valid.
	TTL time.Duration `koanf:"ttl"`

	// SweepInterval is how often expired dialogs are purged.
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// MatchConfig configures the fuzzy matcher.
type MatchConfig struct {
	// MinScore is the 0-100 similarity cutoff.
	MinScore int `koanf:"min_score" validate:"gte=1,lte=100"`

	// MaxCandidates caps how many candidates a prompt offers.
	MaxCandidates int `koanf:"max_candidates" validate:"gte=1,lte=10"`
}

// ServerConfig configures the ops HTTP surface.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port" validate:"gte=1,lte=65535"`
	Timeout time.Duration `koanf:"timeout"`
}

// LoggingConfig configures log output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all defaults applied. Defaults are
// loaded first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Telegram: TelegramConfig{
			PollTimeout: 30,
			SendRate:    20,
			SendBurst:   5,
		},
		Catalog: CatalogConfig{
			Path: "/data/reelbot",
		},
		Session: SessionConfig{
			TTL:           10 * time.Minute,
			SweepInterval: time.Minute,
		},
		Match: MatchConfig{
			MinScore:      60,
			MaxCandidates: 3,
		},
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    8090,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints plus cross-field rules the tags cannot
// express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}

	if !c.Catalog.InMemory && c.Catalog.Path == "" {
		return fmt.Errorf("config validation: catalog.path is required unless catalog.in_memory is set")
	}

	for _, id := range c.Telegram.AdminIDs {
		if id <= 0 {
			return fmt.Errorf("config validation: telegram.admin_ids must be positive, got %d", id)
		}
	}

	return nil
}
