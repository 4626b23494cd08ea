// Package config provides layered configuration loading for coursecheck.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dshills/coursecheck/internal/profile"
	"github.com/dshills/coursecheck/internal/transcript"
)

// Config represents the complete coursecheck configuration.
type Config struct {
	Log        LogConfig                  `yaml:"log"`
	Server     ServerConfig               `yaml:"server"`
	LLM        LLMConfig                  `yaml:"llm"`
	Validation ValidationConfig           `yaml:"validation"`
	Transcript TranscriptConfig           `yaml:"transcript"`
	Profiles   map[string]ProfileOverride `yaml:"profiles"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ServerConfig configures the HTTP server and the schedule store behind it.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	// StoreTTL is how long an untouched schedule stays in the store.
	StoreTTL time.Duration `yaml:"store_ttl"`
	// EventPoll is the interval at which event streams check for updates.
	EventPoll time.Duration `yaml:"event_poll"`
}

// LLMConfig configures schedule generation. API keys are read from the
// environment, never from config files.
type LLMConfig struct {
	// Provider is anthropic, openai or google.
	Provider string `yaml:"provider"`
	// Model is the provider's model name; empty selects the provider default.
	Model       string  `yaml:"model"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// ValidationConfig holds defaults for validation runs.
type ValidationConfig struct {
	// School is a profile id; empty resolves from the schedule.
	School        string `yaml:"school"`
	Trim          bool   `yaml:"trim"`
	TargetCredits int    `yaml:"target_credits"`
}

// TranscriptConfig configures transcript grouping.
type TranscriptConfig struct {
	// CompletedCoopGrades replaces the built-in set of grades that mark a
	// co-op as finished.
	CompletedCoopGrades []string `yaml:"completed_coop_grades"`
	SplitSummer         bool     `yaml:"split_summer"`
}

// ProfileOverride extends a built-in school profile.
type ProfileOverride struct {
	Discontinued []string `yaml:"discontinued"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			StoreTTL:  30 * time.Minute,
			EventPoll: time.Second,
		},
		LLM: LLMConfig{
			Provider:    "anthropic",
			MaxTokens:   8192,
			Temperature: 0.2,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Server.StoreTTL < 0 {
		return fmt.Errorf("server.store_ttl must not be negative")
	}
	if c.Server.EventPoll <= 0 {
		return fmt.Errorf("server.event_poll must be positive")
	}
	switch c.LLM.Provider {
	case "anthropic", "openai", "google":
	default:
		return fmt.Errorf("llm.provider must be anthropic, openai or google, got %q", c.LLM.Provider)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 1 {
		return fmt.Errorf("llm.temperature must be between 0 and 1")
	}
	if c.Validation.TargetCredits < 0 {
		return fmt.Errorf("validation.target_credits must not be negative")
	}
	if c.Validation.School != "" {
		if _, err := profile.Load(c.Validation.School); err != nil {
			return fmt.Errorf("validation.school: %w", err)
		}
	}
	for id := range c.Profiles {
		if _, err := profile.Load(id); err != nil {
			return fmt.Errorf("profiles: %w", err)
		}
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := &Config{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for
// non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Log
	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}
	if other.Log.Format != "" {
		c.Log.Format = other.Log.Format
	}

	// Server
	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.StoreTTL != 0 {
		c.Server.StoreTTL = other.Server.StoreTTL
	}
	if other.Server.EventPoll != 0 {
		c.Server.EventPoll = other.Server.EventPoll
	}

	// LLM
	if other.LLM.Provider != "" {
		c.LLM.Provider = other.LLM.Provider
	}
	if other.LLM.Model != "" {
		c.LLM.Model = other.LLM.Model
	}
	if other.LLM.MaxTokens != 0 {
		c.LLM.MaxTokens = other.LLM.MaxTokens
	}
	if other.LLM.Temperature != 0 {
		c.LLM.Temperature = other.LLM.Temperature
	}

	// Validation
	if other.Validation.School != "" {
		c.Validation.School = other.Validation.School
	}
	if other.Validation.Trim {
		c.Validation.Trim = true
	}
	if other.Validation.TargetCredits != 0 {
		c.Validation.TargetCredits = other.Validation.TargetCredits
	}

	// Transcript
	if len(other.Transcript.CompletedCoopGrades) > 0 {
		c.Transcript.CompletedCoopGrades = other.Transcript.CompletedCoopGrades
	}
	if other.Transcript.SplitSummer {
		c.Transcript.SplitSummer = true
	}

	// Profiles accumulate across layers.
	for id, o := range other.Profiles {
		if c.Profiles == nil {
			c.Profiles = make(map[string]ProfileOverride)
		}
		cur := c.Profiles[id]
		cur.Discontinued = append(cur.Discontinued, o.Discontinued...)
		c.Profiles[id] = cur
	}
}

// TranscriptOptions returns the grouping options this config selects.
func (c *Config) TranscriptOptions() transcript.Options {
	opts := transcript.DefaultOptions()
	if len(c.Transcript.CompletedCoopGrades) > 0 {
		opts.CompletedCoopGrades = append([]string(nil), c.Transcript.CompletedCoopGrades...)
	}
	opts.SplitSummer = c.Transcript.SplitSummer
	return opts
}

// ApplyProfile returns p extended with any configured overrides.
func (c *Config) ApplyProfile(p profile.Profile) profile.Profile {
	for id, o := range c.Profiles {
		if strings.EqualFold(strings.TrimSpace(id), p.ID) && len(o.Discontinued) > 0 {
			p = p.WithDiscontinued(o.Discontinued...)
		}
	}
	return p
}

// ParseLevel converts a level name into a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds the process logger described by c, writing to w.
func (c LogConfig) NewLogger(w io.Writer) *slog.Logger {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		lvl = slog.LevelInfo
	}
	hopts := &slog.HandlerOptions{Level: lvl}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}
