package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/coursecheck/internal/profile"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 30*time.Minute, cfg.Server.StoreTTL)
	assert.Equal(t, "anthropic", cfg.LLM.Provider)
	assert.Equal(t, 0.2, cfg.LLM.Temperature)
	assert.False(t, cfg.Validation.Trim)
	require.NoError(t, cfg.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{name: "valid default config", modify: func(c *Config) {}},
		{name: "bad log level", modify: func(c *Config) { c.Log.Level = "loud" }, wantErr: true},
		{name: "bad log format", modify: func(c *Config) { c.Log.Format = "xml" }, wantErr: true},
		{name: "negative ttl", modify: func(c *Config) { c.Server.StoreTTL = -time.Second }, wantErr: true},
		{name: "zero event poll", modify: func(c *Config) { c.Server.EventPoll = 0 }, wantErr: true},
		{name: "unknown provider", modify: func(c *Config) { c.LLM.Provider = "mystery" }, wantErr: true},
		{name: "zero max tokens", modify: func(c *Config) { c.LLM.MaxTokens = 0 }, wantErr: true},
		{name: "temperature too high", modify: func(c *Config) { c.LLM.Temperature = 1.1 }, wantErr: true},
		{name: "negative target", modify: func(c *Config) { c.Validation.TargetCredits = -1 }, wantErr: true},
		{name: "unknown school", modify: func(c *Config) { c.Validation.School = "nowhere" }, wantErr: true},
		{name: "known school", modify: func(c *Config) { c.Validation.School = "northeastern" }},
		{
			name:    "override for unknown profile",
			modify:  func(c *Config) { c.Profiles = map[string]ProfileOverride{"nowhere": {}} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
log:
  level: debug
  format: json
server:
  addr: ":9090"
  store_ttl: 45m
llm:
  provider: openai
  model: gpt-4o
validation:
  school: northeastern
  trim: true
  target_credits: 132
transcript:
  completed_coop_grades: [S, CR, P]
  split_summer: true
profiles:
  northeastern:
    discontinued: ["CS 4999"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 45*time.Minute, cfg.Server.StoreTTL)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.True(t, cfg.Validation.Trim)
	assert.Equal(t, 132, cfg.Validation.TargetCredits)
	assert.Equal(t, []string{"S", "CR", "P"}, cfg.Transcript.CompletedCoopGrades)
	assert.Equal(t, []string{"CS 4999"}, cfg.Profiles["northeastern"].Discontinued)
}

func TestLoadFromFile_Errors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("log: [unclosed"), 0o644))
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestMerge(t *testing.T) {
	base := DefaultConfig()
	base.Profiles = map[string]ProfileOverride{"drexel": {Discontinued: []string{"CS 100"}}}
	base.Merge(&Config{
		Log:        LogConfig{Level: "warn"},
		LLM:        LLMConfig{Model: "other-model"},
		Validation: ValidationConfig{Trim: true},
		Profiles:   map[string]ProfileOverride{"drexel": {Discontinued: []string{"CS 200"}}},
	})

	assert.Equal(t, "warn", base.Log.Level)
	assert.Equal(t, "text", base.Log.Format, "unset fields keep the lower layer")
	assert.Equal(t, "other-model", base.LLM.Model)
	assert.Equal(t, "anthropic", base.LLM.Provider)
	assert.True(t, base.Validation.Trim)
	assert.Equal(t, []string{"CS 100", "CS 200"}, base.Profiles["drexel"].Discontinued)

	base.Merge(nil)
	assert.Equal(t, "warn", base.Log.Level)
}

func TestLoader_Layers(t *testing.T) {
	home := t.TempDir()
	project := t.TempDir()
	sub := filepath.Join(project, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))

	userPath := filepath.Join(home, UserConfigDir, UserConfigFile)
	require.NoError(t, os.MkdirAll(filepath.Dir(userPath), 0o755))
	require.NoError(t, os.WriteFile(userPath, []byte("llm:\n  model: user-model\nlog:\n  level: warn\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(project, ProjectConfigFile), []byte("llm:\n  model: project-model\n"), 0o644))
	explicit := filepath.Join(t.TempDir(), "explicit.yaml")
	require.NoError(t, os.WriteFile(explicit, []byte("server:\n  addr: \":7000\"\n"), 0o644))

	l := NewLoader(slog.New(slog.DiscardHandler))
	l.home = func() (string, error) { return home, nil }
	l.cwd = func() (string, error) { return sub, nil }

	cfg, err := l.Load(explicit)
	require.NoError(t, err)
	assert.Equal(t, "project-model", cfg.LLM.Model, "project config overrides user config")
	assert.Equal(t, "warn", cfg.Log.Level, "user config applies when the project file is silent")
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestLoader_MissingExplicitFile(t *testing.T) {
	l := NewLoader(nil)
	l.home = func() (string, error) { return t.TempDir(), nil }
	l.cwd = func() (string, error) { return t.TempDir(), nil }

	_, err := l.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	cfg, err := l.Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().LLM, cfg.LLM)
}

func TestLoader_InvalidResult(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  provider: mystery\n"), 0o644))
	l := NewLoader(nil)
	l.home = func() (string, error) { return t.TempDir(), nil }
	l.cwd = func() (string, error) { return t.TempDir(), nil }

	_, err := l.Load(path)
	assert.Error(t, err)
}

func TestEnsureUserConfig(t *testing.T) {
	home := t.TempDir()
	l := NewLoader(slog.New(slog.DiscardHandler))
	l.home = func() (string, error) { return home, nil }

	require.NoError(t, l.EnsureUserConfig())
	cfg, err := LoadFromFile(filepath.Join(home, UserConfigDir, UserConfigFile))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server, cfg.Server)

	// A second call leaves the file alone.
	require.NoError(t, l.EnsureUserConfig())
}

func TestTranscriptOptions(t *testing.T) {
	cfg := DefaultConfig()
	opts := cfg.TranscriptOptions()
	assert.True(t, opts.IsCompletedCoop("S"))
	assert.False(t, opts.IsCompletedCoop("P"))

	cfg.Transcript.CompletedCoopGrades = []string{"P"}
	cfg.Transcript.SplitSummer = true
	opts = cfg.TranscriptOptions()
	assert.True(t, opts.IsCompletedCoop("P"))
	assert.False(t, opts.IsCompletedCoop("S"))
	assert.True(t, opts.SplitSummer)
}

func TestApplyProfile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Profiles = map[string]ProfileOverride{"Northeastern": {Discontinued: []string{"CS 4999"}}}

	neu, err := profile.Load("northeastern")
	require.NoError(t, err)
	assert.False(t, neu.IsDiscontinued("CS 4999"))
	assert.True(t, cfg.ApplyProfile(neu).IsDiscontinued("CS 4999"))

	gen, err := profile.Load("general")
	require.NoError(t, err)
	assert.False(t, cfg.ApplyProfile(gen).IsDiscontinued("CS 4999"))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
}
