package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestEnvironment points HOME and the working directory at a temporary
// directory so no real interview.yaml is picked up.
// It returns the path to the temporary Dexter config directory.
func setupTestEnvironment(t *testing.T) string {
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("OPENAI_API_KEY", "")

	dexterConfigPath := filepath.Join(tempDir, "Dexter", "config")
	require.NoError(t, os.MkdirAll(dexterConfigPath, 0755))

	origDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(tempDir))
	t.Cleanup(func() { _ = os.Chdir(origDir) })

	return dexterConfigPath
}

func TestLoadDefaults(t *testing.T) {
	setupTestEnvironment(t)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, int64(10*1024*1024), cfg.Server.MaxUploadBytes)
	assert.Equal(t, "openai", cfg.Transcription.Provider)
	assert.Equal(t, "gpt-4o-mini-transcribe", cfg.Transcription.Model)
	assert.Equal(t, "fr", cfg.Transcription.Language)
	assert.Equal(t, "gpt-4o-mini", cfg.Reply.Model)
	assert.Equal(t, 80, cfg.Reply.MaxTokens)
	assert.InDelta(t, 0.5, cfg.Reply.Temperature, 1e-6)
	assert.Equal(t, "gpt-4o-mini-tts", cfg.Synthesis.Model)
	assert.Equal(t, "alloy", cfg.Synthesis.Voice)
	assert.Equal(t, 6, cfg.Interview.MaxMessages)
	assert.Equal(t, DefaultSystemPrompt, cfg.Interview.SystemPrompt)
	assert.Equal(t, "default", cfg.Session.DefaultID)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.AudioTTL)
	assert.Empty(t, cfg.Cache.Addr)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromDexterConfigDir(t *testing.T) {
	dexterPath := setupTestEnvironment(t)

	yaml := []byte(`
interview:
  position: backend engineer
  max_messages: 4
reply:
  temperature: 0.2
session:
  ttl: 5m
cache:
  addr: localhost:6379
`)
	require.NoError(t, os.WriteFile(filepath.Join(dexterPath, "interview.yaml"), yaml, 0644))

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "backend engineer", cfg.Interview.Position)
	assert.Equal(t, 4, cfg.Interview.MaxMessages)
	assert.InDelta(t, 0.2, cfg.Reply.Temperature, 1e-6)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "localhost:6379", cfg.Cache.Addr)
}

func TestEnvironmentOverrides(t *testing.T) {
	setupTestEnvironment(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("DEX_INTERVIEW_REPLY_MAX_TOKENS", "120")
	t.Setenv("DEX_INTERVIEW_TRANSCRIPTION_LANGUAGE", "en")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, 120, cfg.Reply.MaxTokens)
	assert.Equal(t, "en", cfg.Transcription.Language)
}

func TestExplicitPathMustExist(t *testing.T) {
	setupTestEnvironment(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInvalidYAML(t *testing.T) {
	setupTestEnvironment(t)
	path := filepath.Join(t.TempDir(), "interview.yaml")
	require.NoError(t, os.WriteFile(path, []byte("reply: [not: valid"), 0644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "could not read config file")
}

func TestValidationFailures(t *testing.T) {
	setupTestEnvironment(t)

	cases := map[string]string{
		"DEX_INTERVIEW_TRANSCRIPTION_PROVIDER": "azure",
		"DEX_INTERVIEW_REPLY_MAX_TOKENS":       "0",
		"DEX_INTERVIEW_INTERVIEW_MAX_MESSAGES": "0",
		"DEX_INTERVIEW_SESSION_MAX_SESSIONS":   "0",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "config validation failed")
		})
	}
}

func TestLoadFlagsOverridesAddress(t *testing.T) {
	setupTestEnvironment(t)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	require.NoError(t, fs.Parse([]string{"--addr", "127.0.0.1:9999", "--log-level", "debug"}))

	cfg, err := LoadFlags(fs)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.Server.Address)
	assert.Equal(t, "debug", cfg.Logging.Level)
}
