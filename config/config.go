package config

import (
	"fmt"
	"strings"
)

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("transcription config: %w", err)
	}
	if err := c.Reply.Validate(); err != nil {
		return fmt.Errorf("reply config: %w", err)
	}
	if err := c.Synthesis.Validate(); err != nil {
		return fmt.Errorf("synthesis config: %w", err)
	}
	if err := c.Interview.Validate(); err != nil {
		return fmt.Errorf("interview config: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	return nil
}

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	if strings.TrimSpace(s.Address) == "" {
		return fmt.Errorf("address cannot be empty")
	}
	if s.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", s.MaxUploadBytes)
	}
	if s.ReadTimeout < 0 || s.WriteTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

// Validate validates transcription configuration
func (t *TranscriptionConfig) Validate() error {
	switch t.Provider {
	case "openai":
		if t.Model == "" {
			return fmt.Errorf("model cannot be empty for the openai provider")
		}
	case "google":
		if t.Google.SampleRateHertz <= 0 {
			return fmt.Errorf("google.sample_rate_hertz must be positive, got %d", t.Google.SampleRateHertz)
		}
	default:
		return fmt.Errorf("unknown provider %q, expected openai or google", t.Provider)
	}
	if t.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// Validate validates reply configuration
func (r *ReplyConfig) Validate() error {
	if r.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if r.MaxTokens < 1 {
		return fmt.Errorf("max_tokens must be at least 1, got %d", r.MaxTokens)
	}
	if r.Temperature < 0 || r.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %f", r.Temperature)
	}
	if r.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	return nil
}

// Validate validates synthesis configuration
func (s *SynthesisConfig) Validate() error {
	if s.Model == "" {
		return fmt.Errorf("model cannot be empty")
	}
	if s.Voice == "" {
		return fmt.Errorf("voice cannot be empty")
	}
	if s.FirstByteTimeout < 0 {
		return fmt.Errorf("first_byte_timeout cannot be negative")
	}
	return nil
}

// Validate validates interview configuration
func (i *InterviewConfig) Validate() error {
	if strings.TrimSpace(i.SystemPrompt) == "" {
		return fmt.Errorf("system_prompt cannot be empty")
	}
	if i.MaxMessages < 1 {
		return fmt.Errorf("max_messages must be at least 1, got %d", i.MaxMessages)
	}
	return nil
}

// Validate validates session configuration
func (s *SessionConfig) Validate() error {
	if s.TTL <= 0 {
		return fmt.Errorf("ttl must be positive")
	}
	if s.SweepInterval <= 0 {
		return fmt.Errorf("sweep_interval must be positive")
	}
	if s.MaxSessions < 1 {
		return fmt.Errorf("max_sessions must be at least 1, got %d", s.MaxSessions)
	}
	return nil
}
