package config

import "time"

// Config is the full service configuration, read by viper from
// interview.yaml and DEX_INTERVIEW_* environment variables.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Transcription TranscriptionConfig `mapstructure:"transcription"`
	Reply         ReplyConfig         `mapstructure:"reply"`
	Synthesis     SynthesisConfig     `mapstructure:"synthesis"`
	Interview     InterviewConfig     `mapstructure:"interview"`
	Session       SessionConfig       `mapstructure:"session"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"` // 0 keeps long audio streams open
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxUploadBytes  int64         `mapstructure:"max_upload_bytes"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type TranscriptionConfig struct {
	Provider string        `mapstructure:"provider"` // "openai" or "google"
	Model    string        `mapstructure:"model"`
	Language string        `mapstructure:"language"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Google   GoogleConfig  `mapstructure:"google"`
}

type GoogleConfig struct {
	SampleRateHertz int32  `mapstructure:"sample_rate_hertz"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type ReplyConfig struct {
	Model       string        `mapstructure:"model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float32       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type SynthesisConfig struct {
	Model            string        `mapstructure:"model"`
	Voice            string        `mapstructure:"voice"`
	FirstByteTimeout time.Duration `mapstructure:"first_byte_timeout"`
	Filler           string        `mapstructure:"filler"` // spoken instead of an empty reply
}

type InterviewConfig struct {
	SystemPrompt string `mapstructure:"system_prompt"` // text/template, see llm.BuildSystemPrompt
	Position     string `mapstructure:"position"`
	MaxMessages  int    `mapstructure:"max_messages"`
}

type SessionConfig struct {
	DefaultID     string        `mapstructure:"default_id"` // used when a request carries no id
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxSessions   int           `mapstructure:"max_sessions"`
}

// CacheConfig points at the redis instance used to archive inbound audio.
// An empty Addr disables the archive.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	AudioTTL time.Duration `mapstructure:"audio_ttl"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
