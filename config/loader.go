package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName = "interview"
	envPrefix  = "DEX_INTERVIEW"
)

// DefaultSystemPrompt is the interviewer persona used when none is configured.
const DefaultSystemPrompt = "You are a professional recruiter conducting a job interview" +
	"{{if .Position}} for a {{.Position}} position{{end}}. Ask one concise question at a time." +
	"{{if .Language}} Conduct the interview in the language with code {{.Language}}.{{end}}"

// expandPath resolves paths like "~/" to the user's home directory.
func expandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not get user home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "0s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.max_upload_bytes", 10*1024*1024) // 10 MiB

	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")

	v.SetDefault("transcription.provider", "openai")
	v.SetDefault("transcription.model", "gpt-4o-mini-transcribe")
	v.SetDefault("transcription.language", "fr")
	v.SetDefault("transcription.timeout", "30s")
	v.SetDefault("transcription.google.sample_rate_hertz", 48000)
	v.SetDefault("transcription.google.credentials_file", "")

	v.SetDefault("reply.model", "gpt-4o-mini")
	v.SetDefault("reply.max_tokens", 80)
	v.SetDefault("reply.temperature", 0.5)
	v.SetDefault("reply.timeout", "30s")

	v.SetDefault("synthesis.model", "gpt-4o-mini-tts")
	v.SetDefault("synthesis.voice", "alloy")
	v.SetDefault("synthesis.first_byte_timeout", "30s")
	v.SetDefault("synthesis.filler", "")

	v.SetDefault("interview.system_prompt", DefaultSystemPrompt)
	v.SetDefault("interview.position", "")
	v.SetDefault("interview.max_messages", 6)

	v.SetDefault("session.default_id", "default")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("session.max_sessions", 1000)

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.username", "")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.audio_ttl", "10m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("metrics.enabled", true)
}

// Flags registers the command line flags understood by Load.
func Flags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to interview.yaml")
	fs.String("addr", "", "listen address, overrides server.address")
	fs.String("log-level", "", "log level, overrides logging.level")
}

// Load reads the configuration from an explicit file, or from interview.yaml
// in the working directory or ~/Dexter/config. A missing file is not an
// error: defaults and the environment still apply.
func Load(configPath string) (*Config, error) {
	return load(configPath, nil)
}

// LoadFlags is Load driven by a parsed flag set registered with Flags.
func LoadFlags(fs *pflag.FlagSet) (*Config, error) {
	configPath, err := fs.GetString("config")
	if err != nil {
		return nil, fmt.Errorf("could not read --config flag: %w", err)
	}
	return load(configPath, fs)
}

func load(configPath string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		path, err := expandPath(configPath)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := expandPath("~/Dexter/config"); err == nil {
			v.AddConfigPath(dir)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("openai.api_key", envPrefix+"_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("could not bind openai api key: %w", err)
	}

	if fs != nil {
		for key, flag := range map[string]string{"server.address": "addr", "logging.level": "log-level"} {
			if f := fs.Lookup(flag); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("could not bind flag %s: %w", flag, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("could not read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}
