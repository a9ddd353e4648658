package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/EasterCompany/dex-interview-service/config"
	"github.com/EasterCompany/dex-interview-service/interfaces"
	"github.com/EasterCompany/dex-interview-service/llm"
	"github.com/spf13/pflag"
)

// ANSI color codes for formatted output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
)

func main() {
	fs := pflag.NewFlagSet("verify-config", pflag.ExitOnError)
	config.Flags(fs)
	_ = fs.Parse(os.Args[1:])

	fmt.Printf("%s--- Dexter Interview Config Verifier ---%s\n", ColorBlue, ColorReset)

	if path, _ := fs.GetString("config"); path != "" {
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("  %s[FAIL]%s File not found or not readable: %v\n", ColorRed, ColorReset, err)
			os.Exit(1)
		}
		fmt.Printf("  %s[OK]%s File exists and is readable.\n", ColorGreen, ColorReset)
	} else if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, "Dexter", "config", "interview.yaml")
		if _, err := os.Stat(path); err != nil {
			fmt.Printf("  %s[WARN]%s No %s, using defaults and environment.\n", ColorYellow, ColorReset, path)
		} else {
			fmt.Printf("  %s[OK]%s Found %s.\n", ColorGreen, ColorReset, path)
		}
	}

	cfg, err := config.LoadFlags(fs)
	if err != nil {
		fmt.Printf("  %s[FAIL]%s %v\n", ColorRed, ColorReset, err)
		os.Exit(1)
	}
	fmt.Printf("  %s[OK]%s Configuration is valid.\n", ColorGreen, ColorReset)

	allChecksPassed := true

	if cfg.OpenAI.APIKey == "" {
		fmt.Printf("  %s[FAIL]%s openai.api_key is empty and OPENAI_API_KEY is not set.\n", ColorRed, ColorReset)
		allChecksPassed = false
	} else {
		fmt.Printf("  %s[OK]%s OpenAI API key is set.\n", ColorGreen, ColorReset)
	}

	prompt, err := llm.BuildSystemPrompt(cfg.Interview.SystemPrompt, interfaces.Persona{
		Position: cfg.Interview.Position,
		Language: cfg.Transcription.Language,
	})
	if err != nil {
		fmt.Printf("  %s[FAIL]%s System prompt template: %v\n", ColorRed, ColorReset, err)
		allChecksPassed = false
	} else {
		fmt.Printf("  %s[OK]%s System prompt: %q\n", ColorGreen, ColorReset, prompt)
	}

	if cfg.Transcription.Provider == "google" && cfg.Transcription.Google.CredentialsFile != "" {
		if _, err := os.Stat(cfg.Transcription.Google.CredentialsFile); err != nil {
			fmt.Printf("  %s[FAIL]%s Google credentials file: %v\n", ColorRed, ColorReset, err)
			allChecksPassed = false
		}
	}

	if cfg.Cache.Addr == "" {
		fmt.Printf("  %s[WARN]%s cache.addr is empty, the audio archive is disabled.\n", ColorYellow, ColorReset)
	}

	fmt.Println("\n--------------------------")
	if allChecksPassed {
		fmt.Printf("%s✅ Configuration seems correct.%s\n", ColorGreen, ColorReset)
	} else {
		fmt.Printf("%s❌ Some issues were found in the configuration.%s\n", ColorRed, ColorReset)
		os.Exit(1)
	}
}
