package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EasterCompany/dex-interview-service/cache"
	"github.com/EasterCompany/dex-interview-service/config"
	"github.com/spf13/pflag"
)

func main() {
	fs := pflag.NewFlagSet("debug-cache", pflag.ExitOnError)
	config.Flags(fs)
	logCount := fs.Int64("logs", 20, "number of recent log lines to print")
	dump := fs.String("dump", "", "write the archived audio with this key to <key>.webm")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.LoadFlags(fs)
	if err != nil {
		log.Fatalf("Fatal error loading config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := cache.New(ctx, cfg.Cache)
	if err != nil {
		log.Fatalf("Failed to initialize cache: %v", err)
	}
	if db == nil {
		log.Fatal("cache.addr is not configured")
	}
	defer db.Close()

	if *dump != "" {
		data, err := db.LoadAudio(ctx, *dump)
		if err != nil {
			log.Fatalf("Failed to load audio: %v", err)
		}
		name := *dump + ".webm"
		if err := os.WriteFile(name, data, 0644); err != nil {
			log.Fatalf("Failed to write %s: %v", name, err)
		}
		fmt.Printf("Wrote %d bytes to %s\n", len(data), name)
		return
	}

	keys, err := db.AudioKeys(ctx)
	if err != nil {
		log.Fatalf("Failed to get audio keys: %v", err)
	}
	fmt.Printf("\n--- Archived audio (%d) ---\n", len(keys))
	for _, key := range keys {
		fmt.Printf("  - %s\n", key)
	}

	lines, err := db.RecentLogs(ctx, *logCount)
	if err != nil {
		log.Fatalf("Failed to get logs: %v", err)
	}
	fmt.Printf("\n--- Recent logs (%d) ---\n", len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		fmt.Println(lines[i])
	}
}
