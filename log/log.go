package log

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var (
	logger           = zerolog.New(os.Stderr).With().Timestamp().Logger()
	out    io.Writer = os.Stderr
	level            = zerolog.InfoLevel
)

// Init configures the process logger. Format is "console" or "json".
func Init(levelName, format string) error {
	return InitWriter(os.Stderr, levelName, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, levelName, format string) error {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(levelName)))
	if err != nil {
		return fmt.Errorf("could not parse log level %q: %w", levelName, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}

	switch strings.ToLower(format) {
	case "", "console":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	case "json":
	default:
		return fmt.Errorf("unknown log format %q", format)
	}

	out, level = w, lvl
	logger = zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	return nil
}

// Attach adds a destination that receives every entry as a JSON line.
// Loggers handed out before the call keep their old destinations.
func Attach(w io.Writer) {
	out = zerolog.MultiLevelWriter(out, w)
	logger = zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// Logger returns the process logger. Components keep their own child logger.
func Logger() zerolog.Logger {
	return logger
}

// Component returns a child logger tagged with the component name.
func Component(name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}

// Error logs an error together with the caller location.
func Error(context string, err error) {
	logger.Error().Err(err).Str("caller", caller(2)).Msg(context)
}

// Fatal logs an error and then exits the program.
func Fatal(context string, err error) {
	logger.Error().Err(err).Str("caller", caller(2)).Msg(context)
	os.Exit(1)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) > 2 {
		file = strings.Join(parts[len(parts)-2:], "/")
	}
	return fmt.Sprintf("%s:%d", file, line)
}
