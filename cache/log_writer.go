package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const (
	LogsKey = keyPrefix + "logs"
	maxLogs = 100 // Max number of log entries to store in Redis

	logBufferSize = 256
)

// LogWriter is an io.Writer that keeps the most recent log lines in redis.
// Lines are pushed by a background goroutine; when its buffer is full new
// lines are dropped so logging never waits on redis.
type LogWriter struct {
	db      *DB
	timeout time.Duration
	entries chan string
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Int64
}

func NewLogWriter(db *DB) *LogWriter {
	lw := newLogWriter(db, logBufferSize)
	go lw.run()
	return lw
}

func newLogWriter(db *DB, size int) *LogWriter {
	return &LogWriter{
		db:      db,
		timeout: time.Second,
		entries: make(chan string, size),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Write implements the io.Writer interface. It never blocks.
func (lw *LogWriter) Write(p []byte) (int, error) {
	// p is reused by the logger once Write returns.
	entry := string(trimNewline(p))
	select {
	case <-lw.quit:
	case lw.entries <- entry:
	default:
		lw.dropped.Add(1)
	}
	return len(p), nil
}

// Close pushes the buffered lines and stops the background goroutine.
func (lw *LogWriter) Close() error {
	lw.once.Do(func() {
		close(lw.quit)
		<-lw.done
	})
	return nil
}

func (lw *LogWriter) run() {
	defer close(lw.done)
	for {
		select {
		case entry := <-lw.entries:
			lw.push(entry)
		case <-lw.quit:
			for {
				select {
				case entry := <-lw.entries:
					lw.push(entry)
				default:
					return
				}
			}
		}
	}
}

func (lw *LogWriter) push(entry string) {
	ctx, cancel := context.WithTimeout(context.Background(), lw.timeout)
	defer cancel()

	pipe := lw.db.rdb.Pipeline()
	pipe.LPush(ctx, LogsKey, entry)
	pipe.LTrim(ctx, LogsKey, 0, maxLogs-1)
	// Errors are not logged: the logger writes through this writer.
	_, _ = pipe.Exec(ctx)
}

func trimNewline(p []byte) []byte {
	for len(p) > 0 && p[len(p)-1] == '\n' {
		p = p[:len(p)-1]
	}
	return p
}

// RecentLogs returns up to n log lines, newest first.
func (db *DB) RecentLogs(ctx context.Context, n int64) ([]string, error) {
	if n <= 0 || n > maxLogs {
		n = maxLogs
	}
	return db.rdb.LRange(ctx, LogsKey, 0, n-1).Result()
}
