package interfaces

import (
	"context"
	"time"
)

// AudioArchive keeps inbound payloads around for a while for debugging.
type AudioArchive interface {
	SaveAudio(ctx context.Context, key string, data []byte, ttl time.Duration) error
	LoadAudio(ctx context.Context, key string) ([]byte, error)
}
