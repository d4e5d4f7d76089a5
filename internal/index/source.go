package index

import (
	"context"
	"fmt"
)

// ProgressFunc receives loading progress in [0, 1] with a short message.
// It may be called from several goroutines, but never concurrently.
type ProgressFunc func(progress float64, message string)

// Source produces a Raw index payload.
type Source interface {
	Load(ctx context.Context, progress ProgressFunc) (*Raw, error)
	// Location describes where the source reads from, for logs and status.
	Location() string
}

// Load reads src and builds a snapshot from it. A nil progress is allowed.
func Load(ctx context.Context, src Source, progress ProgressFunc) (*Snapshot, error) {
	if progress == nil {
		progress = func(float64, string) {}
	}
	raw, err := src.Load(ctx, progress)
	if err != nil {
		return nil, fmt.Errorf("load index from %s: %w", src.Location(), err)
	}
	return Build(raw), nil
}
