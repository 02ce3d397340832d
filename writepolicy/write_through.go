package writepolicy

import (
	"context"
	"log/slog"

	"github.com/krisalay/policycache/types"
)

// WriteThroughPolicy writes to the backing store on the caller's goroutine, so a
// Put returns only after the store has answered.
type WriteThroughPolicy[K comparable, V any] struct {
	store  types.Loader[K, V]
	logger *slog.Logger
}

// NewWriteThroughPolicy creates a new write-through policy. A nil logger discards output.
func NewWriteThroughPolicy[K comparable, V any](store types.Loader[K, V], logger *slog.Logger) *WriteThroughPolicy[K, V] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &WriteThroughPolicy[K, V]{store: store, logger: logger}
}

// OnWrite writes the value to the backing store before returning.
// Failures are logged; the cached copy is kept either way.
func (w *WriteThroughPolicy[K, V]) OnWrite(ctx context.Context, key K, value V) {
	if err := w.store.Put(ctx, key, value); err != nil {
		w.logger.WarnContext(ctx, "write-through failed", "key", key, "error", err)
	}
}

// Close has nothing to release.
func (w *WriteThroughPolicy[K, V]) Close() {}
