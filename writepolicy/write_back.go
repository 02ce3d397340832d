package writepolicy

import (
	"context"
	"log/slog"
	"sync"

	"go.uber.org/atomic"

	"github.com/krisalay/policycache/types"
)

// writeReq represents one pending write operation that needs to be sent to the backing store.
type writeReq[K comparable, V any] struct {
	ctx   context.Context
	key   K
	value V
}

/*
WriteBackPolicy manages asynchronous writes to the backing store.
*/
type WriteBackPolicy[K comparable, V any] struct {

	// store is the backing store (DB, API, etc.)
	store types.Loader[K, V]

	logger *slog.Logger

	// ch is a buffered channel that holds pending write requests.
	ch chan writeReq[K, V]

	// mu orders OnWrite sends against Close so nothing is sent on a closed channel.
	mu     sync.RWMutex
	closed bool

	// dropped counts writes discarded because the queue was full or closed.
	dropped atomic.Uint64

	// wg is used to wait for the worker to finish during shutdown.
	wg sync.WaitGroup
}

// NewWriteBackPolicy creates a new write-back policy and starts its worker.
func NewWriteBackPolicy[K comparable, V any](store types.Loader[K, V], buffer int, logger *slog.Logger) *WriteBackPolicy[K, V] {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &WriteBackPolicy[K, V]{
		store:  store,
		logger: logger,
		ch:     make(chan writeReq[K, V], buffer),
	}

	// Start one background worker
	w.wg.Add(1)
	go w.worker()

	return w
}

// OnWrite queues the write for the worker.
// If the queue is full, the write is DROPPED: blocking would slow the cache down and
// defeat the purpose of write-back.
func (w *WriteBackPolicy[K, V]) OnWrite(ctx context.Context, key K, value V) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		w.dropped.Inc()
		return
	}

	select {
	case w.ch <- writeReq[K, V]{ctx, key, value}:
	default:
		w.dropped.Inc()
		w.logger.WarnContext(ctx, "write-back queue full, dropping write", "key", key)
	}
}

// Dropped returns how many writes never reached the queue.
func (w *WriteBackPolicy[K, V]) Dropped() uint64 { return w.dropped.Load() }

/*
worker runs in the background and processes queued writes.
This is where eventual consistency happens.
*/
func (w *WriteBackPolicy[K, V]) worker() {
	defer w.wg.Done()

	for req := range w.ch {
		if err := w.store.Put(req.ctx, req.key, req.value); err != nil {
			w.logger.WarnContext(req.ctx, "write-back failed", "key", req.key, "error", err)
		}
	}
}

/*
Close shuts down the write-back policy gracefully.
------------------
1. Stop accepting writes and close the channel
2. Wait for the worker to drain the queue

Close is idempotent.
*/
func (w *WriteBackPolicy[K, V]) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.ch)
	}
	w.mu.Unlock()

	w.wg.Wait()
}
