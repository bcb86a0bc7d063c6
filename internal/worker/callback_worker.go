package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// retrier is implemented by service.CallbackService.
type retrier interface {
	RetryPendingCallbacks() error
}

// CallbackWorker sweeps undelivered merchant callbacks on a fixed interval.
type CallbackWorker struct {
	callbacks retrier
	interval  time.Duration
}

// NewCallbackWorker constructs a CallbackWorker.
func NewCallbackWorker(callbacks retrier, interval time.Duration) *CallbackWorker {
	return &CallbackWorker{
		callbacks: callbacks,
		interval:  interval,
	}
}

// Start runs one sweep immediately, then keeps sweeping every interval
// until the context is cancelled. Blocks; run it in its own goroutine.
func (w *CallbackWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("callback worker started")

	w.sweep()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.sweep()
		case <-ctx.Done():
			log.Info().Msg("callback worker stopped")
			return
		}
	}
}

func (w *CallbackWorker) sweep() {
	if err := w.callbacks.RetryPendingCallbacks(); err != nil {
		log.Error().Err(err).Msg("callback sweep failed")
	}
}
