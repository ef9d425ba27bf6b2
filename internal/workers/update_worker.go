package workers

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"gemini-relay-bot/internal/common/logger"
)

// overloadBackoff is how often Start retries an update while every worker is busy.
const overloadBackoff = 50 * time.Millisecond

type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// UpdateWorker runs update handlers on a bounded goroutine pool. Ordering per
// user is the handler's concern; the pool only caps concurrency.
type UpdateWorker struct {
	ctx     context.Context
	handler UpdateHandler
	pool    *ants.Pool
	wg      sync.WaitGroup
	log     zerolog.Logger
}

type poolLogger struct {
	log zerolog.Logger
}

func (l poolLogger) Printf(format string, args ...interface{}) {
	l.log.Warn().Msgf(format, args...)
}

// NewUpdateWorker creates a pool of size workers. Handlers run with ctx, not
// with the context of whoever submitted the update.
func NewUpdateWorker(ctx context.Context, handler UpdateHandler, size int) (*UpdateWorker, error) {
	w := &UpdateWorker{
		ctx:     ctx,
		handler: handler,
		log:     logger.With("update_worker"),
	}

	pool, err := ants.NewPool(size,
		ants.WithPanicHandler(func(p interface{}) {
			w.log.Error().Interface("panic", p).Msg("Update task panicked")
		}),
		ants.WithLogger(poolLogger{log: w.log}),
		ants.WithNonblocking(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	w.pool = pool
	return w, nil
}

// Submit hands one update to an idle worker and never blocks. When every
// worker is busy the update is dropped and ants.ErrPoolOverload returned.
func (w *UpdateWorker) Submit(update tgbotapi.Update) error {
	err := w.submit(update)
	if errors.Is(err, ants.ErrPoolOverload) {
		w.log.Warn().
			Int("update_id", update.UpdateID).
			Int("running", w.pool.Running()).
			Msg("Worker pool full, dropping update")
	}
	return err
}

func (w *UpdateWorker) submit(update tgbotapi.Update) error {
	w.wg.Add(1)
	err := w.pool.Submit(func() {
		defer w.wg.Done()
		w.handler.HandleUpdate(w.ctx, update)
	})
	if err != nil {
		w.wg.Done()
		return fmt.Errorf("failed to submit update %d: %w", update.UpdateID, err)
	}
	return nil
}

// Start consumes updates until ctx is done or the channel is closed.
func (w *UpdateWorker) Start(ctx context.Context, updates <-chan tgbotapi.Update) {
	w.log.Info().Int("pool_size", w.pool.Cap()).Msg("Starting update worker")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Stopping update worker")
			return
		case update, ok := <-updates:
			if !ok {
				w.log.Info().Msg("Update channel closed")
				return
			}
			if err := w.submitWait(ctx, update); err != nil {
				w.log.Error().Err(err).Msg("Dropping update")
			}
		}
	}
}

// submitWait retries while the pool is full. Polled updates are already
// confirmed to Telegram, so they wait for a worker instead of being dropped.
func (w *UpdateWorker) submitWait(ctx context.Context, update tgbotapi.Update) error {
	return retry.Do(ctx, retry.NewConstant(overloadBackoff), func(ctx context.Context) error {
		err := w.submit(update)
		if errors.Is(err, ants.ErrPoolOverload) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// Running is the number of handlers currently executing.
func (w *UpdateWorker) Running() int {
	return w.pool.Running()
}

// Stop waits up to timeout for queued handlers and releases the pool.
func (w *UpdateWorker) Stop(timeout time.Duration) error {
	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	defer w.pool.Release()
	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("update worker: %d handlers still running after %s", w.pool.Running(), timeout)
	}
}
