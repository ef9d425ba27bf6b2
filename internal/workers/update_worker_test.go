package workers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingHandler struct {
	mu    sync.Mutex
	seen  []int
	delay time.Duration
	panic bool
}

func (h *countingHandler) HandleUpdate(_ context.Context, update tgbotapi.Update) {
	if h.delay > 0 {
		time.Sleep(h.delay)
	}
	if h.panic {
		panic("handler exploded")
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, update.UpdateID)
}

type blockingHandler struct {
	release chan struct{}
}

func (h *blockingHandler) HandleUpdate(context.Context, tgbotapi.Update) {
	<-h.release
}

func (h *countingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func TestUpdateWorker_ProcessesChannelUntilClosed(t *testing.T) {
	h := &countingHandler{}
	w, err := NewUpdateWorker(context.Background(), h, 4)
	require.NoError(t, err)

	updates := make(chan tgbotapi.Update, 20)
	for i := 1; i <= 20; i++ {
		updates <- tgbotapi.Update{UpdateID: i}
	}
	close(updates)

	w.Start(context.Background(), updates)
	require.NoError(t, w.Stop(time.Second))

	assert.Equal(t, 20, h.count())
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20}, h.seen)
}

func TestUpdateWorker_StartReturnsOnCancel(t *testing.T) {
	w, err := NewUpdateWorker(context.Background(), &countingHandler{}, 2)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx, make(chan tgbotapi.Update))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start did not return after cancel")
	}
	assert.NoError(t, w.Stop(time.Second))
}

func TestUpdateWorker_SubmitAfterStop(t *testing.T) {
	w, err := NewUpdateWorker(context.Background(), &countingHandler{}, 1)
	require.NoError(t, err)
	require.NoError(t, w.Stop(time.Second))

	err = w.Submit(tgbotapi.Update{UpdateID: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ants.ErrPoolClosed))
}

func TestUpdateWorker_SubmitDoesNotBlockWhenFull(t *testing.T) {
	release := make(chan struct{})
	h := &blockingHandler{release: release}
	w, err := NewUpdateWorker(context.Background(), h, 1)
	require.NoError(t, err)

	require.NoError(t, w.Submit(tgbotapi.Update{UpdateID: 1}))

	start := time.Now()
	err = w.Submit(tgbotapi.Update{UpdateID: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ants.ErrPoolOverload))
	assert.Less(t, time.Since(start), 500*time.Millisecond)

	close(release)
	require.NoError(t, w.Stop(time.Second))
}

func TestUpdateWorker_StartWaitsForFreeWorker(t *testing.T) {
	h := &countingHandler{delay: 20 * time.Millisecond}
	w, err := NewUpdateWorker(context.Background(), h, 1)
	require.NoError(t, err)

	updates := make(chan tgbotapi.Update, 5)
	for i := 1; i <= 5; i++ {
		updates <- tgbotapi.Update{UpdateID: i}
	}
	close(updates)

	w.Start(context.Background(), updates)
	require.NoError(t, w.Stop(time.Second))
	assert.Equal(t, 5, h.count())
}

func TestUpdateWorker_StopTimesOut(t *testing.T) {
	h := &countingHandler{delay: 300 * time.Millisecond}
	w, err := NewUpdateWorker(context.Background(), h, 1)
	require.NoError(t, err)

	require.NoError(t, w.Submit(tgbotapi.Update{UpdateID: 1}))
	assert.Error(t, w.Stop(10*time.Millisecond))
}

func TestUpdateWorker_PanicDoesNotKillPool(t *testing.T) {
	h := &countingHandler{panic: true}
	w, err := NewUpdateWorker(context.Background(), h, 1)
	require.NoError(t, err)

	require.NoError(t, w.Submit(tgbotapi.Update{UpdateID: 1}))
	require.NoError(t, w.Stop(time.Second))
}
