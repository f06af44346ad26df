//go:build unit

package worker_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"pasarlink/internal/pkg/config"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/worker"
	commandsmock "pasarlink/tests/mock/commands"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func newTestReaper(t *testing.T, dispatch commands.DispatchCommands, interval time.Duration) *worker.Reaper {
	t.Helper()
	cfg := config.NewTestConfig()
	cfg.Dispatch.SweepInterval = interval
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return worker.NewReaper(dispatch, cfg, logger)
}

func TestReaper_SweepsOnInterval(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatch := commandsmock.NewMockDispatchCommands(ctrl)

	var mu sync.Mutex
	sweeps := 0
	swept := make(chan struct{}, 1)
	dispatch.EXPECT().
		SweepExpiredOffers(gomock.Any()).
		DoAndReturn(func(context.Context) (*commands.SweepResult, error) {
			mu.Lock()
			sweeps++
			mu.Unlock()
			select {
			case swept <- struct{}{}:
			default:
			}
			return &commands.SweepResult{}, nil
		}).
		MinTimes(1)

	r := newTestReaper(t, dispatch, 5*time.Millisecond)
	r.Start()

	select {
	case <-swept:
	case <-time.After(2 * time.Second):
		t.Fatal("reaper never swept")
	}
	r.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, sweeps, 1)
}

func TestReaper_StopWaitsForLoopExit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatch := commandsmock.NewMockDispatchCommands(ctrl)
	dispatch.EXPECT().
		SweepExpiredOffers(gomock.Any()).
		Return(&commands.SweepResult{}, nil).
		AnyTimes()

	r := newTestReaper(t, dispatch, 5*time.Millisecond)
	r.Start()
	time.Sleep(20 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

func TestReaper_StopBeforeStartIsSafe(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := newTestReaper(t, commandsmock.NewMockDispatchCommands(ctrl), time.Minute)
	r.Stop()
}
