// Package worker hosts background loops that run alongside the HTTP server.
package worker

import (
	"context"
	"log/slog"
	"time"

	"pasarlink/internal/pkg/config"
	"pasarlink/internal/usecase/commands"
)

// Reaper periodically expires overdue delivery offers and reissues dispatch.
// Couriers that never respond would otherwise pin their orders forever.
type Reaper struct {
	dispatch commands.DispatchCommands
	interval time.Duration
	logger   *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

func NewReaper(dispatch commands.DispatchCommands, cfg config.Config, logger *slog.Logger) *Reaper {
	return &Reaper{
		dispatch: dispatch,
		interval: cfg.Dispatch.SweepInterval,
		logger:   logger,
		done:     make(chan struct{}),
	}
}

func (r *Reaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	go r.run(ctx)
}

func (r *Reaper) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
}

func (r *Reaper) run(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.sweep(ctx)
		}
	}
}

func (r *Reaper) sweep(ctx context.Context) {
	result, err := r.dispatch.SweepExpiredOffers(ctx)
	if err != nil {
		r.logger.Error("offer sweep failed", "error", err)
		return
	}
	if result.Expired > 0 || result.Dispatched > 0 {
		r.logger.Info("offer sweep completed",
			"expired", result.Expired,
			"reissued", result.Reissued,
			"dispatched", result.Dispatched,
		)
	}
}
