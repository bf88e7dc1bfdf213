package usecase

import (
	"context"
	"log/slog"
	"time"
)

// DefaultReapInterval is the period of the abandoned room sweep.
const DefaultReapInterval = 30 * time.Second

type sweeper interface {
	Reap() int
}

// Reaper periodically reclaims rooms whose players are all disconnected.
type Reaper struct {
	logger   *slog.Logger
	sweeper  sweeper
	interval time.Duration
}

func NewReaper(logger *slog.Logger, sweeper sweeper, interval time.Duration) *Reaper {
	if interval <= 0 {
		interval = DefaultReapInterval
	}

	return &Reaper{
		logger:   logger.With("component", "reaper"),
		sweeper:  sweeper,
		interval: interval,
	}
}

// Run - sweeps on every tick until ctx is done.
func (that *Reaper) Run(ctx context.Context) {
	ticker := time.NewTicker(that.interval)
	defer ticker.Stop()

	that.logger.Info("reaper started", "interval", that.interval)

	for {
		select {
		case <-ctx.Done():
			that.logger.Info("reaper stopped")
			return
		case <-ticker.C:
			that.tick()
		}
	}
}

func (that *Reaper) tick() {
	defer func() {
		if r := recover(); r != nil {
			that.logger.Error("sweep panicked", "method", "tick", "panic", r)
		}
	}()

	if n := that.sweeper.Reap(); n > 0 {
		that.logger.Debug("sweep finished", "method", "tick", "deleted", n)
	}
}
