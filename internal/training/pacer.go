package training

import (
	"context"
	"sync/atomic"
	"time"
)

// Pacer throttles the simulation to wall-clock time.
type Pacer interface {
	Wait(ctx context.Context) error
}

// NoPacer never waits. Headless training uses it.
type NoPacer struct{}

func (NoPacer) Wait(ctx context.Context) error { return nil }

// TickPacer releases one tick per interval. Fast mode skips the wait
// until it is switched off again; a paused pacer holds the simulation
// until resumed.
type TickPacer struct {
	ticker *time.Ticker
	fast   atomic.Bool
	paused atomic.Bool
}

// NewTickPacer creates a pacer running at fps frames per second.
func NewTickPacer(fps int) *TickPacer {
	if fps <= 0 {
		fps = 30
	}
	return &TickPacer{ticker: time.NewTicker(time.Second / time.Duration(fps))}
}

func (p *TickPacer) Wait(ctx context.Context) error {
	for {
		if p.fast.Load() && !p.paused.Load() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.ticker.C:
		}
		if !p.paused.Load() {
			return nil
		}
	}
}

// SetFast toggles unthrottled mode. Safe to call from another goroutine.
func (p *TickPacer) SetFast(fast bool) { p.fast.Store(fast) }

// SetPaused holds or releases the simulation.
func (p *TickPacer) SetPaused(paused bool) { p.paused.Store(paused) }

// Paused reports whether the pacer is holding the simulation.
func (p *TickPacer) Paused() bool { return p.paused.Load() }

// Fast reports whether the pacer is unthrottled.
func (p *TickPacer) Fast() bool { return p.fast.Load() }

// Stop releases the ticker.
func (p *TickPacer) Stop() { p.ticker.Stop() }
