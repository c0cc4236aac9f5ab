package training

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// ErrNoPipes is returned when birds are alive but the pipe field is empty.
var ErrNoPipes = errors.New("training: no pipes on the field")

// Frame is an immutable picture of one tick, handed to observers.
type Frame struct {
	Generation int
	Tick       int
	Score      int
	Alive      int
	Best       float64 // best fitness among live birds
	World      flappy.WorldSnapshot
}

// Observer receives a frame after every tick. It must not block for long.
type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

// Result summarises a finished generation.
type Result struct {
	Generation int
	Score      int
	Ticks      int
	Elapsed    time.Duration
}

// Generation simulates one population from spawn until no bird is left.
type Generation struct {
	number int
	cfg    config.FlappyConfig

	pop   *Population
	pipes *flappy.PipeField
	base  *flappy.Base

	score int
	ticks int
	done  bool

	observer Observer
	pacer    Pacer
}

// GenerationOption configures a Generation.
type GenerationOption func(*Generation)

// WithObserver publishes a frame after every tick.
func WithObserver(o Observer) GenerationOption {
	return func(g *Generation) { g.observer = o }
}

// WithPacer throttles Run to a frame rate.
func WithPacer(p Pacer) GenerationOption {
	return func(g *Generation) { g.pacer = p }
}

// NewGeneration sets up the world for pop. The first pipe is placed
// before the first tick.
func NewGeneration(number int, pop *Population, cfg config.FlappyConfig, rng *rand.Rand, masks *sprite.Set, opts ...GenerationOption) *Generation {
	g := &Generation{
		number: number,
		cfg:    cfg,
		pop:    pop,
		pipes:  flappy.NewPipeField(rng, cfg.Pipe, masks),
		base:   flappy.NewBase(cfg.Base),
		pacer:  NoPacer{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Pipes exposes the pipe field, mostly so tests can place pipes.
func (g *Generation) Pipes() *flappy.PipeField { return g.pipes }

// Population returns the live set.
func (g *Generation) Population() *Population { return g.pop }

// Score returns the number of pipes passed so far.
func (g *Generation) Score() int { return g.score }

// Ticks returns the number of ticks simulated.
func (g *Generation) Ticks() int { return g.ticks }

// Done reports whether the generation is over.
func (g *Generation) Done() bool { return g.done || g.pop.IsEmpty() }

// Step advances the world by one tick and reports whether the generation
// is over. Once over, Step does nothing.
func (g *Generation) Step() (bool, error) {
	if g.Done() {
		g.done = true
		return true, nil
	}

	pipe := g.pipes.Lookahead(g.pop.Lead().X)
	if pipe == nil {
		return false, ErrNoPipes
	}

	if err := g.pop.DecideAndMove(pipe); err != nil {
		return false, fmt.Errorf("generation %d, tick %d: %w", g.number, g.ticks+1, err)
	}

	g.pop.ResolveCollisions(g.pipes.Pipes())

	passed := g.pipes.Advance(g.pop.AnyPast)
	g.score += passed
	for range passed {
		g.pop.RewardAll(g.cfg.Fitness.PassBonus)
	}

	g.pop.CullOutOfBounds(g.base.Y)
	g.base.Move()
	g.ticks++

	if g.cfg.Fitness.MaxScore > 0 && g.score >= g.cfg.Fitness.MaxScore {
		g.done = true
	}
	if g.observer != nil {
		g.observer.OnFrame(g.Frame())
	}
	return g.Done(), nil
}

// Run steps until the generation is over. Cancellation is honoured
// between ticks only, so a tick's fitness updates are never cut short.
func (g *Generation) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	for {
		done, err := g.Step()
		if err != nil {
			return g.result(start), err
		}
		if done {
			return g.result(start), nil
		}
		if err := ctx.Err(); err != nil {
			return g.result(start), err
		}
		if err := g.pacer.Wait(ctx); err != nil {
			return g.result(start), err
		}
	}
}

// Frame captures the current state of the world.
func (g *Generation) Frame() Frame {
	return Frame{
		Generation: g.number,
		Tick:       g.ticks,
		Score:      g.score,
		Alive:      g.pop.Len(),
		Best:       g.pop.BestFitness(),
		World: flappy.WorldSnapshot{
			Birds: g.pop.Birds(),
			Pipes: g.pipes.States(),
			Base:  g.base.State(),
		},
	}
}

func (g *Generation) result(start time.Time) Result {
	return Result{
		Generation: g.number,
		Score:      g.score,
		Ticks:      g.ticks,
		Elapsed:    time.Since(start),
	}
}
