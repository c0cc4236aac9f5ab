package training

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math/rand"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/neat"
	"github.com/vovakirdan/flappy-neat/internal/neat/nn"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// sensorCount is the number of inputs every brain receives.
const sensorCount = 3

// NEATBrains builds feed-forward networks from NEAT genomes.
var NEATBrains = BrainFactoryFunc(func(g Genome) (Brain, error) {
	ng, ok := g.(*neat.Genome)
	if !ok {
		return nil, fmt.Errorf("training: unsupported genome type %T", g)
	}
	return nn.CreateFeedForwardNetwork(ng)
})

// Options configures a Trainer.
type Options struct {
	Seed        int64
	Generations int // 0 = until the fitness threshold is reached
	Observer    Observer
	Pacer       Pacer
	Recorder    Recorder
	Logger      *log.Logger
}

// Summary is the outcome of a training run.
type Summary struct {
	Run  RunInfo
	Best *neat.Genome
}

// Trainer evolves a NEAT population by flying every generation through
// the world.
type Trainer struct {
	run    RunInfo
	world  config.FlappyConfig
	masks  *sprite.Set
	pop    *neat.Population
	rng    *rand.Rand
	opts   Options
	logger *log.Logger
}

// NewTrainer validates both configurations and creates the initial
// population. Engine and world draw from separate streams of the seed.
func NewTrainer(world config.FlappyConfig, neatCfg *neat.Config, opts Options) (*Trainer, error) {
	if err := world.Validate(); err != nil {
		return nil, err
	}
	if neatCfg.Genome.NumInputs != sensorCount {
		return nil, fmt.Errorf("training: num_inputs = %d, birds provide %d sensors", neatCfg.Genome.NumInputs, sensorCount)
	}
	if neatCfg.Genome.NumOutputs < 1 {
		return nil, errors.New("training: genomes need at least one output")
	}
	if !neatCfg.Genome.FeedForward {
		return nil, errors.New("training: only feed_forward genomes are supported")
	}

	masks, err := sprite.NewSet(world)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	if opts.Pacer == nil {
		opts.Pacer = NoPacer{}
	}

	pop, err := neat.NewPopulation(neatCfg, rand.New(rand.NewSource(opts.Seed)), logger.WithPrefix("neat"))
	if err != nil {
		return nil, err
	}

	return &Trainer{
		run: RunInfo{
			ID:      uuid.NewString(),
			Seed:    opts.Seed,
			PopSize: neatCfg.Neat.PopSize,
			MaxGens: opts.Generations,
			Status:  StatusRunning,
		},
		world:  world,
		masks:  masks,
		pop:    pop,
		rng:    rand.New(rand.NewSource(opts.Seed + 1)),
		opts:   opts,
		logger: logger,
	}, nil
}

// RunID returns the identifier of this run.
func (t *Trainer) RunID() string { return t.run.ID }

// Population exposes the NEAT population.
func (t *Trainer) Population() *neat.Population { return t.pop }

// Run trains until the generation cap, the fitness threshold, an error or
// cancellation. The run is always finished in the recorder.
func (t *Trainer) Run(ctx context.Context) (*Summary, error) {
	t.run.StartedAt = time.Now()
	if err := t.record(func(r Recorder) error { return r.StartRun(ctx, t.run) }); err != nil {
		return nil, err
	}
	t.logger.Info("training started", "run", t.run.ID, "seed", t.run.Seed, "population", t.run.PopSize)

	runErr := t.loop(ctx)
	switch {
	case runErr == nil:
	case errors.Is(runErr, context.Canceled), errors.Is(runErr, context.DeadlineExceeded):
		t.run.Status = StatusCancelled
	default:
		t.run.Status = StatusFailed
	}
	t.run.FinishedAt = time.Now()

	// The run context may already be gone; the final row still has to land.
	finishErr := t.record(func(r Recorder) error { return r.FinishRun(context.WithoutCancel(ctx), t.run) })

	t.logger.Info("training finished",
		"run", t.run.ID,
		"status", t.run.Status,
		"generations", t.run.Generations,
		"best_fitness", t.run.BestFitness,
		"best_score", t.run.BestScore)

	summary := &Summary{Run: t.run, Best: t.pop.BestGenome}
	return summary, errors.Join(runErr, finishErr)
}

func (t *Trainer) loop(ctx context.Context) error {
	fitness := func(genomes map[int]*neat.Genome) error {
		return t.evaluate(ctx, genomes)
	}
	for n := 0; t.opts.Generations <= 0 || n < t.opts.Generations; n++ {
		_, solved, err := t.pop.RunGeneration(fitness)
		if err != nil {
			return err
		}
		if solved {
			t.run.Status = StatusSolved
			return nil
		}
	}
	t.run.Status = StatusCompleted
	return nil
}

// evaluate flies one generation and leaves each genome's fitness set.
func (t *Trainer) evaluate(ctx context.Context, genomes map[int]*neat.Genome) error {
	keys := slices.Sorted(maps.Keys(genomes))
	entries := make([]Entry, len(keys))
	for i, k := range keys {
		entries[i] = Entry{ID: k, Genome: genomes[k]}
	}

	pop, err := Spawn(entries, NEATBrains, t.world, t.masks)
	if err != nil {
		return err
	}

	number := t.pop.Generation
	opts := []GenerationOption{WithPacer(t.opts.Pacer)}
	if t.opts.Observer != nil {
		opts = append(opts, WithObserver(t.opts.Observer))
	}
	gen := NewGeneration(number, pop, t.world, t.rng, t.masks, opts...)
	res, err := gen.Run(ctx)
	if err != nil {
		return err
	}

	fitnesses := make([]float64, len(keys))
	for i, k := range keys {
		fitnesses[i] = genomes[k].Fitness
	}
	stats := NewGenerationStats(t.run.ID, t.pop.SpeciesCount(), fitnesses, res)

	t.run.Generations = number + 1
	t.run.BestFitness = max(t.run.BestFitness, stats.BestFitness)
	if number == 0 {
		t.run.BestFitness = stats.BestFitness
	}
	t.run.BestScore = max(t.run.BestScore, res.Score)

	t.logger.Info("generation",
		"gen", number,
		"best", fmt.Sprintf("%.2f", stats.BestFitness),
		"mean", fmt.Sprintf("%.2f", stats.MeanFitness),
		"stdev", fmt.Sprintf("%.2f", stats.StdFitness),
		"species", stats.Species,
		"score", res.Score,
		"ticks", res.Ticks,
		"elapsed", res.Elapsed.Round(time.Millisecond))

	return t.record(func(r Recorder) error { return r.RecordGeneration(ctx, stats) })
}

func (t *Trainer) record(fn func(Recorder) error) error {
	if t.opts.Recorder == nil {
		return nil
	}
	if err := fn(t.opts.Recorder); err != nil {
		return fmt.Errorf("training: recorder: %w", err)
	}
	return nil
}
