// Package training runs NEAT-controlled birds through the Flappy Bird
// world and turns what happens to them into fitness.
package training

import (
	"fmt"
	"math"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// Genome is the fitness side of an evolvable controller. During a
// generation the loop is its only writer.
type Genome interface {
	AddFitness(delta float64)
	SetFitness(v float64)
	CurrentFitness() float64
}

// Brain maps sensor inputs to outputs.
type Brain interface {
	Activate(inputs []float64) ([]float64, error)
}

// BrainFactory builds the controller for a genome.
type BrainFactory interface {
	Build(g Genome) (Brain, error)
}

// BrainFactoryFunc adapts a function to BrainFactory.
type BrainFactoryFunc func(g Genome) (Brain, error)

func (f BrainFactoryFunc) Build(g Genome) (Brain, error) { return f(g) }

// Entry is one genome handed to Spawn. ID is only used for reporting.
type Entry struct {
	ID     int
	Genome Genome
}

// agent keeps a bird, its brain and its genome together so they can
// only ever be removed as one.
type agent struct {
	id     int
	bird   *flappy.Bird
	brain  Brain
	genome Genome
}

// Population is the live set of agents in one generation.
type Population struct {
	agents []agent
	cfg    config.FitnessConfig
}

// Spawn creates one bird at the spawn point and one brain per entry, in
// entry order, and zeroes every genome's fitness.
func Spawn(entries []Entry, factory BrainFactory, cfg config.FlappyConfig, masks *sprite.Set) (*Population, error) {
	p := &Population{
		agents: make([]agent, 0, len(entries)),
		cfg:    cfg.Fitness,
	}
	for _, e := range entries {
		brain, err := factory.Build(e.Genome)
		if err != nil {
			return nil, fmt.Errorf("training: cannot build brain for genome %d: %w", e.ID, err)
		}
		e.Genome.SetFitness(0)
		p.agents = append(p.agents, agent{
			id:     e.ID,
			bird:   flappy.NewBird(cfg.Bird, masks.Bird),
			brain:  brain,
			genome: e.Genome,
		})
	}
	return p, nil
}

// DecideAndMove moves every bird one tick, pays the survival bonus and
// lets its brain decide whether to flap, steering for pipe.
func (p *Population) DecideAndMove(pipe *flappy.Pipe) error {
	inputs := make([]float64, 3)
	for _, a := range p.agents {
		a.bird.Move()
		a.genome.AddFitness(p.cfg.SurvivalBonus)

		y := a.bird.Y
		inputs[0] = y
		inputs[1] = math.Abs(y - pipe.Height)
		inputs[2] = math.Abs(y - pipe.Bottom)

		out, err := a.brain.Activate(inputs)
		if err != nil {
			return fmt.Errorf("training: brain of genome %d: %w", a.id, err)
		}
		if len(out) == 0 {
			return fmt.Errorf("training: brain of genome %d produced no output", a.id)
		}
		if out[0] > p.cfg.JumpThreshold {
			a.bird.Jump()
		}
	}
	return nil
}

// ResolveCollisions penalises and evicts every agent touching any of the
// pipes. An agent touching two pipes is penalised once. Returns the
// number of agents removed.
func (p *Population) ResolveCollisions(pipes []*flappy.Pipe) int {
	hit := make([]bool, len(p.agents))
	n := 0
	for i, a := range p.agents {
		for _, pipe := range pipes {
			if pipe.Collide(a.bird) {
				hit[i] = true
				n++
				break
			}
		}
	}
	if n == 0 {
		return 0
	}

	kept := p.agents[:0]
	for i, a := range p.agents {
		if hit[i] {
			a.genome.AddFitness(-p.cfg.CollisionPenalty)
			continue
		}
		kept = append(kept, a)
	}
	clear(p.agents[len(kept):])
	p.agents = kept
	return n
}

// CullOutOfBounds evicts birds that hit the ground or flew off the top.
// No penalty is applied.
func (p *Population) CullOutOfBounds(groundY float64) int {
	kept := p.agents[:0]
	for _, a := range p.agents {
		if !a.bird.OutOfBounds(groundY) {
			kept = append(kept, a)
		}
	}
	removed := len(p.agents) - len(kept)
	clear(p.agents[len(kept):])
	p.agents = kept
	return removed
}

// RewardAll adds bonus to every surviving genome.
func (p *Population) RewardAll(bonus float64) {
	for _, a := range p.agents {
		a.genome.AddFitness(bonus)
	}
}

// AnyPast reports whether some live bird is ahead of the pipe's leading edge.
func (p *Population) AnyPast(pipe *flappy.Pipe) bool {
	for _, a := range p.agents {
		if pipe.X < a.bird.X {
			return true
		}
	}
	return false
}

// IsEmpty reports whether every agent has been eliminated.
func (p *Population) IsEmpty() bool { return len(p.agents) == 0 }

// Len returns the number of live agents.
func (p *Population) Len() int { return len(p.agents) }

// Lead returns the first live bird, or nil.
func (p *Population) Lead() *flappy.Bird {
	if len(p.agents) == 0 {
		return nil
	}
	return p.agents[0].bird
}

// IDs returns the entry IDs of the live agents in order.
func (p *Population) IDs() []int {
	ids := make([]int, len(p.agents))
	for i, a := range p.agents {
		ids[i] = a.id
	}
	return ids
}

// BestFitness returns the highest fitness among live agents.
func (p *Population) BestFitness() float64 {
	best := 0.0
	for i, a := range p.agents {
		if f := a.genome.CurrentFitness(); i == 0 || f > best {
			best = f
		}
	}
	return best
}

// Birds returns a copy of every live bird's visible state.
func (p *Population) Birds() []flappy.BirdState {
	out := make([]flappy.BirdState, len(p.agents))
	for i, a := range p.agents {
		out[i] = a.bird.State()
	}
	return out
}
