package flappy

import (
	"math/rand"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// PipeField handles spawning, movement, and removal of pipes.
// It always holds at least one pipe after Reset.
type PipeField struct {
	pipes []*Pipe
	rng   *rand.Rand
	cfg   config.PipeConfig
	masks *sprite.Set
}

// NewPipeField creates a pipe field with its first pipe already spawned.
func NewPipeField(rng *rand.Rand, cfg config.PipeConfig, masks *sprite.Set) *PipeField {
	pf := &PipeField{
		pipes: make([]*Pipe, 0, 4),
		rng:   rng,
		cfg:   cfg,
		masks: masks,
	}
	pf.Reset()
	return pf
}

// Reset clears the field. With no arguments a fresh pipe is spawned at
// the spawn x; otherwise the given pipes become the field.
func (pf *PipeField) Reset(pipes ...*Pipe) {
	pf.pipes = pf.pipes[:0]
	if len(pipes) > 0 {
		pf.pipes = append(pf.pipes, pipes...)
		return
	}
	pf.spawn()
}

// Pipes returns the current list of pipes, leftmost first.
func (pf *PipeField) Pipes() []*Pipe {
	return pf.pipes
}

// Len returns the number of pipes on the field.
func (pf *PipeField) Len() int {
	return len(pf.pipes)
}

// NewPipeAt creates a pipe sharing this field's geometry and masks
// without adding it to the field.
func (pf *PipeField) NewPipeAt(x, height float64) *Pipe {
	return NewPipeAt(x, height, pf.cfg, pf.masks)
}

// Lookahead returns the pipe a bird at leadX should steer for: the first
// pipe, or the second once leadX is past the first one's trailing edge.
// Returns nil on an empty field.
func (pf *PipeField) Lookahead(leadX float64) *Pipe {
	if len(pf.pipes) == 0 {
		return nil
	}
	if len(pf.pipes) > 1 && leadX > pf.pipes[0].X+float64(pf.cfg.Width) {
		return pf.pipes[1]
	}
	return pf.pipes[0]
}

// Advance runs the per-tick pipe pass: every unpassed pipe for which
// passedBy reports true is marked passed, off-screen pipes are marked for
// removal, and all pipes scroll. Marked pipes are then removed and one new
// pipe is spawned per pass. Returns the number of pipes passed.
func (pf *PipeField) Advance(passedBy func(p *Pipe) bool) int {
	passed := 0
	var remove []*Pipe

	for _, p := range pf.pipes {
		if !p.Passed && passedBy(p) {
			p.Passed = true
			passed++
		}
		if p.OffScreen() {
			remove = append(remove, p)
		}
		p.Move()
	}

	for range passed {
		pf.spawn()
	}

	if len(remove) > 0 {
		validPipes := pf.pipes[:0]
		for _, p := range pf.pipes {
			if !containsPipe(remove, p) {
				validPipes = append(validPipes, p)
			}
		}
		pf.pipes = validPipes
	}
	return passed
}

// States returns a copy of every pipe's visible state.
func (pf *PipeField) States() []PipeState {
	out := make([]PipeState, len(pf.pipes))
	for i, p := range pf.pipes {
		out[i] = p.State()
	}
	return out
}

func (pf *PipeField) spawn() {
	pf.pipes = append(pf.pipes, NewPipe(pf.cfg.SpawnX, pf.rng, pf.cfg, pf.masks))
}

func containsPipe(pipes []*Pipe, p *Pipe) bool {
	for _, q := range pipes {
		if q == p {
			return true
		}
	}
	return false
}
