package training

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// twoBirdGeneration sets up a faller and a bird that flaps whenever it
// sinks below y=420, facing a single pipe with its gap at [320, 520).
func twoBirdGeneration(t *testing.T, cfg config.FlappyConfig, masks *sprite.Set, opts ...GenerationOption) (*Generation, *testGenome, *testGenome) {
	t.Helper()
	faller := never()
	flapper := &testGenome{jumpBelow: 420}
	pop, err := Spawn([]Entry{{ID: 1, Genome: faller}, {ID: 2, Genome: flapper}}, testFactory, cfg, masks)
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}
	g := NewGeneration(1, pop, cfg, rand.New(rand.NewSource(1)), masks, opts...)
	g.Pipes().Reset(g.Pipes().NewPipeAt(240, 320))
	return g, faller, flapper
}

func TestGenerationFirstTick(t *testing.T) {
	cfg, masks := testWorld(t)
	g, faller, _ := twoBirdGeneration(t, cfg, masks)

	done, err := g.Step()
	if err != nil {
		t.Fatalf("Step() failed: %v", err)
	}
	if done {
		t.Fatal("generation over after one tick")
	}
	if y := g.Population().Lead().Y; !almostEqual(y, 351.5) {
		t.Errorf("Y = %v, expected 351.5", y)
	}
	if !almostEqual(faller.fitness, 0.1) {
		t.Errorf("fitness = %v, expected 0.1", faller.fitness)
	}
	if x := g.Pipes().Pipes()[0].X; x != 239 {
		t.Errorf("pipe X = %v, expected 239", x)
	}
	if g.Ticks() != 1 {
		t.Errorf("Ticks() = %d, expected 1", g.Ticks())
	}
}

func TestGenerationCollisionAndPass(t *testing.T) {
	cfg, masks := testWorld(t)
	g, faller, flapper := twoBirdGeneration(t, cfg, masks)

	for tick := 1; tick <= 12; tick++ {
		if _, err := g.Step(); err != nil {
			t.Fatalf("tick %d: Step() failed: %v", tick, err)
		}
		switch tick {
		case 9:
			if n := g.Population().Len(); n != 2 {
				t.Fatalf("tick 9: Len() = %d, expected 2", n)
			}
		case 10:
			// The faller reaches y=483 and its lower edge touches the cap at 520.
			ids := g.Population().IDs()
			if len(ids) != 1 || ids[0] != 2 {
				t.Fatalf("tick 10: IDs() = %v, expected [2]", ids)
			}
			if g.Score() != 0 {
				t.Errorf("tick 10: Score() = %d, expected 0", g.Score())
			}
		case 11:
			if g.Score() != 0 {
				t.Errorf("tick 11: Score() = %d, expected 0", g.Score())
			}
		}
	}

	// The pipe is checked at x=229 on tick 12.
	if g.Score() != 1 {
		t.Errorf("Score() = %d, expected 1", g.Score())
	}
	if n := g.Pipes().Len(); n != 2 {
		t.Errorf("pipes after pass = %d, expected 2", n)
	}
	if !g.Pipes().Pipes()[0].Passed {
		t.Error("first pipe not marked passed")
	}
	if !almostEqual(faller.fitness, 1.0-cfg.Fitness.CollisionPenalty) {
		t.Errorf("faller fitness = %v, expected %v", faller.fitness, 1.0-cfg.Fitness.CollisionPenalty)
	}
	if expected := 1.2 + cfg.Fitness.PassBonus; !almostEqual(flapper.fitness, expected) {
		t.Errorf("flapper fitness = %v, expected %v", flapper.fitness, expected)
	}
}

func TestGenerationMaxScore(t *testing.T) {
	cfg, masks := testWorld(t)
	cfg.Fitness.MaxScore = 1
	g, _, _ := twoBirdGeneration(t, cfg, masks)

	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if res.Score != 1 || res.Ticks != 12 {
		t.Errorf("Run() = score %d after %d ticks, expected 1 after 12", res.Score, res.Ticks)
	}
	if g.Population().Len() != 1 {
		t.Errorf("Len() = %d, expected the flapper still alive", g.Population().Len())
	}
}

func TestGenerationEmptyPopulation(t *testing.T) {
	cfg, masks := testWorld(t)
	pop, _ := Spawn(nil, testFactory, cfg, masks)
	g := NewGeneration(3, pop, cfg, rand.New(rand.NewSource(1)), masks)

	done, err := g.Step()
	if err != nil || !done {
		t.Fatalf("Step() = %v, %v, expected true, nil", done, err)
	}
	if g.Ticks() != 0 {
		t.Errorf("Ticks() = %d, expected 0", g.Ticks())
	}
}

func TestGenerationStopsWhenAllDead(t *testing.T) {
	cfg, masks := testWorld(t)
	g, _, _ := twoBirdGeneration(t, cfg, masks)

	// Nobody fits through a gap this high.
	g.Pipes().Reset(g.Pipes().NewPipeAt(240, 0))
	res, err := g.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if !g.Done() {
		t.Error("Done() = false after Run")
	}
	ticks := res.Ticks
	if done, _ := g.Step(); !done || g.Ticks() != ticks {
		t.Errorf("Step() after the end advanced the world to tick %d", g.Ticks())
	}
}

func TestGenerationNoPipes(t *testing.T) {
	cfg, masks := testWorld(t)
	g, _, _ := twoBirdGeneration(t, cfg, masks)
	g.pipes = &flappy.PipeField{}

	if _, err := g.Step(); !errors.Is(err, ErrNoPipes) {
		t.Errorf("Step() error = %v, expected %v", err, ErrNoPipes)
	}
}

func TestGenerationObserver(t *testing.T) {
	cfg, masks := testWorld(t)
	var frames []Frame
	g, _, _ := twoBirdGeneration(t, cfg, masks, WithObserver(ObserverFunc(func(f Frame) {
		frames = append(frames, f)
	})))

	for range 10 {
		if _, err := g.Step(); err != nil {
			t.Fatalf("Step() failed: %v", err)
		}
	}
	if len(frames) != 10 {
		t.Fatalf("observed %d frames, expected 10", len(frames))
	}
	last := frames[9]
	if last.Tick != 10 || last.Alive != 1 || last.Generation != 1 {
		t.Errorf("last frame = tick %d, %d alive, generation %d; expected 10, 1, 1", last.Tick, last.Alive, last.Generation)
	}
	if len(last.World.Birds) != 1 || len(last.World.Pipes) != 1 {
		t.Errorf("last frame has %d birds and %d pipes, expected 1 and 1", len(last.World.Birds), len(last.World.Pipes))
	}
}

func TestGenerationRunCancelled(t *testing.T) {
	cfg, masks := testWorld(t)
	g, _, _ := twoBirdGeneration(t, cfg, masks)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := g.Run(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, expected context.Canceled", err)
	}
	// The tick in flight completes before cancellation is noticed.
	if res.Ticks != 1 {
		t.Errorf("Ticks = %d, expected 1", res.Ticks)
	}
}

func TestGenerationDeterminism(t *testing.T) {
	cfg, masks := testWorld(t)
	run := func() (int, int, float64) {
		flapper := &testGenome{jumpBelow: 420}
		pop, _ := Spawn([]Entry{{ID: 1, Genome: flapper}}, testFactory, cfg, masks)
		g := NewGeneration(1, pop, cfg, rand.New(rand.NewSource(99)), masks)
		for range 2000 {
			if done, err := g.Step(); err != nil || done {
				break
			}
		}
		return g.Score(), g.Ticks(), flapper.fitness
	}

	s1, t1, f1 := run()
	s2, t2, f2 := run()
	if s1 != s2 || t1 != t2 || f1 != f2 {
		t.Errorf("runs diverged: (%d, %d, %v) vs (%d, %d, %v)", s1, t1, f1, s2, t2, f2)
	}
}
