package training

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

// testGenome jumps whenever the bird is lower than jumpBelow.
type testGenome struct {
	fitness   float64
	jumpBelow float64
	inputs    [][]float64
}

func (g *testGenome) AddFitness(d float64)     { g.fitness += d }
func (g *testGenome) SetFitness(v float64)     { g.fitness = v }
func (g *testGenome) CurrentFitness() float64 { return g.fitness }

type testBrain struct{ g *testGenome }

func (b testBrain) Activate(in []float64) ([]float64, error) {
	b.g.inputs = append(b.g.inputs, append([]float64(nil), in...))
	if in[0] > b.g.jumpBelow {
		return []float64{1}, nil
	}
	return []float64{0}, nil
}

var testFactory = BrainFactoryFunc(func(g Genome) (Brain, error) {
	return testBrain{g.(*testGenome)}, nil
})

func solidMask(w, h int) *sprite.Mask {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Opaque), image.Point{}, draw.Src)
	return sprite.FromImage(img)
}

// testWorld uses the default world with a fully solid bird so collision
// distances can be worked out by hand.
func testWorld(t *testing.T) (config.FlappyConfig, *sprite.Set) {
	t.Helper()
	cfg := config.DefaultFlappyConfig()
	masks, err := sprite.NewSet(cfg)
	if err != nil {
		t.Fatalf("sprite.NewSet() failed: %v", err)
	}
	masks.Bird = solidMask(cfg.Bird.Width, cfg.Bird.Height)
	return cfg, masks
}

func never() *testGenome { return &testGenome{jumpBelow: math.Inf(1)} }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSpawnResetsFitness(t *testing.T) {
	cfg, masks := testWorld(t)
	g := never()
	g.fitness = 42

	p, err := Spawn([]Entry{{ID: 7, Genome: g}}, testFactory, cfg, masks)
	if err != nil {
		t.Fatalf("Spawn() failed: %v", err)
	}
	if g.fitness != 0 {
		t.Errorf("fitness after Spawn = %v, expected 0", g.fitness)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", p.Len())
	}
	if lead := p.Lead(); lead.X != cfg.Bird.SpawnX || lead.Y != cfg.Bird.SpawnY {
		t.Errorf("lead bird at (%v, %v), expected spawn point", lead.X, lead.Y)
	}
}

func TestSpawnBrainError(t *testing.T) {
	cfg, masks := testWorld(t)
	boom := errors.New("boom")
	factory := BrainFactoryFunc(func(Genome) (Brain, error) { return nil, boom })

	_, err := Spawn([]Entry{{ID: 1, Genome: never()}}, factory, cfg, masks)
	if !errors.Is(err, boom) {
		t.Errorf("Spawn() error = %v, expected %v", err, boom)
	}
}

func TestDecideAndMoveInputs(t *testing.T) {
	cfg, masks := testWorld(t)
	g := never()
	p, _ := Spawn([]Entry{{ID: 1, Genome: g}}, testFactory, cfg, masks)
	pipe := flappy.NewPipeAt(500, 320, cfg.Pipe, masks)

	if err := p.DecideAndMove(pipe); err != nil {
		t.Fatalf("DecideAndMove() failed: %v", err)
	}

	if !almostEqual(g.fitness, cfg.Fitness.SurvivalBonus) {
		t.Errorf("fitness = %v, expected %v", g.fitness, cfg.Fitness.SurvivalBonus)
	}
	in := g.inputs[0]
	expected := []float64{351.5, 31.5, 168.5}
	for i := range expected {
		if !almostEqual(in[i], expected[i]) {
			t.Errorf("input[%d] = %v, expected %v", i, in[i], expected[i])
		}
	}
}

func TestDecideAndMoveJumpThreshold(t *testing.T) {
	cfg, masks := testWorld(t)
	jumper := &testGenome{jumpBelow: 0}
	p, _ := Spawn([]Entry{{ID: 1, Genome: jumper}}, testFactory, cfg, masks)
	pipe := flappy.NewPipeAt(500, 320, cfg.Pipe, masks)

	_ = p.DecideAndMove(pipe) // moves to 351.5, then jumps
	_ = p.DecideAndMove(pipe)

	// -10.5 + 1.5 = -9, plus the ascent boost.
	if y := p.Lead().Y; !almostEqual(y, 351.5-11) {
		t.Errorf("Y after jump = %v, expected %v", y, 351.5-11)
	}
}

func TestDecideAndMoveEmptyOutput(t *testing.T) {
	cfg, masks := testWorld(t)
	factory := BrainFactoryFunc(func(Genome) (Brain, error) {
		return brainFunc(func([]float64) ([]float64, error) { return nil, nil }), nil
	})
	p, _ := Spawn([]Entry{{ID: 1, Genome: never()}}, factory, cfg, masks)

	if err := p.DecideAndMove(flappy.NewPipeAt(500, 320, cfg.Pipe, masks)); err == nil {
		t.Error("DecideAndMove() with empty output succeeded, expected error")
	}
}

type brainFunc func([]float64) ([]float64, error)

func (f brainFunc) Activate(in []float64) ([]float64, error) { return f(in) }

func TestResolveCollisionsPenalisesOnce(t *testing.T) {
	cfg, masks := testWorld(t)
	g := never()
	p, _ := Spawn([]Entry{{ID: 1, Genome: g}}, testFactory, cfg, masks)

	// Both top pipes reach below the bird's spawn row.
	pipes := []*flappy.Pipe{
		flappy.NewPipeAt(240, 400, cfg.Pipe, masks),
		flappy.NewPipeAt(250, 380, cfg.Pipe, masks),
	}
	if n := p.ResolveCollisions(pipes); n != 1 {
		t.Errorf("ResolveCollisions() = %d, expected 1", n)
	}
	if !almostEqual(g.fitness, -cfg.Fitness.CollisionPenalty) {
		t.Errorf("fitness = %v, expected %v", g.fitness, -cfg.Fitness.CollisionPenalty)
	}
	if !p.IsEmpty() {
		t.Error("population not empty after collision")
	}
}

func TestResolveCollisionsMiss(t *testing.T) {
	cfg, masks := testWorld(t)
	g := never()
	p, _ := Spawn([]Entry{{ID: 1, Genome: g}}, testFactory, cfg, masks)

	if n := p.ResolveCollisions([]*flappy.Pipe{flappy.NewPipeAt(240, 320, cfg.Pipe, masks)}); n != 0 {
		t.Errorf("ResolveCollisions() = %d, expected 0", n)
	}
	if g.fitness != 0 {
		t.Errorf("fitness = %v, expected 0", g.fitness)
	}
}

func TestCullKeepsAgentsAligned(t *testing.T) {
	cfg, masks := testWorld(t)
	genomes := []*testGenome{never(), never(), never(), never()}
	entries := make([]Entry, len(genomes))
	for i, g := range genomes {
		entries[i] = Entry{ID: i + 1, Genome: g}
	}
	p, _ := Spawn(entries, testFactory, cfg, masks)

	p.agents[1].bird.Y = 800 // below the ground
	p.agents[2].bird.Y = -1  // above the window

	if n := p.CullOutOfBounds(cfg.Base.Y); n != 2 {
		t.Errorf("CullOutOfBounds() = %d, expected 2", n)
	}
	ids := p.IDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 4 {
		t.Fatalf("IDs() = %v, expected [1 4]", ids)
	}
	for i, a := range p.agents {
		if a.genome != genomes[a.id-1] {
			t.Errorf("agent %d carries the wrong genome", i)
		}
		if a.bird.Y != cfg.Bird.SpawnY {
			t.Errorf("agent %d carries the wrong bird (Y = %v)", i, a.bird.Y)
		}
	}

	p.RewardAll(5)
	for i, g := range genomes {
		expected := 0.0
		if i == 0 || i == 3 {
			expected = 5
		}
		if g.fitness != expected {
			t.Errorf("genome %d fitness = %v, expected %v", i+1, g.fitness, expected)
		}
	}
}

func TestAnyPast(t *testing.T) {
	cfg, masks := testWorld(t)
	p, _ := Spawn([]Entry{{ID: 1, Genome: never()}}, testFactory, cfg, masks)

	if p.AnyPast(flappy.NewPipeAt(230, 300, cfg.Pipe, masks)) {
		t.Error("pipe level with the bird counted as passed")
	}
	if !p.AnyPast(flappy.NewPipeAt(229, 300, cfg.Pipe, masks)) {
		t.Error("pipe behind the bird not counted as passed")
	}
}

func TestBestFitness(t *testing.T) {
	cfg, masks := testWorld(t)
	a, b := never(), never()
	p, _ := Spawn([]Entry{{ID: 1, Genome: a}, {ID: 2, Genome: b}}, testFactory, cfg, masks)
	a.fitness, b.fitness = -3, -1

	if best := p.BestFitness(); best != -1 {
		t.Errorf("BestFitness() = %v, expected -1", best)
	}
}
