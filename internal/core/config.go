package core

// RuntimeConfig describes the terminal a simulation is rendered into and
// the pacing/seed it runs with.
type RuntimeConfig struct {
	ScreenW  int   // Screen width in characters
	ScreenH  int   // Screen height in characters
	TickRate int   // Simulation ticks per second (30 matches the original pacing)
	Seed     int64 // RNG seed for deterministic pipe layouts and evolution
}

// DefaultConfig returns a RuntimeConfig with sensible defaults.
func DefaultConfig() RuntimeConfig {
	return RuntimeConfig{
		ScreenW:  80,
		ScreenH:  24,
		TickRate: 30,
		Seed:     0, // 0 means use current time in platform layer
	}
}

// GameState is the status of a single-bird session as seen by the platform.
type GameState struct {
	Score    int
	GameOver bool
	Paused   bool
}

// StepResult is returned after each simulated tick of a single-bird session.
type StepResult struct {
	State GameState
}
