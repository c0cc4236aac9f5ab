// Package config provides YAML-based game configuration and the NEAT
// engine's INI source for flappy-neat.
package config

import (
	"errors"
	"fmt"
)

// FlappyConfig contains all configuration for the Flappy Bird world.
// Distances are in pixels of the reference window and velocities in
// pixels per tick.
type FlappyConfig struct {
	Window  WindowConfig  `yaml:"window"`
	Bird    BirdConfig    `yaml:"bird"`
	Pipe    PipeConfig    `yaml:"pipe"`
	Base    BaseConfig    `yaml:"base"`
	Fitness FitnessConfig `yaml:"fitness"`
	Sprites SpriteConfig  `yaml:"sprites"`
}

// WindowConfig is the size of the reference playfield.
type WindowConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// BirdConfig defines the bird sprite size and its flight model.
type BirdConfig struct {
	SpawnX               float64 `yaml:"spawn_x"`
	SpawnY               float64 `yaml:"spawn_y"`
	Width                int     `yaml:"width"`
	Height               int     `yaml:"height"`
	JumpVelocity         float64 `yaml:"jump_velocity"`
	Gravity              float64 `yaml:"gravity"`               // Coefficient of t² in the displacement
	TerminalDisplacement float64 `yaml:"terminal_displacement"` // Max downward move per tick
	AscentBoost          float64 `yaml:"ascent_boost"`          // Extra lift while moving up
	TiltBuffer           float64 `yaml:"tilt_buffer"`           // Stay tilted up while within this distance below the jump height
	MaxRotation          float64 `yaml:"max_rotation"`
	RotationVelocity     float64 `yaml:"rotation_velocity"`
	MinTilt              float64 `yaml:"min_tilt"`
}

// PipeConfig defines pipe geometry and spawning.
type PipeConfig struct {
	Gap       float64 `yaml:"gap"`
	Velocity  float64 `yaml:"velocity"`
	SpawnX    float64 `yaml:"spawn_x"`
	MinHeight int     `yaml:"min_height"` // Inclusive
	MaxHeight int     `yaml:"max_height"` // Exclusive
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
}

// BaseConfig defines the scrolling ground.
type BaseConfig struct {
	Y        float64 `yaml:"y"`
	Velocity float64 `yaml:"velocity"`
	Width    float64 `yaml:"width"`
}

// FitnessConfig defines the reward policy applied during training.
type FitnessConfig struct {
	SurvivalBonus    float64 `yaml:"survival_bonus"`
	CollisionPenalty float64 `yaml:"collision_penalty"`
	PassBonus        float64 `yaml:"pass_bonus"`
	JumpThreshold    float64 `yaml:"jump_threshold"`
	MaxScore         int     `yaml:"max_score"` // 0 = unlimited
}

// SpriteConfig optionally points at PNG sprites. Empty paths use the
// built-in procedural sprites. A PNG must be exactly bird.width x
// bird.height or pipe.width x pipe.height pixels.
type SpriteConfig struct {
	Bird string `yaml:"bird"`
	Pipe string `yaml:"pipe"`
}

// Validate checks that the configuration describes a playable world.
func (c FlappyConfig) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size must be positive, got %dx%d", c.Window.Width, c.Window.Height))
	}
	if c.Bird.Width <= 0 || c.Bird.Height <= 0 {
		errs = append(errs, fmt.Errorf("bird size must be positive, got %dx%d", c.Bird.Width, c.Bird.Height))
	}
	if c.Bird.TerminalDisplacement <= 0 {
		errs = append(errs, errors.New("bird.terminal_displacement must be positive"))
	}
	if c.Pipe.Width <= 0 || c.Pipe.Height <= 0 {
		errs = append(errs, fmt.Errorf("pipe size must be positive, got %dx%d", c.Pipe.Width, c.Pipe.Height))
	}
	if c.Pipe.Gap <= 0 {
		errs = append(errs, errors.New("pipe.gap must be positive"))
	}
	if c.Pipe.MaxHeight <= c.Pipe.MinHeight {
		errs = append(errs, fmt.Errorf("pipe.max_height (%d) must exceed pipe.min_height (%d)", c.Pipe.MaxHeight, c.Pipe.MinHeight))
	}
	if c.Pipe.Velocity <= 0 || c.Base.Velocity <= 0 {
		errs = append(errs, errors.New("pipe and base velocity must be positive"))
	}
	if c.Base.Width <= 0 {
		errs = append(errs, errors.New("base.width must be positive"))
	}
	if c.Base.Y <= 0 || c.Base.Y > float64(c.Window.Height) {
		errs = append(errs, fmt.Errorf("base.y (%v) must lie inside the window", c.Base.Y))
	}
	if c.Fitness.MaxScore < 0 {
		errs = append(errs, errors.New("fitness.max_score cannot be negative"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: invalid flappy config: %w", errors.Join(errs...))
	}
	return nil
}
