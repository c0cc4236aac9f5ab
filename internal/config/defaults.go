package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultFlappyYAML []byte

//go:embed defaults/neat.ini
var defaultNEATINI []byte

// DefaultFlappyConfig returns the default Flappy Bird configuration.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		Window: WindowConfig{
			Width:  550,
			Height: 800,
		},
		Bird: BirdConfig{
			SpawnX:               230,
			SpawnY:               350,
			Width:                68,
			Height:               48,
			JumpVelocity:         -10.5,
			Gravity:              1.5,
			TerminalDisplacement: 16,
			AscentBoost:          2,
			TiltBuffer:           50,
			MaxRotation:          25,
			RotationVelocity:     20,
			MinTilt:              -90,
		},
		Pipe: PipeConfig{
			Gap:       200,
			Velocity:  1,
			SpawnX:    700,
			MinHeight: 50,
			MaxHeight: 450,
			Width:     104,
			Height:    640,
		},
		Base: BaseConfig{
			Y:        730,
			Velocity: 1,
			Width:    672,
		},
		Fitness: FitnessConfig{
			SurvivalBonus:    0.1,
			CollisionPenalty: 1,
			PassBonus:        5,
			JumpThreshold:    0.5,
			MaxScore:         0,
		},
	}
}

// GetDefault returns the embedded default config file for a name
// ("flappy" or "neat"), or nil if unknown.
func GetDefault(name string) []byte {
	switch name {
	case "flappy":
		return defaultFlappyYAML
	case "neat":
		return defaultNEATINI
	default:
		return nil
	}
}
