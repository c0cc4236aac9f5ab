package flappy

// BirdState is an immutable view of a bird for renderers.
type BirdState struct {
	X, Y float64
	Tilt float64
}

// PipeState is an immutable view of a pipe for renderers.
type PipeState struct {
	X      float64
	Height float64
	Bottom float64
	Passed bool
}

// BaseState is an immutable view of the ground for renderers.
type BaseState struct {
	Y      float64
	X1, X2 float64
}

// WorldSnapshot is everything needed to draw one frame of the world.
type WorldSnapshot struct {
	Birds []BirdState
	Pipes []PipeState
	Base  BaseState
}
