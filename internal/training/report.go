package training

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"
)

// Run status values.
const (
	StatusRunning   = "running"
	StatusSolved    = "solved"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// RunInfo describes one training run.
type RunInfo struct {
	ID          string
	Seed        int64
	PopSize     int
	MaxGens     int // 0 = until solved
	Status      string
	Generations int
	BestFitness float64
	BestScore   int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// Recorder persists training progress.
type Recorder interface {
	StartRun(ctx context.Context, run RunInfo) error
	RecordGeneration(ctx context.Context, s GenerationStats) error
	FinishRun(ctx context.Context, run RunInfo) error
}

// MultiRecorder fans out to several recorders, stopping at the first error.
type MultiRecorder []Recorder

func (m MultiRecorder) StartRun(ctx context.Context, run RunInfo) error {
	for _, r := range m {
		if err := r.StartRun(ctx, run); err != nil {
			return err
		}
	}
	return nil
}

func (m MultiRecorder) RecordGeneration(ctx context.Context, s GenerationStats) error {
	for _, r := range m {
		if err := r.RecordGeneration(ctx, s); err != nil {
			return err
		}
	}
	return nil
}

// FinishRun is called on every recorder even if one fails.
func (m MultiRecorder) FinishRun(ctx context.Context, run RunInfo) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.FinishRun(ctx, run))
	}
	return errors.Join(errs...)
}

// CSVRecorder appends one row per generation to w, with a header before
// the first row.
type CSVRecorder struct {
	w             io.Writer
	headerWritten bool
}

// NewCSVRecorder creates a CSV recorder writing to w.
func NewCSVRecorder(w io.Writer) *CSVRecorder {
	return &CSVRecorder{w: w}
}

func (c *CSVRecorder) StartRun(ctx context.Context, run RunInfo) error { return nil }

func (c *CSVRecorder) RecordGeneration(ctx context.Context, s GenerationStats) error {
	return c.Write(s)
}

func (c *CSVRecorder) FinishRun(ctx context.Context, run RunInfo) error { return nil }

// Write appends rows.
func (c *CSVRecorder) Write(rows ...GenerationStats) error {
	if len(rows) == 0 {
		return nil
	}
	if !c.headerWritten {
		if err := gocsv.Marshal(rows, c.w); err != nil {
			return fmt.Errorf("training: writing csv: %w", err)
		}
		c.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, c.w); err != nil {
		return fmt.Errorf("training: writing csv: %w", err)
	}
	return nil
}
