package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/vovakirdan/flappy-neat/internal/training"
)

var (
	// ErrRunNotFound is returned when no run matches an ID or prefix.
	ErrRunNotFound = errors.New("storage: run not found")
	// ErrAmbiguousRun is returned when an ID prefix matches several runs.
	ErrAmbiguousRun = errors.New("storage: run id prefix is ambiguous")
)

var _ training.Recorder = (*Store)(nil)

// StartRun inserts a new run row.
func (s *Store) StartRun(ctx context.Context, run training.RunInfo) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, pop_size, max_generations, status, started_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Seed, run.PopSize, run.MaxGens, run.Status, run.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save run: %w", err)
	}
	return nil
}

// RecordGeneration stores one generation report and keeps the run's
// running totals current.
func (s *Store) RecordGeneration(ctx context.Context, g training.GenerationStats) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO generations
		 (run_id, generation, population, species, best_fitness, mean_fitness, stdev_fitness, score, ticks, elapsed_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.RunID, g.Generation, g.Population, g.Species,
		g.BestFitness, g.MeanFitness, g.StdFitness,
		g.Score, g.Ticks, g.ElapsedMS,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot save generation: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE runs SET
		   generations = ?,
		   best_fitness = CASE WHEN generations = 0 OR ? > best_fitness THEN ? ELSE best_fitness END,
		   best_score = MAX(best_score, ?)
		 WHERE id = ?`,
		g.Generation+1, g.BestFitness, g.BestFitness, g.Score, g.RunID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot update run: %w", err)
	}

	return tx.Commit()
}

// FinishRun stores the final status and totals of a run.
func (s *Store) FinishRun(ctx context.Context, run training.RunInfo) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, generations = ?, best_fitness = ?, best_score = ?, finished_at = ?
		 WHERE id = ?`,
		run.Status, run.Generations, run.BestFitness, run.BestScore, run.FinishedAt.UTC(), run.ID,
	)
	if err != nil {
		return fmt.Errorf("storage: cannot finish run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

const runColumns = `id, seed, pop_size, max_generations, status, generations, best_fitness, best_score, started_at, finished_at`

func scanRun(scan func(dest ...any) error) (training.RunInfo, error) {
	var r training.RunInfo
	var started, finished any
	err := scan(&r.ID, &r.Seed, &r.PopSize, &r.MaxGens, &r.Status,
		&r.Generations, &r.BestFitness, &r.BestScore, &started, &finished)
	if err != nil {
		return r, err
	}
	r.StartedAt = parseTime(started)
	r.FinishedAt = parseTime(finished)
	return r, nil
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]training.RunInfo, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	defer rows.Close()

	var runs []training.RunInfo
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// Run finds a run by its full ID or a unique prefix of it. The prefix is
// compared literally, so LIKE wildcards in it match nothing special.
func (s *Store) Run(idOrPrefix string) (training.RunInfo, error) {
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY id = ? DESC LIMIT 2`,
		idOrPrefix, idOrPrefix, idOrPrefix,
	)
	if err != nil {
		return training.RunInfo{}, fmt.Errorf("storage: cannot query run: %w", err)
	}
	defer rows.Close()

	var found []training.RunInfo
	for rows.Next() {
		r, err := scanRun(rows.Scan)
		if err != nil {
			return training.RunInfo{}, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		if r.ID == idOrPrefix {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return training.RunInfo{}, fmt.Errorf("storage: row iteration error: %w", err)
	}

	switch len(found) {
	case 0:
		return training.RunInfo{}, fmt.Errorf("%w: %s", ErrRunNotFound, idOrPrefix)
	case 1:
		return found[0], nil
	default:
		return training.RunInfo{}, fmt.Errorf("%w: %s", ErrAmbiguousRun, idOrPrefix)
	}
}

// Generations returns every generation of a run in order.
func (s *Store) Generations(runID string) ([]training.GenerationStats, error) {
	rows, err := s.db.Query(
		`SELECT run_id, generation, population, species, best_fitness, mean_fitness, stdev_fitness, score, ticks, elapsed_ms
		 FROM generations
		 WHERE run_id = ?
		 ORDER BY generation`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query generations: %w", err)
	}
	defer rows.Close()

	var gens []training.GenerationStats
	for rows.Next() {
		var g training.GenerationStats
		if err := rows.Scan(&g.RunID, &g.Generation, &g.Population, &g.Species,
			&g.BestFitness, &g.MeanFitness, &g.StdFitness,
			&g.Score, &g.Ticks, &g.ElapsedMS); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		gens = append(gens, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return gens, nil
}

// DeleteRun removes a run and its generations.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("storage: cannot begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM generations WHERE run_id = ?", id); err != nil {
		return fmt.Errorf("storage: cannot delete generations: %w", err)
	}
	res, err := tx.Exec("DELETE FROM runs WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("storage: cannot delete run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return tx.Commit()
}
