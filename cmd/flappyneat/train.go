package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/neat"
	"github.com/vovakirdan/flappy-neat/internal/platform/tui"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

const defaultGenerations = 50

var (
	flagGenerations int
	flagHeadless    bool
	flagCSV         string
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a NEAT population to play Flappy Bird",
	Long: `Evolve a population of birds. Each generation flies until every
bird has crashed (or the score cap is reached), then NEAT breeds the next
generation from the fittest genomes.

On a terminal the birds are drawn live. Use --headless to train as fast as
possible with one log line per generation.

Watch controls:
  P/Space  - Pause
  F        - Fast forward
  Q/Esc    - Stop training

Examples:
  flappyneat train
  flappyneat train --seed 42 --generations 20
  flappyneat train --headless --csv stats.csv
  flappyneat train --neat-config ./neat.ini`,
	Run: runTrain,
}

func init() {
	trainCmd.Flags().IntVar(&flagGenerations, "generations", defaultGenerations, "Maximum generations (0 = until the fitness threshold)")
	trainCmd.Flags().BoolVar(&flagHeadless, "headless", false, "Train without the live view")
	trainCmd.Flags().StringVar(&flagCSV, "csv", "", "Also write per-generation stats to this CSV file")
}

func runTrain(_ *cobra.Command, _ []string) {
	logger := newLogger()

	world, neatSource, err := loadConfigs(logger)
	if err != nil {
		fatal("%v", err)
	}
	neatCfg, err := neat.ParseConfig(neatSource)
	if err != nil {
		fatal("%v", err)
	}

	var recorders training.MultiRecorder
	store := openStore(logger)
	if store != nil {
		defer store.Close()
		recorders = append(recorders, store)
	}
	if flagCSV != "" {
		f, csvErr := os.Create(flagCSV)
		if csvErr != nil {
			fatal("cannot create %s: %v", flagCSV, csvErr)
		}
		defer f.Close()
		recorders = append(recorders, training.NewCSVRecorder(f))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	watch := !flagHeadless && isTerminal()

	opts := training.Options{
		Seed:        seed(),
		Generations: flagGenerations,
		Recorder:    recorders,
		Logger:      logger,
	}

	var summary *training.Summary
	if watch {
		// Log lines would tear the alternate screen.
		opts.Logger = log.New(io.Discard)
		feed := tui.NewFrameFeed(1)
		pacer := training.NewTickPacer(flagFPS)
		opts.Observer = feed
		opts.Pacer = pacer

		trainer, trainErr := training.NewTrainer(world, neatCfg, opts)
		if trainErr != nil {
			fatal("%v", trainErr)
		}
		rc := runtimeConfig()
		summary, err = tui.Watch(ctx, trainer, world, feed, pacer, rc.ScreenW, rc.ScreenH)
	} else {
		trainer, trainErr := training.NewTrainer(world, neatCfg, opts)
		if trainErr != nil {
			fatal("%v", trainErr)
		}
		summary, err = trainer.Run(ctx)
	}

	if summary != nil {
		printSummary(summary)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fatal("%v", err)
	}
}

func printSummary(s *training.Summary) {
	r := s.Run
	fmt.Printf("Run %s %s\n", r.ID, r.Status)
	fmt.Printf("  generations:  %d\n", r.Generations)
	fmt.Printf("  best fitness: %.2f\n", r.BestFitness)
	fmt.Printf("  best score:   %d\n", r.BestScore)
	fmt.Printf("  duration:     %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
	if s.Best != nil {
		nodes, conns := s.Best.Size()
		fmt.Printf("  best genome:  %d (%d nodes, %d enabled connections)\n", s.Best.Key, nodes, conns)
	}
}
