package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/neat"
	"github.com/vovakirdan/flappy-neat/internal/platform/tui"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
	"github.com/vovakirdan/flappy-neat/internal/storage"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Interactive menu: watch training, play, browse history",
	Long: `Start in interactive menu mode. After each screen you return to
the menu.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select
  Q            - Quit

Examples:
  flappyneat menu
  flappyneat menu --fps 60 --db ./flappyneat.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	logger := newLogger()

	world, neatSource, err := loadConfigs(logger)
	if err != nil {
		fatal("%v", err)
	}
	masks, err := sprite.NewSet(world)
	if err != nil {
		fatal("%v", err)
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := runtimeConfig()
	status := ""
	for {
		high := 0
		if store != nil {
			high, _ = store.HighScore("flappy")
		}

		choice, updated, err := tui.RunMenu(cfg, high, status)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
		cfg = updated
		status = ""

		switch choice {
		case tui.ChoiceWatch:
			status, err = menuWatch(ctx, world, neatSource, store, cfg)
		case tui.ChoicePlay:
			var saver tui.ScoreSaver
			if store != nil {
				saver = store
			}
			err = tui.RunPlay(flappy.New(world, masks), saver, cfg)
		case tui.ChoiceHistory:
			var source tui.HistorySource
			if store != nil {
				source = store
			}
			var goBack bool
			goBack, err = tui.RunHistory(source, cfg.ScreenW, cfg.ScreenH)
			if err == nil && !goBack {
				return
			}
		default:
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}
	}
}

// menuWatch trains one population with the live view and returns a
// status line for the menu.
func menuWatch(ctx context.Context, world config.FlappyConfig, neatSource []byte, store *storage.Store, cfg core.RuntimeConfig) (string, error) {
	neatCfg, err := neat.ParseConfig(neatSource)
	if err != nil {
		return "", err
	}

	feed := tui.NewFrameFeed(1)
	pacer := training.NewTickPacer(cfg.TickRate)
	opts := training.Options{
		Seed:        seed(),
		Generations: defaultGenerations,
		Observer:    feed,
		Pacer:       pacer,
		Logger:      log.New(io.Discard),
	}
	if store != nil {
		opts.Recorder = store
	}

	trainer, err := training.NewTrainer(world, neatCfg, opts)
	if err != nil {
		pacer.Stop()
		return "", err
	}

	summary, err := tui.Watch(ctx, trainer, world, feed, pacer, cfg.ScreenW, cfg.ScreenH)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Sprintf("training failed: %v", err), nil
	}
	if summary == nil {
		return "", nil
	}
	return fmt.Sprintf("last run %s: %s, best score %d", summary.Run.ID[:8], summary.Run.Status, summary.Run.BestScore), nil
}
