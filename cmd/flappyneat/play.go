package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/games/flappy"
	"github.com/vovakirdan/flappy-neat/internal/platform/tui"
	"github.com/vovakirdan/flappy-neat/internal/sprite"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Fly the bird yourself",
	Long: `Play Flappy Bird on the same world the birds train on.

Controls:
  Space/Up/W - Flap
  P/Esc      - Pause
  R          - Restart (after game over)
  Ctrl+S     - Screenshot
  Q/Ctrl+C   - Quit

Examples:
  flappyneat play
  flappyneat play --fps 60
  flappyneat play --config ./my-flappy.yaml`,
	Run: runPlay,
}

func runPlay(_ *cobra.Command, _ []string) {
	logger := newLogger()

	world, _, err := loadConfigs(logger)
	if err != nil {
		fatal("%v", err)
	}
	masks, err := sprite.NewSet(world)
	if err != nil {
		fatal("%v", err)
	}

	var saver tui.ScoreSaver
	if store := openStore(logger); store != nil {
		defer store.Close()
		saver = store
	}

	if err := tui.RunPlay(flappy.New(world, masks), saver, runtimeConfig()); err != nil {
		fatal("running game: %v", err)
	}
}
