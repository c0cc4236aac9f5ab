package main

import (
	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/platform/tui"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse training runs interactively",
	Long: `Browse stored training runs and their per-generation statistics.

Controls:
  Tab/Shift+Tab  - Next/previous run
  Up/Down        - Scroll generations
  Q/Esc          - Quit`,
	Run: runHistory,
}

func runHistory(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	rc := runtimeConfig()
	if _, err := tui.RunHistory(store, rc.ScreenW, rc.ScreenH); err != nil {
		fatal("%v", err)
	}
}
