package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config <flappy|neat>",
	Short: "Print a default configuration file",
	Long: `Print the embedded default configuration so it can be edited.

Files placed in ~/.flappyneat/configs/ or ./configs/ are picked up
automatically.

Examples:
  flappyneat config flappy > ~/.flappyneat/configs/flappy.yaml
  flappyneat config neat > neat.ini`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"flappy", "neat"},
	Run:       runConfig,
}

func runConfig(_ *cobra.Command, args []string) {
	data := config.GetDefault(args[0])
	if data == nil {
		fatal("unknown config %q (expected flappy or neat)", args[0])
	}
	if _, err := os.Stdout.Write(data); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}
