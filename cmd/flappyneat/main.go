// flappyneat evolves Flappy Bird players with NEAT and lets you watch them
// learn in the terminal.
//
// Usage:
//
//	flappyneat train            - Train a population, live view when on a terminal
//	flappyneat play             - Fly the bird yourself
//	flappyneat menu             - Interactive menu: watch, play, history
//	flappyneat runs             - List stored training runs
//	flappyneat history          - Browse training runs interactively
//	flappyneat scores           - Show human high scores
//	flappyneat serve            - Start SSH server for remote sessions
//	flappyneat config <name>    - Print a default config file
//
// Global flags:
//
//	--fps <rate>           - Simulation speed when watching (default: 30)
//	--seed <value>         - RNG seed for reproducible runs
//	--db <path>            - Database path (default: ~/.flappyneat/flappyneat.db)
//	--config <path>        - World config YAML
//	--neat-config <path>   - NEAT config INI
//	--log-level <level>    - debug, info, warn or error
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/flappy-neat/internal/config"
	"github.com/vovakirdan/flappy-neat/internal/core"
	"github.com/vovakirdan/flappy-neat/internal/storage"
)

var (
	// Global flags
	flagFPS        int
	flagSeed       int64
	flagDBPath     string
	flagConfig     string
	flagNEATConfig string
	flagLogLevel   string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "flappyneat",
	Short: "Flappy NEAT - watch neural networks learn Flappy Bird",
	Long: `Flappy NEAT evolves a population of Flappy Bird players with
NEAT (NeuroEvolution of Augmenting Topologies) and renders the birds
in your terminal while they learn.

Available commands:
  train    - Train a population
  play     - Play the game yourself
  menu     - Interactive menu
  runs     - List, show, export or delete training runs
  history  - Browse training runs interactively
  scores   - View human high scores
  serve    - Start SSH server
  config   - Print default configuration files

Examples:
  flappyneat train
  flappyneat train --headless --generations 100 --csv stats.csv
  flappyneat play
  flappyneat runs show 3f2a
  flappyneat serve --ssh :2222`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Simulation ticks per second when watching")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "~/.flappyneat/flappyneat.db", "Path to database")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to world config YAML")
	rootCmd.PersistentFlags().StringVar(&flagNEATConfig, "neat-config", "", "Path to NEAT config INI")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(trainCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
}

// newLogger builds the process logger from --log-level.
func newLogger() *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	level, err := log.ParseLevel(flagLogLevel)
	if err != nil {
		logger.Warn("unknown log level, using info", "level", flagLogLevel)
		level = log.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// loadConfigs reads the world and NEAT configuration named by the flags.
func loadConfigs(logger *log.Logger) (config.FlappyConfig, []byte, error) {
	world, err := config.LoadFlappy(flagConfig)
	if err != nil {
		return world, nil, err
	}
	neatSource, from, err := config.LoadNEATSource(flagNEATConfig)
	if err != nil {
		return world, nil, err
	}
	logger.Debug("loaded NEAT config", "from", from)
	return world, neatSource, nil
}

// seed returns --seed or a time-based seed.
func seed() int64 {
	if flagSeed != 0 {
		return flagSeed
	}
	return time.Now().UnixNano()
}

// runtimeConfig sizes the screen from the terminal.
func runtimeConfig() core.RuntimeConfig {
	width, height := 80, 24 // Defaults
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
		height = h
	}
	return core.RuntimeConfig{
		ScreenW:  width,
		ScreenH:  height,
		TickRate: flagFPS,
		Seed:     flagSeed,
	}
}

// isTerminal reports whether stdout is an interactive terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// openStore opens the database, or returns nil with a warning.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open database, results will not be saved", "error", err)
		return nil
	}
	return store
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
