package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagServeGens   int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that lets users connect, watch a population
train, and play.

Each SSH connection gets its own session and its own population; training
stops when the connection closes. Runs and scores of all sessions are
stored in the shared database.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.flappyneat/host_key

Examples:
  flappyneat serve                           # Listen on :23234
  flappyneat serve --ssh :2222               # Listen on port 2222
  flappyneat serve --host-key ./my_host_key  # Use specific host key

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().IntVar(&flagServeGens, "generations", defaultGenerations, "Maximum generations per session")
}

func runServe(_ *cobra.Command, _ []string) {
	logger := newLogger().WithPrefix("flappyneat-ssh")

	world, neatSource, err := loadConfigs(logger)
	if err != nil {
		fatal("%v", err)
	}

	cfg := tui.SSHServerConfig{
		Address:     flagSSHAddr,
		HostKeyPath: flagHostKey,
		DBPath:      flagDBPath,
		IdleTimeout: time.Duration(flagIdleTimeout) * time.Minute,
		World:       world,
		NEATSource:  neatSource,
		Generations: flagServeGens,
		FPS:         flagFPS,
	}

	server, err := tui.NewSSHServer(cfg, logger)
	if err != nil {
		fatal("creating server: %v", err)
	}

	fmt.Printf("Starting flappyneat SSH server on %s\n", cfg.Address)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.ListenAndServe(); err != nil {
		fatal("server: %v", err)
	}
}
