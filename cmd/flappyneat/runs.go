package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/flappy-neat/internal/storage"
	"github.com/vovakirdan/flappy-neat/internal/training"
)

var (
	flagRunsLimit int
	flagRunsCSV   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored training runs",
	Long: `List the most recent training runs, newest first.

Runs can be addressed by their full ID or any unique prefix.

Examples:
  flappyneat runs
  flappyneat runs --limit 5
  flappyneat runs show 3f2a
  flappyneat runs show 3f2a --csv > run.csv
  flappyneat runs delete 3f2a`,
	Args: cobra.NoArgs,
	Run:  runRuns,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the generations of a run",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsShow,
}

var runsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a run and its generations",
	Args:  cobra.ExactArgs(1),
	Run:   runRunsDelete,
}

func init() {
	runsCmd.Flags().IntVar(&flagRunsLimit, "limit", 20, "Maximum number of runs to list")
	runsShowCmd.Flags().BoolVar(&flagRunsCSV, "csv", false, "Print generations as CSV")

	runsCmd.AddCommand(runsShowCmd)
	runsCmd.AddCommand(runsDeleteCmd)
}

// mustOpenStore opens the database or exits; listing commands are useless
// without it.
func mustOpenStore() *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		fatal("opening database: %v", err)
	}
	return store
}

func runRuns(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	runs, err := store.Runs(flagRunsLimit)
	if err != nil {
		fatal("%v", err)
	}

	if len(runs) == 0 {
		fmt.Println("No training runs recorded yet.")
		fmt.Println()
		fmt.Println("Run 'flappyneat train' to start one!")
		return
	}

	fmt.Printf("  %-8s  %-9s  %-5s  %-4s  %-10s  %-5s  %s\n", "ID", "Status", "Gens", "Pop", "Best", "Score", "Started")
	fmt.Printf("  %-8s  %-9s  %-5s  %-4s  %-10s  %-5s  %s\n", "--", "------", "----", "---", "----", "-----", "-------")
	for _, r := range runs {
		fmt.Printf("  %-8s  %-9s  %-5d  %-4d  %-10.2f  %-5d  %s\n",
			shortRunID(r.ID), r.Status, r.Generations, r.PopSize, r.BestFitness, r.BestScore,
			r.StartedAt.Local().Format("2006-01-02 15:04"))
	}
}

func runRunsShow(_ *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	run, err := store.Run(args[0])
	if err != nil {
		fatal("%v", err)
	}
	gens, err := store.Generations(run.ID)
	if err != nil {
		fatal("%v", err)
	}

	if flagRunsCSV {
		if err := training.NewCSVRecorder(os.Stdout).Write(gens...); err != nil {
			fatal("%v", err)
		}
		return
	}

	fmt.Printf("Run %s\n", run.ID)
	fmt.Printf("  status: %s  seed: %d  population: %d\n", run.Status, run.Seed, run.PopSize)
	fmt.Printf("  best fitness: %.2f  best score: %d\n", run.BestFitness, run.BestScore)
	fmt.Println()

	if len(gens) == 0 {
		fmt.Println("No generations recorded.")
		return
	}

	fmt.Printf("  %-4s  %-7s  %-10s  %-10s  %-8s  %-5s  %s\n", "Gen", "Species", "Best", "Mean", "Stdev", "Score", "Ticks")
	for _, g := range gens {
		fmt.Printf("  %-4d  %-7d  %-10.2f  %-10.2f  %-8.2f  %-5d  %d\n",
			g.Generation, g.Species, g.BestFitness, g.MeanFitness, g.StdFitness, g.Score, g.Ticks)
	}
}

func runRunsDelete(_ *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	run, err := store.Run(args[0])
	if err != nil {
		fatal("%v", err)
	}
	if err := store.DeleteRun(run.ID); err != nil {
		fatal("%v", err)
	}
	fmt.Printf("Deleted run %s\n", run.ID)
}

func shortRunID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
