package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show human high scores",
	Long: `Display the top 10 scores from 'flappyneat play'.

Examples:
  flappyneat scores
  flappyneat scores --db ./flappyneat.db`,
	Args: cobra.NoArgs,
	Run:  runScores,
}

func runScores(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	scores, err := store.TopScores("flappy", 10)
	if err != nil {
		fatal("retrieving scores: %v", err)
	}

	fmt.Println("High Scores - Flappy Bird")
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Println("Play 'flappyneat play' to set the first high score!")
		return
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, entry.CreatedAt.Local().Format("2006-01-02 15:04"))
	}
}
