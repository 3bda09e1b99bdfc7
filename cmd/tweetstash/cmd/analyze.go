package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tweetstash/internal/classify"
	"tweetstash/internal/pipeline"
)

var analyzeAll bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Enrich bookmarks through the classification service",
	Long: `Analyze submits bookmarks to the Gemini classification service in
batches, merging themes and per-bookmark annotations back into the
archive. By default only pending (never analyzed) bookmarks are
submitted; --all re-analyzes the whole archive, overwriting previous
enrichment.

A failed batch does not abort the run: its bookmarks stay pending and
can be retried by running analyze again. Ctrl+C stops the run at the
next batch boundary and keeps whatever finished.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		candidates := store.Pending()
		if analyzeAll {
			candidates = store.Bookmarks()
		}
		if len(candidates) == 0 {
			fmt.Println("Nothing to analyze.")
			return nil
		}

		gen, err := classify.NewGeminiClient(cmdContext(), cfg.GeminiAPIKey, cfg.GeminiModel, log)
		if err != nil {
			return err
		}
		client := classify.NewClient(gen, cfg.RequestTimeout(), log)

		orch := pipeline.NewOrchestrator(client, store, pipeline.Options{
			BatchSize: cfg.BatchSize,
			Cooldown:  cfg.Cooldown(),
			Progress: func(completed, total int) {
				fmt.Printf("Analyzing batch %d of %d...\n", completed+1, total)
			},
		}, log)

		summary, runErr := orch.Run(cmdContext(), candidates)

		// Commit whatever merged, even for a cancelled run.
		if err := commit(); err != nil {
			return err
		}

		fmt.Println(summary.String())
		for _, f := range summary.Failures {
			fmt.Printf("  batch %d failed: %s (%s)\n", f.Batch+1, f.Detail, f.Kind)
		}
		if runErr != nil {
			return fmt.Errorf("run interrupted: %w", runErr)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeAll, "all", false, "re-analyze every bookmark, not just pending ones")
	rootCmd.AddCommand(analyzeCmd)
}
