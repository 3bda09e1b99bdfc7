package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"tweetstash/internal/archive"
	"tweetstash/internal/config"
	"tweetstash/internal/storage"
)

// Shared state wired up by the root command before any subcommand runs.
var (
	cfg   config.Config
	log   *logrus.Logger
	repo  storage.Repository
	store *archive.Store
)

var rootCmd = &cobra.Command{
	Use:   "tweetstash",
	Short: "Personal archive of Twitter/X bookmarks with LLM enrichment",
	Long: `tweetstash manages a local archive of saved Twitter/X bookmarks.
Import bookmarks from JSON (file or clipboard), enrich them in batches
through the Gemini classification service, then browse, filter and
export the archive as JSON or a themed markdown digest.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return initApp()
	}
	rootCmd.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			return repo.Close()
		}
		return nil
	}
}

// Execute runs the CLI. It installs a signal context so an in-flight
// analysis run can be cancelled with Ctrl+C and still commit what it
// finished.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func initApp() error {
	// A local .env is a convenience for the API key; missing is fine.
	_ = godotenv.Load()

	var err error
	cfg, err = config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("error loading configuration: %w", err)
	}

	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stderr)
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	repo, err = storage.NewBadgerRepository(cfg.BadgerDBPath, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	store = archive.NewStore(log)
	snap, err := repo.LoadArchive(cmdContext())
	if err != nil {
		return err
	}
	store.Load(snap)
	return nil
}

// commit persists the current in-memory archive. Called once per
// logical unit of work by commands that mutate the store.
func commit() error {
	return repo.SaveArchive(cmdContext(), store.Snapshot())
}

// cmdContext returns the signal-aware context installed by Execute.
func cmdContext() context.Context {
	if ctx := rootCmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
