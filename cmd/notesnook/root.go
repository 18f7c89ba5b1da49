package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	notesnook "github.com/streetwriters/notesnook-sub014"
)

var (
	verbose bool
	dataDir string
	adapter string
	jsonOut bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "notesnook",
	Short: "Manage a local Notesnook database",
	Long: `notesnook reads and writes notes, notebooks, tags and the trash of a
local Notesnook database. Data lives in plain files by default, or in a
single SQLite file with --adapter sqlite.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "dir", "d", "", "Data directory (default: nearest root above the working directory)")
	rootCmd.PersistentFlags().StringVar(&adapter, "adapter", "", "Storage adapter: fs, sqlite or memory (default from notesnook.yaml, else fs)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

// openDB opens the database of an existing data root.
func openDB(ctx context.Context) *notesnook.Database {
	root := dataDir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			fatal("Failed to get CWD", err)
		}
		root, err = notesnook.FindRoot(wd)
		if err != nil {
			fatal("Not a notesnook directory (run 'notesnook init')", err)
		}
	}

	db, err := notesnook.Open(ctx, root,
		notesnook.WithAdapter(adapter),
		notesnook.WithMustExist(true),
		notesnook.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Failed to open database", err)
	}
	return db
}

func closeDB(db *notesnook.Database) {
	if err := notesnook.Close(db); err != nil {
		slog.Warn("failed to close database", "error", err)
	}
}

func printJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fatal("Failed to encode JSON", err)
	}
}
