package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	notesnook "github.com/streetwriters/notesnook-sub014"
)

var (
	initFormat        string
	initVersionsLimit int
	initRetentionDays int
)

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create a notesnook data directory",
	Long: `Create the data directory, write notesnook.yaml with the chosen settings
and create the storage for every collection.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := dataDir
		if len(args) == 1 {
			dir = args[0]
		}
		if dir == "" {
			wd, err := os.Getwd()
			if err != nil {
				fatal("Failed to get CWD", err)
			}
			dir = wd
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			fatal("Invalid directory", err)
		}

		cfg := notesnook.Config{
			Adapter:            adapter,
			Serializer:         initFormat,
			VersionsLimit:      initVersionsLimit,
			TrashRetentionDays: initRetentionDays,
		}
		if err := notesnook.WriteConfig(abs, cfg); err != nil {
			fatal("Failed to write config", err)
		}

		db, err := notesnook.Open(context.Background(), abs, notesnook.WithLogger(slog.Default()))
		if err != nil {
			fatal("Failed to initialize database", err)
		}
		closeDB(db)

		fmt.Println("Initialized empty notesnook database in", abs)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().StringVar(&initFormat, "format", "", "File format for the fs adapter: json, yaml or cbor")
	initCmd.Flags().IntVar(&initVersionsLimit, "versions", 0, "History sessions kept per note (default 100)")
	initCmd.Flags().IntVar(&initRetentionDays, "retention", 0, "Days items stay in the trash (default 7)")
}
