package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse and restore note versions",
}

var historyListCmd = &cobra.Command{
	Use:   "list [note]",
	Short: "List the saved sessions of a note, newest first",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		sessions, err := db.History.Get(ctx, args[0])
		if err != nil {
			fatal("Failed to read history", err)
		}
		if jsonOut {
			printJSON(sessions)
			return
		}
		for _, s := range sessions {
			lock := ""
			if s.Locked {
				lock = " (locked)"
			}
			fmt.Printf("%s  %s%s\n", s.ID, time.UnixMilli(s.DateEdited).Format("2006-01-02 15:04:05"), lock)
		}
	},
}

var historyRestoreCmd = &cobra.Command{
	Use:   "restore [session]",
	Short: "Replace the note content with a saved session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.History.Restore(ctx, args[0]); err != nil {
			fatal("Failed to restore session", err)
		}
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every session as JSON to stdout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		data, err := db.History.Serialize(ctx)
		if err != nil {
			fatal("Failed to export history", err)
		}
		if _, err := os.Stdout.Write(data); err != nil {
			fatal("Failed to write export", err)
		}
	},
}

var historyImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Load sessions written by 'history export'",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		data, err := os.ReadFile(args[0])
		if err != nil {
			fatal("Failed to read file", err)
		}
		if err := db.History.Deserialize(ctx, data); err != nil {
			fatal("Failed to import history", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyRestoreCmd, historyExportCmd, historyImportCmd)
}
