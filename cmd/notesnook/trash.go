package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Inspect, restore or empty the trash",
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trashed notes and notebooks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		items, err := db.Trash.All(ctx)
		if err != nil {
			fatal("Failed to list trash", err)
		}
		if jsonOut {
			printJSON(items)
			return
		}
		for _, item := range items {
			deleted := time.UnixMilli(item.DateDeleted).Format("2006-01-02 15:04")
			fmt.Printf("%-8s %s  %s  %s\n", item.ItemType, item.ID, deleted, item.Title)
		}
	},
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore [id...]",
	Short: "Restore items from the trash",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.Trash.Restore(ctx, args...); err != nil {
			fatal("Failed to restore", err)
		}
		fmt.Printf("Restored %d item(s)\n", len(args))
	},
}

var trashPurgeCmd = &cobra.Command{
	Use:   "purge [id...]",
	Short: "Delete trashed items permanently",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.Trash.Delete(ctx, args...); err != nil {
			fatal("Failed to purge", err)
		}
	},
}

var trashClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the trash",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.Trash.Clear(ctx); err != nil {
			fatal("Failed to clear trash", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(trashCmd)
	trashCmd.AddCommand(trashListCmd, trashRestoreCmd, trashPurgeCmd, trashClearCmd)
}
