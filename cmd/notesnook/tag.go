package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var tagCmd = &cobra.Command{
	Use:   "tag",
	Short: "Manage tags",
}

var tagListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags and how many notes use them",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		tags, err := db.Tags.All(ctx)
		if err != nil {
			fatal("Failed to list tags", err)
		}
		if jsonOut {
			printJSON(tags)
			return
		}
		for _, t := range tags {
			fmt.Printf("#%s (%d)\n", db.Tags.Alias(ctx, t.ID), len(t.NoteIDs))
		}
	},
}

var tagApplyCmd = &cobra.Command{
	Use:   "apply [tag] [note...]",
	Short: "Tag notes",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		for _, id := range args[1:] {
			note := db.Notes.Note(ctx, id)
			if note == nil {
				fatal("Failed to tag note", fmt.Errorf("no note %q", id))
			}
			if err := note.Tag(ctx, args[0]); err != nil {
				fatal("Failed to tag note", err)
			}
		}
	},
}

var tagRenameCmd = &cobra.Command{
	Use:   "rename [tag] [alias]",
	Short: "Give a tag a display name",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.Tags.Rename(ctx, args[0], args[1]); err != nil {
			fatal("Failed to rename tag", err)
		}
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:   "remove [tag]",
	Short: "Delete a tag and strip it from every note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.Tags.Remove(ctx, args[0]); err != nil {
			fatal("Failed to remove tag", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(tagCmd)
	tagCmd.AddCommand(tagListCmd, tagApplyCmd, tagRenameCmd, tagRemoveCmd)
}
