package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/streetwriters/notesnook-sub014/pkg/database"
)

var (
	notebookDescription string
	notebookTopics      []string
)

var notebookCmd = &cobra.Command{
	Use:     "notebook",
	Aliases: []string{"nb"},
	Short:   "Manage notebooks and their topics",
}

var notebookAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a notebook",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		in := database.NotebookInput{Title: &args[0], Topics: notebookTopics}
		if notebookDescription != "" {
			in.Description = &notebookDescription
		}
		id, err := db.Notebooks.Add(ctx, in)
		if err != nil {
			fatal("Failed to add notebook", err)
		}
		fmt.Println(id)
	},
}

var notebookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List notebooks with their topics",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		notebooks, err := db.Notebooks.All(ctx)
		if err != nil {
			fatal("Failed to list notebooks", err)
		}
		if jsonOut {
			printJSON(notebooks)
			return
		}
		for _, nb := range notebooks {
			fmt.Printf("%s  %s (%d notes)\n", nb.ID, nb.Title, nb.TotalNotes)
			for _, t := range nb.Topics {
				fmt.Printf("    %s  %s (%d)\n", t.ID, t.Title, len(t.Notes))
			}
		}
	},
}

var notebookDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Move notebooks to the trash",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		if err := db.Notebooks.Delete(ctx, args...); err != nil {
			fatal("Failed to delete notebooks", err)
		}
		fmt.Printf("Deleted %d notebook(s)\n", len(args))
	},
}

var topicAddCmd = &cobra.Command{
	Use:   "topic [notebook] [title...]",
	Short: "Add topics to a notebook",
	Args:  cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		nb := db.Notebooks.Notebook(ctx, args[0])
		if nb == nil {
			fatal("Failed to find notebook", fmt.Errorf("no notebook %q", args[0]))
		}
		if err := nb.Topics().AddTitles(ctx, args[1:]...); err != nil {
			fatal("Failed to add topics", err)
		}
	},
}

var notebookMoveCmd = &cobra.Command{
	Use:   "move [notebook] [topic] [note...]",
	Short: "File notes under a topic",
	Args:  cobra.MinimumNArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		to := database.MoveTarget{NotebookID: args[0], Topic: args[1]}
		if err := db.Notes.Move(ctx, to, args[2:]...); err != nil {
			fatal("Failed to move notes", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(notebookCmd)
	notebookCmd.AddCommand(notebookAddCmd, notebookListCmd, notebookDeleteCmd, topicAddCmd, notebookMoveCmd)

	notebookAddCmd.Flags().StringVar(&notebookDescription, "description", "", "Notebook description")
	notebookAddCmd.Flags().StringSliceVar(&notebookTopics, "topic", nil, `Initial topics (default "General")`)
}
