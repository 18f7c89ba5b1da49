package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchCmd = &cobra.Command{
	Use:   "search [query...]",
	Short: "Search notes and notebooks",
	Long:  `Search titles and note text. Every term must match; results are ranked by how often they do.`,
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		query := strings.Join(args, " ")
		notes, err := db.Lookup.Notes(ctx, query)
		if err != nil {
			fatal("Failed to search notes", err)
		}
		notebooks, err := db.Lookup.Notebooks(ctx, query)
		if err != nil {
			fatal("Failed to search notebooks", err)
		}

		if jsonOut {
			printJSON(map[string]any{"notes": notes, "notebooks": notebooks})
			return
		}
		for _, nb := range notebooks {
			fmt.Printf("notebook  %s  %s\n", nb.ID, nb.Title)
		}
		for _, n := range notes {
			fmt.Printf("note      %s  %s\n", n.ID, n.Title)
		}
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}
