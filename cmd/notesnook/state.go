package main

import (
	"context"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the database and adapter state as JSON",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		db := openDB(ctx)
		defer closeDB(db)

		state := map[string]any{"database": db.State()}
		if s, ok := db.Repository().(interface{ State() any }); ok {
			state["repository"] = s.State()
		}
		printJSON(state)
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
