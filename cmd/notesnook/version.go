package main

import (
	"fmt"

	"github.com/spf13/cobra"

	notesnook "github.com/streetwriters/notesnook-sub014"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of notesnook",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("notesnook version %s\n", notesnook.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
