package main

import (
	"fmt"

	"github.com/fermata-io/purgatory"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the purgatory version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("purgatory " + purgatory.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
