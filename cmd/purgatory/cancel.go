package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <token-id>...",
	Short: "Cancel one or more pending tokens",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		hasError := false
		for _, id := range args {
			if _, err := store.Cancel(cmd.Context(), id); err != nil {
				fmt.Printf("Error cancelling '%s': %v\n", id, err)
				hasError = true
			} else {
				fmt.Printf("Cancelled token '%s'\n", id)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(cancelCmd)
}
