package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve <token-id> <value>",
	Short: "Resolve a pending token with a decision value",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		res, err := store.Resolve(cmd.Context(), args[0], args[1])
		if err != nil {
			fmt.Printf("Error resolving '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		fmt.Printf("Resolved %s with %q\n", res.Token.ID, args[1])
		if len(res.FrozenState()) > 0 {
			fmt.Printf("Frozen state (%d bytes) is ready for the resuming computation.\n",
				len(res.FrozenState()))
		}
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
}
