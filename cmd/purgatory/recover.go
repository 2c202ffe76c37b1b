package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var recoverCmd = &cobra.Command{
	Use:   "recover",
	Short: "Reload the ledger from the backend and report what is still pending",
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Printf("Error recovering: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		pending := store.ListPending()
		fmt.Printf("Recovered %d tokens, %d still pending.\n",
			len(store.ListAll()), len(pending))
		for _, tok := range pending {
			fmt.Println("- " + tok.ID)
		}
	},
}

func init() {
	rootCmd.AddCommand(recoverCmd)
}
