package main

import (
	"fmt"
	"os"

	"github.com/fermata-io/purgatory/internal/presentation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List pending suspension tokens",
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		all, _ := cmd.Flags().GetBool("all")
		tokens := store.ListPending()
		if all {
			tokens = store.ListAll()
		}

		if len(tokens) == 0 {
			fmt.Println("No tokens found.")
			return
		}

		colored := term.IsTerminal(int(os.Stdout.Fd()))
		fmt.Println(presentation.ListHeader())
		for _, tok := range tokens {
			fmt.Println(presentation.TokenLine(tok, colored))
		}
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
	lsCmd.Flags().BoolP("all", "a", false, "Include resolved, cancelled and voided tokens")
}
