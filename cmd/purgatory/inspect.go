package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fermata-io/purgatory/internal/presentation"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <token-id>",
	Short: "Show one token in detail",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		tok, err := store.Get(args[0])
		if err != nil {
			fmt.Printf("Error loading token '%s': %v\n", args[0], err)
			os.Exit(1)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			data, err := json.MarshalIndent(tok, "", "  ")
			if err != nil {
				fmt.Printf("Error marshaling token: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(data))
			return
		}

		md := presentation.TokenMarkdown(tok)
		if term.IsTerminal(int(os.Stdout.Fd())) {
			render := presentation.NewMarkdownRenderer()
			fmt.Print(render(md))
			return
		}
		fmt.Print(md)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print the raw wire form instead of a rendered card")
}
