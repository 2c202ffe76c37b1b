package main

import (
	"fmt"
	"os"

	"github.com/fermata-io/purgatory"
	mcpAdapter "github.com/fermata-io/purgatory/internal/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the ledger as an MCP server on stdio",
	Long: `Exposes list/resolve/cancel/sweep tools over the Model Context Protocol,
so an agent host can drive resolution of suspended decisions.`,
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		srv := mcpAdapter.NewServer(store, purgatory.Version)
		if err := srv.ServeStdio(); err != nil {
			fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
