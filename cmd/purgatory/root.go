package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "purgatory",
	Short: "Purgatory is a durable suspension token store",
	Long: `Purgatory holds decisions that an in-flight computation handed off to a human.
Tokens survive process restarts; list them, resolve or cancel them, and sweep
expired ones to keep the ledger honest.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("config", "", "Path to the purgatory config file (YAML)")
}
