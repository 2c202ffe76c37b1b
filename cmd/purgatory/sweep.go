package main

import (
	"fmt"
	"os"

	"github.com/fermata-io/purgatory"
	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/spf13/cobra"
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Void every pending token whose deadline has passed",
	Long: `Deadlines are evaluated lazily: nothing voids until a sweep observes it.
Run this from cron (or any external scheduler) at whatever cadence your
deadlines deserve.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Recovery performs the sweep while loading the ledger; the sink
		// captures which tokens it voided.
		var voided []string
		sink := func(e domain.Event) {
			if e.Type == domain.EventVoided {
				voided = append(voided, e.TokenID)
			}
		}

		store, closer, err := openStore(cmd, purgatory.WithSink(sink))
		if err != nil {
			fmt.Printf("Error sweeping: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		if len(voided) == 0 {
			fmt.Println("Nothing to void.")
			return
		}
		for _, id := range voided {
			tok, err := store.Get(id)
			if err != nil {
				fmt.Printf("Voided token '%s'\n", id)
				continue
			}
			fmt.Printf("Voided token '%s' (deadline %s)\n",
				id, tok.Deadline.Format("2006-01-02 15:04:05"))
		}
	},
}

func init() {
	rootCmd.AddCommand(sweepCmd)
}
