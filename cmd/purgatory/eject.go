package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fermata-io/purgatory/pkg/domain"
	"github.com/spf13/cobra"
)

var ejectCmd = &cobra.Command{
	Use:   "eject <prompt>",
	Short: "Hand a new suspension token to the store",
	Long: `Creates a pending token from the command line. Real producers eject
programmatically with their frozen state attached; this command exists for
operational poking and demos.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store, closer, err := openStore(cmd)
		if err != nil {
			fmt.Printf("Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = closer() }()

		reason, _ := cmd.Flags().GetString("reason")
		severity, _ := cmd.Flags().GetString("severity")
		options, _ := cmd.Flags().GetStringSlice("option")
		deadlineIn, _ := cmd.Flags().GetDuration("deadline-in")
		escalation, _ := cmd.Flags().GetString("escalation")

		opts := []domain.TokenOption{
			domain.WithSeverity(domain.Severity(severity)),
			domain.WithOptions(options...),
		}
		if deadlineIn > 0 {
			opts = append(opts, domain.WithDeadline(time.Now().Add(deadlineIn)))
		}
		if escalation != "" {
			opts = append(opts, domain.WithEscalation(escalation))
		}

		tok := domain.NewToken(domain.Reason(reason), args[0], opts...)
		if err := store.Eject(cmd.Context(), tok); err != nil {
			fmt.Printf("Error ejecting token: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ejected token '%s'\n", tok.ID)
	},
}

func init() {
	rootCmd.AddCommand(ejectCmd)
	ejectCmd.Flags().String("reason", string(domain.ReasonApprovalNeeded), "Suspension reason category")
	ejectCmd.Flags().String("severity", string(domain.SeverityInfo), "Severity: info, warning or critical")
	ejectCmd.Flags().StringSlice("option", nil, "Suggested response (repeatable)")
	ejectCmd.Flags().Duration("deadline-in", 0, "Void the token if unresolved after this duration (e.g. 4h)")
	ejectCmd.Flags().String("escalation", "", "Escalation target (a role or contact)")
}
