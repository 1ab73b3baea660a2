package cli

import (
	"fmt"

	"github.com/mroshb/quizbot/internal/config"
	"github.com/spf13/cobra"
)

// NewRolloverCmd resets the ledger when the month has changed.
func NewRolloverCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Reset the ledger if a new month has started",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeFn, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			before := l.Period()
			rolled, err := l.RolloverIfNeeded(cmd.Context())
			if err != nil {
				return err
			}
			if rolled {
				fmt.Fprintf(cmd.OutOrStdout(), "Rolled over %s -> %s\n", before, l.Period())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Period %s is current\n", before)
			}
			return nil
		},
	}
}

// NewPeriodCmd prints the stored period.
func NewPeriodCmd(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "period",
		Short: "Print the ledger's scoring period",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeFn, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			fmt.Fprintln(cmd.OutOrStdout(), l.Period())
			return nil
		},
	}
}
