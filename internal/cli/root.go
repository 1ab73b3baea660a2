package cli

import (
	"context"

	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/database"
	"github.com/mroshb/quizbot/internal/ledger"
	"github.com/spf13/cobra"
)

// Execute runs the ledger admin CLI.
func Execute() error {
	return newRootCmd(config.Load()).Execute()
}

func newRootCmd(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Inspect and maintain the quiz scoring ledger",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&cfg.LedgerBackend, "backend", cfg.LedgerBackend, "ledger backend: file, postgres or redis")
	cmd.PersistentFlags().StringVar(&cfg.LedgerFile, "file", cfg.LedgerFile, "ledger file for the file backend")
	cmd.PersistentFlags().StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "redis address for the redis backend")

	cmd.AddCommand(NewTopCmd(cfg))
	cmd.AddCommand(NewRolloverCmd(cfg))
	cmd.AddCommand(NewPeriodCmd(cfg))
	return cmd
}

// openLedger loads the ledger from the configured backend.
func openLedger(ctx context.Context, cfg *config.Config) (*ledger.Ledger, func(), error) {
	if err := cfg.ValidateStorage(); err != nil {
		return nil, nil, err
	}
	store, closeFn, err := database.OpenLedgerStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return ledger.Open(ctx, store), closeFn, nil
}
