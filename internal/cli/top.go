package cli

import (
	"fmt"

	"github.com/mroshb/quizbot/internal/config"
	"github.com/mroshb/quizbot/internal/ledger"
	"github.com/spf13/cobra"
)

// NewTopCmd prints a room's leaderboard for the current period.
func NewTopCmd(cfg *config.Config) *cobra.Command {
	var (
		roomID int64
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show a room's leaderboard",
		RunE: func(cmd *cobra.Command, args []string) error {
			l, closeFn, err := openLedger(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closeFn()

			st := l.TopRanked(roomID, limit)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Room %d, period %s\n", roomID, st.Period)
			if st.NoScores {
				fmt.Fprintln(out, "No scores yet.")
				return nil
			}
			for _, s := range st.Entries {
				fmt.Fprintf(out, "%d. %s — %d points\n", s.Rank, s.DisplayName, s.Points)
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&roomID, "room", 0, "chat id of the room")
	cmd.Flags().IntVar(&limit, "limit", ledger.DefaultLimit, "number of rows")
	_ = cmd.MarkFlagRequired("room")
	return cmd
}
