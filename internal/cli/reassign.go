package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	reassignCompanyID int64
	reassignFrom      string
	reassignTo        string
	reassignDate      string
)

var reassignCmd = &cobra.Command{
	Use:   "reassign",
	Short: "Move a company to a new ticker symbol",
	Long: "reassign closes the history window for the old symbol, deactivates its\n" +
		"ticker, and opens a new active assignment under the new symbol. Identity\n" +
		"continuity is the operator's call; the engine never infers renames.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		asOf, err := parseDate(reassignDate)
		if err != nil {
			return err
		}

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return a.engine.Lifecycle().ReassignSymbol(ctx, reassignCompanyID, reassignFrom, reassignTo, asOf)
	},
}

func init() {
	reassignCmd.Flags().Int64Var(&reassignCompanyID, "company-id", 0, "company id to move")
	reassignCmd.Flags().StringVar(&reassignFrom, "from", "", "symbol currently assigned")
	reassignCmd.Flags().StringVar(&reassignTo, "to", "", "symbol to assign")
	reassignCmd.Flags().StringVar(&reassignDate, "date", "", "effective date (YYYY-MM-DD, default today)")
	_ = reassignCmd.MarkFlagRequired("company-id")
	_ = reassignCmd.MarkFlagRequired("from")
	_ = reassignCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(reassignCmd)
}
