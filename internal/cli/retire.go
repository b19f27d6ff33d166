package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	retireSymbol string
	retireDate   string
)

var retireCmd = &cobra.Command{
	Use:   "retire",
	Short: "Delist a ticker symbol",
	Long: "retire closes the symbol's open history window and deactivates its ticker.\n" +
		"The company is deactivated too unless another active listing still points\n" +
		"at it.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		asOf, err := parseDate(retireDate)
		if err != nil {
			return err
		}

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		return a.engine.Lifecycle().RetireSymbol(ctx, retireSymbol, asOf)
	},
}

func init() {
	retireCmd.Flags().StringVar(&retireSymbol, "symbol", "", "symbol to retire")
	retireCmd.Flags().StringVar(&retireDate, "date", "", "effective date (YYYY-MM-DD, default today)")
	_ = retireCmd.MarkFlagRequired("symbol")
	rootCmd.AddCommand(retireCmd)
}
