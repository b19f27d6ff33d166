package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var unusedCmd = &cobra.Command{
	Use:   "unused",
	Short: "List active tickers no configured source mentions",
	Long: "unused fetches the current listings and prints every active ticker in the\n" +
		"store that no source reported. Nothing is modified; retire candidates with\n" +
		"the retire command after review.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		symbols, err := a.engine.UnusedReport(ctx)
		if err != nil {
			return err
		}
		for _, sym := range symbols {
			fmt.Println(sym)
		}
		a.logger.Info("unused report complete", "count", len(symbols))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(unusedCmd)
}
