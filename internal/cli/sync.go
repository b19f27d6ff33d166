package cli

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var syncComprehensive bool

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one reconciliation pass against the store",
	Long: "sync fetches listings from every configured source, reconciles them against\n" +
		"the active ticker set, and writes the result. With --comprehensive the run\n" +
		"also reports tickers no source mentioned.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := setup(ctx)
		if err != nil {
			return err
		}
		defer a.close()

		run := a.engine.RunIngestion
		if syncComprehensive {
			run = a.engine.RunComprehensiveSync
		}

		res, err := run(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}

func init() {
	syncCmd.Flags().BoolVar(&syncComprehensive, "comprehensive", false, "also detect tickers absent from every source")
	rootCmd.AddCommand(syncCmd)
}
