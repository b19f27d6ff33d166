package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tkrause/symsync/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("symsync", version.String())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
