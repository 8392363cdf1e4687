// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calcboard/calcboard/internal/report"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Writes the static dashboard page",
	Long: `Writes the bundled dashboard page to site/index.html unchanged. The page
loads site/metrics.json client-side, so render and collect can run in either
order.`,
	Run: func(cmd *cobra.Command, args []string) {
		path, err := report.RenderDashboard(report.DefaultOutputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render dashboard: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Dashboard rendered to %s\n", path)
	},
}

func init() {
	rootCmd.AddCommand(renderCmd)
}
