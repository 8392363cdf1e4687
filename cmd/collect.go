// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calcboard/calcboard/internal/config"
	"github.com/calcboard/calcboard/internal/gateway"
	"github.com/calcboard/calcboard/internal/report"
	"github.com/calcboard/calcboard/internal/usecase"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collects delivery metrics and writes the JSON report",
	Long: `Collects deployment, pull request, CI, security and dependency update
metrics for the configured repository over the trailing window, and writes
the report to site/metrics.json. Any collection failure is fatal; no partial
report is written.`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		logger := newLogger(cmd)

		cfg, err := config.FromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if cfg.GitHubToken == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_TOKEN environment variable is not set.")
			os.Exit(1)
		}
		if cfg.GitHubRepository == "" {
			fmt.Fprintln(os.Stderr, "Error: GITHUB_REPOSITORY environment variable is not set.")
			os.Exit(1)
		}

		// Inject dependencies and run the collection sequentially.
		githubGateway, err := gateway.NewGitHubGateway(cfg.GitHubToken, cfg.GitHubRepository, logger)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create GitHub gateway: %v\n", err)
			os.Exit(1)
		}
		collector := usecase.NewCollector(githubGateway, cfg.GitHubRepository, cfg.MetricsWindowDays, logger)

		metrics, err := collector.Collect(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to collect metrics: %v\n", err)
			os.Exit(1)
		}

		path, err := report.WriteMetrics(metrics, report.DefaultOutputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write metrics report: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Metrics collected and written to %s\n", path)

		// Echo the report to standard output as well.
		jsonData, err := json.MarshalIndent(metrics, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to marshal report to JSON: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(jsonData))
	},
}

func init() {
	rootCmd.AddCommand(collectCmd)
}
