// Package cmd contains all the CLI commands for the application,
// built using the Cobra library.
package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/calcboard/calcboard/internal/api"
	"github.com/calcboard/calcboard/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Runs the calculator REST service",
	Long: `Runs the calculator REST service on HOST:PORT (default 0.0.0.0:8000).
Endpoints: GET /health, POST /add, /sub, /mul, /div, plus a static UI page
at /. Set DEBUG=true to log every request.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.FromEnv()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           api.New(cfg.Debug),
			ReadHeaderTimeout: 5 * time.Second,
		}

		fmt.Printf("%s (%s) listening on %s\n", cfg.AppName, cfg.Env, cfg.Addr())
		if err := srv.ListenAndServe(); err != nil {
			fmt.Fprintf(os.Stderr, "Server stopped: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
