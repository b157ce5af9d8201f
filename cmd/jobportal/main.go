// cmd/jobportal/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	apperrors "jobportal/internal/common/errors"
)

var (
	configPath  string
	metricsAddr string
)

var rootCmd = &cobra.Command{
	Use:           "jobportal",
	Short:         "Job portal client",
	Long:          "Browse, filter and search jobs, manage a signed-in session and match an uploaded CV against open positions.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a config YAML file (default: configs/config.yaml lookup)")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while the command runs")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.Display(err))
		os.Exit(1)
	}
}
