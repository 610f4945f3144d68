package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	host    string
	output  string
	timeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "yosafe",
	Short:         "Command line client for the YO-Safe terminal API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	rootCmd.PersistentFlags().StringVar(&host, "host", "http://localhost:8080", "terminal server host")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "text", "output format: text, json or yaml")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for a flow to finish")

	rootCmd.AddCommand(vaultsCmd, statsCmd, sessionCmd, depositCmd, redeemCmd, statusCmd, resetCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
