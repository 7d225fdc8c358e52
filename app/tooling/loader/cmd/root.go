// Package cmd contains the loader app.
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	url   string
	delay int
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().IntVarP(&delay, "delay", "d", 1000, "Milliseconds to wait between submissions.")
}

var rootCmd = &cobra.Command{
	Use:   "loader",
	Short: "Submit grid telemetry readings from a CSV file",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
