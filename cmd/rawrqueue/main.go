package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rawrqueue",
	Short: "rawrqueue - queue-driven HTTP middleware pipeline",
	Long: `rawrqueue serves HTTP through a queue of middleware configured from a
YAML file: request ids, tracing, access logs, metrics, IP blocking, rate
limiting, authentication, circuit breaking and response caching.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
}
