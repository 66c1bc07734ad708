package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "memoria",
	Short: "Semantic memory store with agentic search",
	Long: `Memoria stores documents as embedded chunks and retrieves them by
semantic similarity. It serves a REST API with vector, hybrid, and
multi-round agentic search, and exposes the store to AI agents over MCP.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".memoria.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
