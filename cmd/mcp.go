package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
	"github.com/guilhermexp/memoria/internal/embeddings"
	mcpserver "github.com/guilhermexp/memoria/internal/mcp"
	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/search"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing memory search tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger()

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := memstore.NewStore(database, cache.New(time.Duration(cfg.Cache.TTLSeconds)*time.Second))

		inner, err := createEmbedderFromConfig(cfg)
		if err != nil {
			// Stdout carries MCP protocol traffic; diagnostics go to stderr.
			fmt.Fprintf(os.Stderr, "Warning: embedding provider unavailable: %v\n", err)
			inner = nil
		}
		embedder := embeddings.NewResilient(inner, logger)

		engine := search.NewEngine(store, embedder, logger)
		engine.SetDefaults(search.Defaults{
			Limit:             cfg.Search.DefaultLimit,
			ChunkThreshold:    cfg.Search.ChunkThreshold,
			DocumentThreshold: cfg.Search.DocumentThreshold,
			HybridWeight:      cfg.Search.HybridWeight,
		})

		mcpserver.Version = Version
		fmt.Fprintf(os.Stderr, "memoria MCP server started on stdio (db=%s)\n", cfg.DBPath)

		return mcpserver.NewServer(engine, store).Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
