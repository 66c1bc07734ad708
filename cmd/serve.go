package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/memoria/internal/agentic"
	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/events"
	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/preview"
	"github.com/guilhermexp/memoria/internal/search"
	"github.com/guilhermexp/memoria/internal/server"
	"github.com/guilhermexp/memoria/internal/websearch"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the memoria HTTP server",
	Long:  `Starts the memoria server with the document, search, and agentic search REST APIs plus the agentic WebSocket endpoint.`,
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

		ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
		store := memstore.NewStore(database, cache.New(ttl))

		// A missing embedding backend degrades to deterministic vectors
		// rather than blocking startup.
		inner, err := createEmbedderFromConfig(cfg)
		if err != nil {
			logger.Warn("embedding provider unavailable, using deterministic fallback", "error", err)
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

		bus := events.NewBus(logger)
		bus.Subscribe(events.NewWebhookSink(database, logger))
		engine.SetEventBus(bus)

		provider, err := createLLMProviderFromConfig(cfg)
		if err != nil {
			logger.Warn("llm provider unavailable, reranking and agentic evaluation disabled", "error", err)
		} else {
			engine.SetReranker(search.NewLLMReranker(provider, cfg.Model))
		}

		orch := agentic.NewOrchestrator(engine, agentic.NewEvaluator(provider, cfg.Model), logger)
		if provider != nil {
			orch.SetCondenser(agentic.NewCondenser(provider, cfg.Model))
			orch.SetPlanner(agentic.NewPlanner(provider, cfg.Model))
		}
		if web := websearch.NewClient(webSearchConfigFrom(cfg)); web != nil {
			orch.SetWebSearch(web)
		}

		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}

		srv := server.New(server.Config{
			Addr:        addr,
			CORSOrigins: cfg.Server.CORSOrigins,
		}, server.Deps{
			DB:           database,
			Store:        store,
			Engine:       engine,
			Orchestrator: orch,
			Embedder:     embedder,
			Preview:      preview.NewRenderer(),
			Logger:       logger,
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "memoria v%s starting on %s\n", Version, addr)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.DBPath)

		return srv.Start()
	},
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}
