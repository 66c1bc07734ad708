package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
	"github.com/guilhermexp/memoria/internal/embeddings"
	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the memory store from the command line",
	Long:  `Runs a semantic search against the local memory store and prints ranked documents with their best excerpts.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSearch,
}

func init() {
	searchCmd.Flags().String("org", "default", "organization to search")
	searchCmd.Flags().Int("limit", 10, "maximum number of results")
	searchCmd.Flags().String("mode", "", "hybrid search mode: vector, keyword, hybrid")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	queryText := args[0]

	org, _ := cmd.Flags().GetString("org")
	limit, _ := cmd.Flags().GetInt("limit")
	mode, _ := cmd.Flags().GetString("mode")
	jsonOutput, _ := cmd.Flags().GetBool("json")

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
		fmt.Fprintf(os.Stderr, "Warning: embedding provider unavailable: %v\n", err)
		inner = nil
	}
	engine := search.NewEngine(store, embeddings.NewResilient(inner, logger), logger)

	req := search.Request{Query: queryText, Limit: limit}
	var resp *search.Response
	if mode != "" {
		resp, err = engine.HybridSearch(ctx, org, search.HybridRequest{
			Request: req,
			Mode:    search.Mode(mode),
		})
	} else {
		resp, err = engine.Search(ctx, org, req)
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(resp.Results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("%d result(s) in %dms:\n", resp.Total, resp.TimingMS)
	for i, r := range resp.Results {
		fmt.Printf("\n%d. %s  (%.1f%%)\n", i+1, r.Title, r.Score*100)
		for _, c := range r.Chunks {
			fmt.Printf("   %s\n", firstLine(c.Content))
		}
	}
	return nil
}

// firstLine truncates chunk content to a single display line.
func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || i >= 120 {
			return s[:i] + "..."
		}
	}
	return s
}
