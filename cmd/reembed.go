package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/guilhermexp/memoria/internal/cache"
	"github.com/guilhermexp/memoria/internal/db"
	"github.com/guilhermexp/memoria/internal/memstore"
	"github.com/guilhermexp/memoria/internal/progress"
)

var reembedBatch int

var reembedCmd = &cobra.Command{
	Use:   "reembed",
	Short: "Backfill embeddings for chunks indexed without one",
	Long: `Finds chunks stored without an embedding vector (for example after an
embedding provider outage) and computes their vectors in batches.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// The whole point is real vectors, so unlike serve this command
		// refuses to run without a working embedding provider.
		embedder, err := createEmbedderFromConfig(cfg)
		if err != nil {
			return fmt.Errorf("creating embedder: %w", err)
		}

		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer database.Close()

		store := memstore.NewStore(database, cache.New(time.Duration(cfg.Cache.TTLSeconds)*time.Second))

		total, err := store.CountChunksMissingEmbedding(ctx)
		if err != nil {
			return err
		}
		if total == 0 {
			fmt.Println("All chunks already have embeddings.")
			return nil
		}

		reporter := progress.NewReporter()
		reporter.Start(total)
		defer reporter.Finish()

		done := 0
		for {
			chunks, err := store.ChunksMissingEmbedding(ctx, reembedBatch)
			if err != nil {
				return err
			}
			if len(chunks) == 0 {
				break
			}

			texts := make([]string, len(chunks))
			for i, c := range chunks {
				texts[i] = c.Content
			}
			vectors, err := embedder.Embed(ctx, texts)
			if err != nil {
				return fmt.Errorf("embedding batch: %w", err)
			}
			if len(vectors) != len(chunks) {
				return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
			}

			for i, c := range chunks {
				if err := store.SetChunkEmbedding(ctx, c.ID, vectors[i]); err != nil {
					return err
				}
				done++
				reporter.Update(done, fmt.Sprintf("chunk %s", c.ID))
			}
		}

		fmt.Printf("Embedded %d chunk(s).\n", done)
		return nil
	},
}

func init() {
	reembedCmd.Flags().IntVar(&reembedBatch, "batch", 32, "chunks per embedding request")
	rootCmd.AddCommand(reembedCmd)
}
