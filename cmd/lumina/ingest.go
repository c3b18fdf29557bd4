package main

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/lumina-ai/lumina/config"
	"github.com/lumina-ai/lumina/internal/chunker"
	"github.com/lumina-ai/lumina/internal/embedding"
	"github.com/lumina-ai/lumina/internal/ingest"
	"github.com/lumina-ai/lumina/provider"
	"github.com/lumina-ai/lumina/tools/web_fetch"
)

func ingestCMD() *cobra.Command {
	var cfgPath string
	var clientID string

	var cmd = &cobra.Command{
		Use:   "ingest [urls...]",
		Short: "Fetch, chunk, embed, and store one or more URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.LoadConfig(cfgPath)

			llm, err := provider.NewProvider(cfg.LLM)
			if err != nil {
				return err
			}
			embedder, err := embedding.New(llm, cfg.LLM.EmbeddingDimensions)
			if err != nil {
				return err
			}
			vectors, err := buildVectorStore(cfg.Vector)
			if err != nil {
				return err
			}
			fetcher, err := web_fetch.NewFetcher(web_fetch.ChromedpFetcherType, cfg.Fetch.Timeout, cfg.Fetch.UserAgent)
			if err != nil {
				return err
			}
			pipeline, err := ingest.NewPipeline(fetcher,
				chunker.New(cfg.Chunking.MaxSize, cfg.Chunking.Overlap),
				embedder, vectors,
				log.New(log.Writer(), "[INGEST] ", log.LstdFlags))
			if err != nil {
				return err
			}

			ctx := context.Background()
			for _, url := range args {
				result, err := pipeline.IngestURL(ctx, url, clientID)
				if err != nil {
					return fmt.Errorf("ingesting %s: %w", url, err)
				}
				fmt.Printf("%s: %d chunks stored\n", url, result.StoredCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "demo_client", "tenant identifier")
	cmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return cmd
}
