package main

import (
	"fmt"

	"github.com/lumina-ai/lumina/config"
	"github.com/lumina-ai/lumina/internal/vectorstore"
	"github.com/lumina-ai/lumina/internal/vectorstore/memory"
	"github.com/lumina-ai/lumina/internal/vectorstore/pinecone"
)

func buildVectorStore(cfg config.VectorConfig) (vectorstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return memory.NewStore()
	case "pinecone":
		return pinecone.NewStore(pinecone.Config{
			Host:    cfg.Pinecone.Host,
			APIKey:  cfg.Pinecone.APIKey,
			Timeout: cfg.Pinecone.Timeout,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector backend %q", cfg.Backend)
	}
}
