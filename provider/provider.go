package provider

import (
	"context"
	"errors"

	"github.com/lumina-ai/lumina/config"
	openai_provider "github.com/lumina-ai/lumina/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
)

// Message is a single turn in a completion conversation.
type Message = openai_provider.Message

// Stream is a finite, single-consumer sequence of completion fragments.
// Fragments() is closed when production ends; Err() reports the failure, if
// any, once the channel is closed. Closing the stream cancels the upstream
// call and stops fragment production.
type Stream = openai_provider.Stream

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	ChatCompletion(ctx context.Context, messages []Message) (string, error)
	StreamChatCompletion(ctx context.Context, messages []Message) (Stream, error)
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm api key not set")
		}
		return openai_provider.NewClient(openai_provider.Options{
			APIKey:          cfg.APIKey,
			BaseURL:         cfg.BaseURL,
			CompletionModel: cfg.CompletionModel,
			EmbeddingModel:  cfg.EmbeddingModel,
			Temperature:     cfg.Temperature,
			MaxTokens:       cfg.MaxTokens,
			Timeout:         cfg.Timeout,
		}), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
