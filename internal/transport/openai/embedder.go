// Package openai wraps an OpenAI-compatible API for query embeddings and
// chat-based answer generation.
package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/metrics"
)

// Embedder vectorizes query text via the embeddings endpoint.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	logger     *zap.Logger
}

// NewEmbedder creates an embedding client from a shared Config.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client:     newClient(cfg),
		model:      openai.EmbeddingModel(cfg.EmbeddingModel),
		dimensions: cfg.Dimensions,
		logger:     cfg.Logger,
	}
}

// Embed returns the embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("embedding", "error").Inc()
		return nil, parseAPIError("embedding", err, domain.ErrEmbeddingFailed)
	}
	if len(resp.Data) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("embedding", "error").Inc()
		return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingFailed)
	}

	metrics.LLMRequestsTotal.WithLabelValues("embedding", "success").Inc()
	return resp.Data[0].Embedding, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
