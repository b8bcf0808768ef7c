package openai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/madhava-cloud/gateway/internal/domain"
	"github.com/madhava-cloud/gateway/internal/metrics"
)

// Generator produces natural-language answers and metric insights via the
// chat completions endpoint.
type Generator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewGenerator creates a chat completion client from a shared Config.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		client:      newClient(cfg),
		model:       cfg.ChatModel,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		logger:      cfg.Logger,
	}
}

// GenerateResponse answers a query conditioned on the retrieved context and
// domain. With empty context it degrades to a context-free answer.
func (g *Generator) GenerateResponse(
	ctx context.Context, query string, passages []string, d domain.Domain,
) (string, error) {
	return g.complete(ctx, "generate", generationSystemPrompt(d), userPrompt(query, passages))
}

// DomainInsights summarizes the extracted metrics for a domain.
func (g *Generator) DomainInsights(
	ctx context.Context, d domain.Domain, bag domain.MetricsBag,
) (string, error) {
	prompt := fmt.Sprintf(
		"The following metrics were extracted from %s documents:\n%s\nSummarize the key insights in two or three sentences.",
		d, formatMetrics(bag),
	)
	return g.complete(ctx, "insights", generationSystemPrompt(d), prompt)
}

func (g *Generator) complete(ctx context.Context, kind, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(kind, "error").Inc()
		return "", parseAPIError(kind, err, domain.ErrGenerationFailed)
	}
	if len(resp.Choices) == 0 {
		metrics.LLMRequestsTotal.WithLabelValues(kind, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationFailed)
	}

	metrics.LLMRequestsTotal.WithLabelValues(kind, "success").Inc()
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func generationSystemPrompt(d domain.Domain) string {
	if d == "" {
		return "You are a helpful assistant."
	}
	return fmt.Sprintf(
		"You are an expert assistant for the %s domain. Answer using the provided context when it is relevant; say so when it is not.",
		d,
	)
}

func userPrompt(query string, passages []string) string {
	if len(passages) == 0 {
		return query
	}

	var sb strings.Builder
	sb.WriteString("Context:\n")
	for i, p := range passages {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, p)
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(query)
	return sb.String()
}

// formatMetrics renders the bag deterministically (sorted keys) for prompting.
func formatMetrics(bag domain.MetricsBag) string {
	keys := make([]string, 0, len(bag))
	for k := range bag {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, "- %s: %v\n", k, bag[k])
	}
	return sb.String()
}
