package openai

import (
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Config holds settings shared by the embedder and the generator.
type Config struct {
	APIKey         string
	BaseURL        string
	ChatModel      string
	EmbeddingModel string
	Dimensions     int
	MaxTokens      int
	Temperature    float32
	Logger         *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}
