package embedding

import (
	"fmt"
	"time"

	"github.com/user/cinerag/internal/config"
)

// New 根据配置创建向量服务，并包一层缓存
func New(cfg *config.Config) (Embedder, error) {
	var inner Embedder
	switch cfg.EmbeddingProvider {
	case "hash", "":
		inner = NewHashEmbedder(cfg.EmbeddingDimensions)
	case "ollama":
		inner = NewOllamaEmbedder(cfg.OllamaHost, cfg.OllamaModel, 60*time.Second)
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		inner = NewOpenAIEmbedder(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, cfg.EmbeddingDimensions)
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.EmbeddingProvider)
	}

	if cfg.EmbeddingCacheSize <= 0 {
		return inner, nil
	}
	return NewCachedEmbedder(inner, cfg.EmbeddingCacheSize), nil
}
