package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/user/cinerag/internal/utils"
)

// ollamaRequest Ollama embedding API 请求结构
type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// ollamaResponse Ollama embedding API 响应结构
type ollamaResponse struct {
	Embedding []float32 `json:"embedding"`
}

// OllamaEmbedder 调用本地 Ollama API 生成向量
type OllamaEmbedder struct {
	client *utils.HTTPClient
	host   string
	model  string
}

func NewOllamaEmbedder(host, model string, timeout time.Duration) *OllamaEmbedder {
	if host == "" {
		host = "http://localhost:11434"
	}
	return &OllamaEmbedder{
		client: utils.NewHTTPClient(timeout),
		host:   strings.TrimRight(host, "/"),
		model:  model,
	}
}

func (o *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var result ollamaResponse
	err := o.client.PostJSON(ctx, fmt.Sprintf("%s/api/embeddings", o.host), ollamaRequest{
		Model:  o.model,
		Prompt: text,
	}, &result)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return result.Embedding, nil
}
