package service

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"

	"github.com/user/cinerag/internal/model"
)

var errEmbedderDown = errors.New("embedder down")

// stubEmbedder 含 Comedy 的文本映射为 [0,1]，其余为 [1,0]
// 含 failOn 的文本返回错误
type stubEmbedder struct {
	failOn string
	calls  atomic.Int64
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls.Add(1)
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, errEmbedderDown
	}
	if strings.Contains(text, "Comedy") {
		return []float32{0, 1}, nil
	}
	return []float32{1, 0}, nil
}

func twoMovies() []model.Movie {
	return []model.Movie{
		{Title: "A", Year: "2021", Genre: "Action", Rating: 8, Description: "explosions and car chases"},
		{Title: "B", Year: "2022", Genre: "Comedy", Rating: 7, Description: "a family road trip"},
	}
}

func entry(title, genre string, vec ...float32) model.CatalogEntry {
	return model.CatalogEntry{
		Movie:     model.Movie{Title: title, Genre: genre, Description: title + " story"},
		Embedding: vec,
	}
}
