package model

import "fmt"

// SnapshotVersion 当前快照格式版本
const SnapshotVersion = "CineRAG v1"

// Snapshot 持久化信封
// 磁盘格式保留 catalog / embeddings 两个平行数组，内存中统一为 CatalogEntry
type Snapshot struct {
	Version    string            `json:"version"`
	Catalog    []Movie           `json:"catalog"`
	Embeddings [][]float32       `json:"embeddings"`
	Profile    PreferenceProfile `json:"profile"`
}

// NewSnapshot 由目录条目与偏好档案构造快照
func NewSnapshot(entries []CatalogEntry, profile PreferenceProfile) *Snapshot {
	s := &Snapshot{
		Version:    SnapshotVersion,
		Catalog:    make([]Movie, 0, len(entries)),
		Embeddings: make([][]float32, 0, len(entries)),
		Profile:    profile.Clone(),
	}
	for _, e := range entries {
		s.Catalog = append(s.Catalog, e.Movie)
		s.Embeddings = append(s.Embeddings, append([]float32{}, e.Embedding...))
	}
	return s
}

// Entries 还原目录条目，两个数组长度不一致时返回错误
func (s *Snapshot) Entries() ([]CatalogEntry, error) {
	if len(s.Catalog) != len(s.Embeddings) {
		return nil, fmt.Errorf("catalog has %d records but %d embeddings", len(s.Catalog), len(s.Embeddings))
	}
	entries := make([]CatalogEntry, len(s.Catalog))
	for i := range s.Catalog {
		entries[i] = CatalogEntry{Movie: s.Catalog[i], Embedding: s.Embeddings[i]}
	}
	return entries, nil
}
