package embedding

import (
	"context"
	"hash/fnv"
	"math"

	"github.com/user/cinerag/internal/utils"
)

// HashEmbedder 离线向量：词元特征哈希 + L2 归一化
// 无需外部模型，适合演示与测试；空文本得到零向量
type HashEmbedder struct {
	dims int
}

func NewHashEmbedder(dims int) *HashEmbedder {
	if dims <= 0 {
		dims = 384
	}
	return &HashEmbedder{dims: dims}
}

func (h *HashEmbedder) Dimensions() int {
	return h.dims
}

func (h *HashEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, h.dims)
	for _, token := range utils.Tokenize(text) {
		hasher := fnv.New64a()
		hasher.Write([]byte(token))
		sum := hasher.Sum64()

		idx := int(sum % uint64(h.dims))
		// 高位决定符号，减少哈希冲突带来的偏置
		if sum>>63 == 1 {
			vec[idx] -= 1
		} else {
			vec[idx] += 1
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec, nil
	}
	norm = math.Sqrt(norm)
	for i := range vec {
		vec[i] = float32(float64(vec[i]) / norm)
	}
	return vec, nil
}
