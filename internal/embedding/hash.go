package embedding

import "crypto/sha512"

const (
	DefaultDimension = 384

	chunkSize = 3
	chunkSpan = 1 << (8 * chunkSize) // 256^3
)

// HashEmbedder is a placeholder embedder derived from a SHA-384 digest. It
// gives identical text identical vectors and nothing more; it carries no
// semantic signal.
type HashEmbedder struct {
	dim int
}

// NewHashEmbedder returns an embedder producing vectors of length dim, or
// DefaultDimension when dim is not positive.
func NewHashEmbedder(dim int) *HashEmbedder {
	if dim <= 0 {
		dim = DefaultDimension
	}
	return &HashEmbedder{dim: dim}
}

func (h *HashEmbedder) Dimension() int {
	return h.dim
}

// Embed splits the digest into 3-byte big-endian chunks scaled into [0,1) and
// zero-pads the rest.
func (h *HashEmbedder) Embed(text string) []float32 {
	digest := sha512.Sum384([]byte(text))

	out := make([]float32, h.dim)
	n := 0
	for i := 0; i+chunkSize <= len(digest) && n < h.dim; i += chunkSize {
		v := uint32(digest[i])<<16 | uint32(digest[i+1])<<8 | uint32(digest[i+2])
		out[n] = float32(float64(v) / chunkSpan)
		n++
	}
	return out
}
