// Package embedding turns text into fixed-length vectors for the similarity
// index.
package embedding

// Embedder maps text to a vector of Dimension() floats. Implementations must
// be deterministic.
type Embedder interface {
	Embed(text string) []float32
	Dimension() int
}
