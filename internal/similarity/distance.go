package similarity

import "github.com/viant/vec/search"

// normEpsilon guards against zero-length vectors; below it similarity is 0.
const normEpsilon = 1e-10

func magnitude(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// cosineDistance returns 1 - cosine similarity. The cached magnitudes only
// gate the zero-norm case. Mismatched or near-zero vectors are unrelated.
func cosineDistance(a, b []float32, magA, magB float32) float32 {
	if len(a) != len(b) || float64(magA) < normEpsilon || float64(magB) < normEpsilon {
		return 1
	}
	return search.Float32s(a).CosineDistance(b)
}
