// Package similarity computes pairwise cosine similarity over embedding
// batches.
package similarity

import (
	"fmt"
	"math"

	"github.com/semgraph/semgraph/pkg/apperr"
)

// Cosine returns the cosine similarity of two equal-length vectors.
// When either vector has zero norm the similarity is defined as 0, so a
// padded or empty embedding never produces NaN downstream.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: vector length mismatch: %d vs %d", apperr.ErrInvalidInput, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Matrix computes the full pairwise cosine similarity matrix for a batch of
// vectors. The result is square and symmetric, with M[i][i] = 1 by
// convention. All vectors must share the same length; an empty batch or a
// length mismatch is an invalid-input error.
func Matrix(vectors [][]float32) ([][]float64, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("%w: empty vector batch", apperr.ErrInvalidInput)
	}

	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has length %d, expected %d", apperr.ErrInvalidInput, i, len(v), dim)
		}
	}

	m := make([][]float64, len(vectors))
	for i := range m {
		m[i] = make([]float64, len(vectors))
		m[i][i] = 1.0
	}

	for i := 0; i < len(vectors); i++ {
		for j := i + 1; j < len(vectors); j++ {
			sim, err := Cosine(vectors[i], vectors[j])
			if err != nil {
				return nil, err
			}
			m[i][j] = sim
			m[j][i] = sim
		}
	}

	return m, nil
}
