package similarity

import (
	"errors"
	"math"
	"testing"

	"github.com/semgraph/semgraph/pkg/apperr"
)

const tolerance = 1e-9

func TestCosine_SelfSimilarity(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0.5, 0.5, 0.5},
		{-1, 2, -3},
	}

	for _, v := range vectors {
		sim, err := Cosine(v, v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(sim-1.0) > tolerance {
			t.Errorf("cosine(v, v) = %v, want 1.0", sim)
		}
	}
}

func TestCosine_Symmetry(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 5, 6}

	ab, err := Cosine(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ba, err := Cosine(b, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(ab-ba) > tolerance {
		t.Errorf("cosine not symmetric: %v vs %v", ab, ba)
	}
}

func TestCosine_Orthogonal(t *testing.T) {
	sim, err := Cosine([]float32{1, 0}, []float32{0, 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(sim) > tolerance {
		t.Errorf("cosine of orthogonal vectors = %v, want 0", sim)
	}
}

func TestCosine_ZeroNorm(t *testing.T) {
	sim, err := Cosine([]float32{0, 0, 0}, []float32{1, 2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sim != 0 {
		t.Errorf("cosine with zero vector = %v, want 0", sim)
	}
}

func TestCosine_LengthMismatch(t *testing.T) {
	_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestMatrix_SymmetricWithUnitDiagonal(t *testing.T) {
	vectors := [][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{1, 1, 0},
	}

	m, err := Matrix(vectors)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(m) != 3 {
		t.Fatalf("expected 3x3 matrix, got %d rows", len(m))
	}
	for i := range m {
		if len(m[i]) != 3 {
			t.Fatalf("row %d has %d columns, want 3", i, len(m[i]))
		}
		if math.Abs(m[i][i]-1.0) > tolerance {
			t.Errorf("M[%d][%d] = %v, want 1.0", i, i, m[i][i])
		}
		for j := range m[i] {
			if math.Abs(m[i][j]-m[j][i]) > tolerance {
				t.Errorf("M[%d][%d] != M[%d][%d]: %v vs %v", i, j, j, i, m[i][j], m[j][i])
			}
		}
	}

	// 45 degrees between axis vector and diagonal vector
	want := 1 / math.Sqrt2
	if math.Abs(m[0][2]-want) > tolerance {
		t.Errorf("M[0][2] = %v, want %v", m[0][2], want)
	}
}

func TestMatrix_EmptyBatch(t *testing.T) {
	_, err := Matrix(nil)
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for empty batch, got %v", err)
	}
}

func TestMatrix_MismatchedLengths(t *testing.T) {
	_, err := Matrix([][]float32{{1, 2}, {1, 2, 3}})
	if !errors.Is(err, apperr.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput for mismatched lengths, got %v", err)
	}
}
