package vector

import (
	"math"
	"testing"
)

func TestCosineSelfSimilarity(t *testing.T) {
	vs := [][]float32{
		{1, 0, 0},
		{0.3, -0.7, 2.5},
		{1e-3, 1e-3},
	}
	for _, v := range vs {
		got := Cosine(v, v)
		if math.Abs(got-1) > 1e-9 {
			t.Fatalf("Cosine(v,v)=%v want 1 for %v", got, v)
		}
	}
}

func TestCosineSymmetry(t *testing.T) {
	a := []float32{0.1, 0.9, -0.4}
	b := []float32{-0.2, 0.5, 0.8}
	if Cosine(a, b) != Cosine(b, a) {
		t.Fatalf("cosine not symmetric: %v vs %v", Cosine(a, b), Cosine(b, a))
	}
}

func TestCosineOrthogonalAndOpposite(t *testing.T) {
	if got := Cosine([]float32{1, 0}, []float32{0, 1}); math.Abs(got) > 1e-9 {
		t.Fatalf("orthogonal want 0, got %v", got)
	}
	if got := Cosine([]float32{1, 0}, []float32{-1, 0}); math.Abs(got+1) > 1e-9 {
		t.Fatalf("opposite want -1, got %v", got)
	}
}

func TestCosineUndefined(t *testing.T) {
	cases := [][2][]float32{
		{{0, 0, 0}, {1, 2, 3}},
		{{1, 2, 3}, {0, 0, 0}},
		{{1, 2}, {1, 2, 3}},
		{{}, {}},
	}
	for _, c := range cases {
		if got := Cosine(c[0], c[1]); !math.IsNaN(got) {
			t.Fatalf("Cosine(%v,%v)=%v want NaN", c[0], c[1], got)
		}
	}
}
