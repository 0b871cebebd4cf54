package kalman

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func assertPanic(t *testing.T, f func()) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("code did not panic")
		}
	}()
	f()
}

func TestIdentity(t *testing.T) {
	n := 3
	i33 := Identity(n)
	if r, c := i33.Dims(); r != n || r != c {
		t.Fatalf("i33 has dimensions (%dx%d)", r, c)
	}
	for i := 0; i < n; i++ {
		if i33.At(i, i) != 1 {
			t.Fatalf("i33(%d,%d) != 1", i, i)
		}
		for j := 0; j < n; j++ {
			if i != j && i33.At(i, j) != 0 {
				t.Fatalf("i33(%d,%d) != 0", i, j)
			}
		}
	}
	s22 := ScaledIdentity(2, 5000)
	for i := 0; i < 2; i++ {
		if s22.At(i, i) != 5000 {
			t.Fatalf("s22(%d,%d) != 5000", i, i)
		}
	}
}

func TestIsNil(t *testing.T) {
	if !IsNil(mat.NewDense(2, 3, nil)) {
		t.Fatal("zero matrix reported as non nil")
	}
	if IsNil(mat.NewDense(2, 2, []float64{0, 0, 1e-12, 0})) {
		t.Fatal("non-zero matrix reported as nil")
	}
}

func TestAsSymDense(t *testing.T) {
	if _, err := AsSymDense(mat.NewDense(2, 3, nil)); err == nil {
		t.Fatal("non-square matrix does not fail")
	}
	if _, err := AsSymDense(mat.NewDense(2, 2, []float64{1, 2, 3, 4})); err == nil {
		t.Fatal("asymmetric matrix does not fail")
	}
	s, err := AsSymDense(mat.NewDense(2, 2, []float64{1, 2, 2, 4}))
	if err != nil {
		t.Fatal(err)
	}
	if s.At(0, 1) != 2 {
		t.Fatal("symmetric conversion lost values")
	}
}

func TestSymmetrize(t *testing.T) {
	m := mat.NewDense(2, 2, []float64{1, 2, 4, 3})
	s := symmetrize(m)
	if s.At(0, 1) != 3 || s.At(1, 0) != 3 {
		t.Fatalf("symmetrize returned %v off diagonal", s.At(0, 1))
	}
	if s.At(0, 0) != 1 || s.At(1, 1) != 3 {
		t.Fatal("symmetrize changed the diagonal")
	}
}

func TestAnyNonFinite(t *testing.T) {
	if anyNonFinite(mat.NewDense(2, 2, []float64{1, 2, 3, 4})) {
		t.Fatal("finite matrix flagged")
	}
	nan := mat.NewVecDense(2, []float64{0, 0})
	nan.SetVec(1, nan.AtVec(1)/nan.AtVec(0))
	if !anyNonFinite(nan) {
		t.Fatal("NaN not flagged")
	}
}
