// Package kalman estimates and forecasts the trajectory of a linear
// discrete-time dynamical process observed through a noisy linear sensor:
// stochastic simulation, recursive filtering, deterministic forecasting and
// backward reconstruction over a fixed state-space model.
package kalman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// System is an immutable linear discrete-time state-space model:
//
//	x_{k+1} = F*x_k + u + w,  w ~ N(0, Q)
//	z_k     = H*x_k + v,      v ~ N(0, R)
//
// with an n-dimensional state and an m-dimensional observation. Once
// constructed, a System is never mutated and may be shared by concurrent
// Simulator, Filter, Forecast and Reconstruct calls.
type System struct {
	f    *mat.Dense
	q    *mat.SymDense
	h    *mat.Dense
	r    *mat.SymDense
	u    *mat.VecDense
	n, m int
}

// NewSystem returns a new System after validating that all shapes are
// mutually compatible: F square of size n, Q the same size as F, H with n
// columns, R square matching H's rows, u of length n. All inputs are copied.
func NewSystem(F mat.Matrix, Q mat.Symmetric, H mat.Matrix, R mat.Symmetric, u mat.Vector) (*System, error) {
	if err := checkMatDims(F, F, "F", "F'", rows2cols); err != nil {
		return nil, err
	}
	if err := checkMatDims(Q, F, "Q", "F", rowsAndcols); err != nil {
		return nil, err
	}
	if err := checkMatDims(H, F, "H", "F", cols2cols); err != nil {
		return nil, err
	}
	if err := checkMatDims(R, H, "R", "H", rows2rows); err != nil {
		return nil, err
	}
	if err := checkMatDims(u, F, "u", "F", rows2rows); err != nil {
		return nil, err
	}

	n, _ := F.Dims()
	m, _ := H.Dims()
	q := mat.NewSymDense(n, nil)
	q.CopySym(Q)
	r := mat.NewSymDense(m, nil)
	r.CopySym(R)
	return &System{
		f: mat.DenseCopyOf(F),
		q: q,
		h: mat.DenseCopyOf(H),
		r: r,
		u: mat.VecDenseCopyOf(u),
		n: n,
		m: m,
	}, nil
}

// NewScalarSystem returns a System for the degenerate scalar case (n = m = 1)
// by lifting the parameters to 1x1 matrices. It runs through the exact same
// code path as the matrix case and produces numerically identical results.
func NewScalarSystem(f, q, h, r, u float64) (*System, error) {
	return NewSystem(
		mat.NewDense(1, 1, []float64{f}),
		mat.NewSymDense(1, []float64{q}),
		mat.NewDense(1, 1, []float64{h}),
		mat.NewSymDense(1, []float64{r}),
		mat.NewVecDense(1, []float64{u}),
	)
}

// Dims returns the state size n and the observation size m.
func (sys *System) Dims() (n, m int) {
	return sys.n, sys.m
}

// StateTransition returns the F matrix. Callers must not modify it.
func (sys *System) StateTransition() mat.Matrix {
	return sys.f
}

// ProcessNoiseMatrix returns the Q matrix. Callers must not modify it.
func (sys *System) ProcessNoiseMatrix() mat.Symmetric {
	return sys.q
}

// MeasurementMatrix returns the H matrix. Callers must not modify it.
func (sys *System) MeasurementMatrix() mat.Matrix {
	return sys.h
}

// MeasurementNoiseMatrix returns the R matrix. Callers must not modify it.
func (sys *System) MeasurementNoiseMatrix() mat.Symmetric {
	return sys.r
}

// Control returns the control vector u. Callers must not modify it.
func (sys *System) Control() mat.Vector {
	return sys.u
}

func (sys *System) String() string {
	return fmt.Sprintf("F=%v\nQ=%v\nH=%v\nR=%v\nu=%v\n",
		mat.Formatted(sys.f, mat.Prefix("  ")),
		mat.Formatted(sys.q, mat.Prefix("  ")),
		mat.Formatted(sys.h, mat.Prefix("  ")),
		mat.Formatted(sys.r, mat.Prefix("  ")),
		mat.Formatted(sys.u, mat.Prefix("  ")))
}
