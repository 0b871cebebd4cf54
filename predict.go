package kalman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Forecast deterministically projects the state x forward with no noise and
// no observation correction, by repeated application of the transition:
//
//	x_{t} = F*x_{t-1} + u
//
// It returns k states in chronological order; element 0 is x itself.
// A horizon below one fails with ErrInvalidHorizon.
func (sys *System) Forecast(x mat.Vector, k int) ([]*mat.VecDense, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: forecast k=%d", ErrInvalidHorizon, k)
	}
	if err := checkMatDims(x, sys.f, "x", "F", rows2rows); err != nil {
		return nil, err
	}
	states := make([]*mat.VecDense, k)
	states[0] = mat.VecDenseCopyOf(x)
	for i := 1; i < k; i++ {
		var xi mat.VecDense
		xi.MulVec(sys.f, states[i-1])
		xi.AddVec(&xi, sys.u)
		states[i] = &xi
	}
	return states, nil
}

// ForecastWithCovariance behaves like Forecast but also propagates the
// covariance alongside each state, P_t = F*P_{t-1}*F' + Q, quantifying how
// uncertainty grows without observations. Element 0 holds x and P unchanged.
func (sys *System) ForecastWithCovariance(x mat.Vector, P mat.Symmetric, k int) ([]*mat.VecDense, []*mat.SymDense, error) {
	if err := checkMatDims(P, sys.f, "P", "F", rowsAndcols); err != nil {
		return nil, nil, err
	}
	states, err := sys.Forecast(x, k)
	if err != nil {
		return nil, nil, err
	}
	covars := make([]*mat.SymDense, k)
	covars[0] = mat.NewSymDense(sys.n, nil)
	covars[0].CopySym(P)
	for i := 1; i < k; i++ {
		var FP, FPFt mat.Dense
		FP.Mul(sys.f, covars[i-1])
		FPFt.Mul(&FP, sys.f.T())
		FPFt.Add(&FPFt, sys.q)
		covars[i] = symmetrize(&FPFt)
	}
	return states, covars, nil
}

// Reconstruct deterministically projects a state x known at time index k
// backward, by repeated application of the inverted transition:
//
//	x_{t-1} = F⁻¹*(x_t - u)
//
// It returns k states in reverse chronological order: element 0 is x itself
// (time k), element i is the state at time k-i. F is inverted through an LU
// solve; a singular F fails with ErrSingularTransition, and a horizon below
// one with ErrInvalidHorizon.
func (sys *System) Reconstruct(x mat.Vector, k int) ([]*mat.VecDense, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: reconstruct k=%d", ErrInvalidHorizon, k)
	}
	if err := checkMatDims(x, sys.f, "x", "F", rows2rows); err != nil {
		return nil, err
	}
	var lu mat.LU
	lu.Factorize(sys.f)

	states := make([]*mat.VecDense, k)
	states[0] = mat.VecDenseCopyOf(x)
	for i := 1; i < k; i++ {
		var diff, xi mat.VecDense
		diff.SubVec(states[i-1], sys.u)
		if err := lu.SolveVecTo(&xi, false, &diff); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrSingularTransition, err)
		}
		if anyNonFinite(&xi) {
			return nil, fmt.Errorf("%w: reconstruction diverged at step %d", ErrNumericInstability, i)
		}
		states[i] = &xi
	}
	return states, nil
}
