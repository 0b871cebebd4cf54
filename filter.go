package kalman

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Filter runs the classical Kalman predict/update recursion over a System.
// Use NewFilter to initialize. To get the next estimate, push the next
// observation to Update, or feed a whole observation sequence to Estimate.
type Filter struct {
	sys     *System
	prevEst Estimate
	step    int
}

// NewFilter returns a new Filter seeded with the initial state estimate x0
// and initial covariance P0.
func NewFilter(sys *System, x0 mat.Vector, P0 mat.Symmetric) (*Filter, error) {
	if err := checkMatDims(x0, sys.f, "x0", "F", rows2rows); err != nil {
		return nil, err
	}
	if err := checkMatDims(P0, sys.f, "P0", "F", rowsAndcols); err != nil {
		return nil, err
	}
	covar0 := mat.NewSymDense(sys.n, nil)
	covar0.CopySym(P0)
	est0 := Estimate{
		state:      mat.VecDenseCopyOf(x0),
		meas:       mat.NewVecDense(sys.m, nil),
		innovation: mat.NewVecDense(sys.m, nil),
		covar:      covar0,
		predCovar:  mat.NewSymDense(sys.n, nil),
	}
	return &Filter{sys, est0, 0}, nil
}

// Update processes a single observation z and returns the post-update
// estimate. The recursion is:
//
//	x⁻ = F*x + u             P⁻ = F*P*F' + Q
//	y  = z - H*x⁻            S  = H*P⁻*H' + R
//	K  = P⁻*H'*S⁻¹
//	x  = x⁻ + K*y            P  = (I - K*H)*P⁻
//
// S⁻¹ is never formed: the gain is obtained from the Cholesky factorization
// of S, which fails with ErrSingularInnovation when S is not positive
// definite. P is symmetrized after the update. NaN or Inf in the result
// surfaces as ErrNumericInstability.
func (kf *Filter) Update(z mat.Vector) (Estimate, error) {
	if err := checkMatDims(z, kf.sys.h, "measurement (z)", "H", rows2rows); err != nil {
		return Estimate{}, err
	}

	// Prediction step.
	var xMinus mat.VecDense
	xMinus.MulVec(kf.sys.f, kf.prevEst.state)
	xMinus.AddVec(&xMinus, kf.sys.u)

	// P_{k+1}^{-}
	var FP, FPFt mat.Dense
	FP.Mul(kf.sys.f, kf.prevEst.covar)
	FPFt.Mul(&FP, kf.sys.f.T())
	FPFt.Add(&FPFt, kf.sys.q)
	predCovar := symmetrize(&FPFt)

	// Measurement prediction and innovation.
	var zHat, innov mat.VecDense
	zHat.MulVec(kf.sys.h, &xMinus)
	innov.SubVec(z, &zHat)

	// Innovation covariance S = H*P⁻*H' + R.
	var PHt, S mat.Dense
	PHt.Mul(predCovar, kf.sys.h.T())
	S.Mul(kf.sys.h, &PHt)
	S.Add(&S, kf.sys.r)

	// Kalman gain via Cholesky: K' = S⁻¹*(P⁻*H')'.
	var chol mat.Cholesky
	if ok := chol.Factorize(symmetrize(&S)); !ok {
		return Estimate{}, fmt.Errorf("%w at step %d", ErrSingularInnovation, kf.step)
	}
	var Kt mat.Dense
	if err := chol.SolveTo(&Kt, PHt.T()); err != nil {
		return Estimate{}, fmt.Errorf("%w at step %d: %s", ErrSingularInnovation, kf.step, err)
	}
	K := mat.DenseCopyOf(Kt.T())

	// Measurement update.
	var Ky, xPlus mat.VecDense
	Ky.MulVec(K, &innov)
	xPlus.AddVec(&xMinus, &Ky)

	var KH, ImKH, PPlus mat.Dense
	KH.Mul(K, kf.sys.h)
	ImKH.Sub(Identity(kf.sys.n), &KH)
	PPlus.Mul(&ImKH, predCovar)
	covar := symmetrize(&PPlus)

	if anyNonFinite(&xPlus) || anyNonFinite(covar) {
		return Estimate{}, fmt.Errorf("%w at step %d", ErrNumericInstability, kf.step)
	}

	est := Estimate{&xPlus, &zHat, &innov, covar, predCovar, K}
	kf.prevEst = est
	kf.step++
	return est, nil
}

// Estimate consumes an ordered observation sequence and returns the sequence
// of post-update estimates, one per observation. The initial condition given
// to NewFilter is consumed, not re-emitted. The first error aborts the whole
// run; there are no partial results.
func (kf *Filter) Estimate(observations []*mat.VecDense) ([]Estimate, error) {
	estimates := make([]Estimate, len(observations))
	for i, z := range observations {
		est, err := kf.Update(z)
		if err != nil {
			return nil, err
		}
		estimates[i] = est
	}
	return estimates, nil
}

func (kf *Filter) String() string {
	return fmt.Sprintf("Filter with\n%s", kf.sys)
}

// Estimate is the output of each update step of the Filter: the post-update
// state paired with its covariance, along with the innovation diagnostics.
type Estimate struct {
	state, meas, innovation *mat.VecDense
	covar, predCovar        *mat.SymDense
	gain                    *mat.Dense
}

// IsWithin2σ returns whether the estimate's state is within the 2σ bounds of
// its covariance. Only meaningful on error estimates (see BatchGroundTruth).
func (e Estimate) IsWithin2σ() bool {
	for i := 0; i < e.state.Len(); i++ {
		twoσ := 2 * math.Sqrt(e.covar.At(i, i))
		if e.state.AtVec(i) > twoσ || e.state.AtVec(i) < -twoσ {
			return false
		}
	}
	return true
}

// State returns the post-update state \hat{x}_{k+1}^{+}.
func (e Estimate) State() mat.Vector {
	return e.state
}

// Measurement returns the predicted measurement H*\hat{x}_{k+1}^{-}.
func (e Estimate) Measurement() mat.Vector {
	return e.meas
}

// Innovation returns z_{k+1} - H*\hat{x}_{k+1}^{-}.
func (e Estimate) Innovation() mat.Vector {
	return e.innovation
}

// Covariance returns the post-update covariance P_{k+1}^{+}.
func (e Estimate) Covariance() mat.Symmetric {
	return e.covar
}

// PredCovariance returns the pre-update covariance P_{k+1}^{-}.
func (e Estimate) PredCovariance() mat.Symmetric {
	return e.predCovar
}

// Gain returns the Kalman gain used for this update.
func (e Estimate) Gain() mat.Matrix {
	return e.gain
}

func (e Estimate) String() string {
	state := mat.Formatted(e.state, mat.Prefix("  "))
	meas := mat.Formatted(e.meas, mat.Prefix("  "))
	covar := mat.Formatted(e.covar, mat.Prefix("  "))
	innov := mat.Formatted(e.innovation, mat.Prefix("  "))
	predp := mat.Formatted(e.predCovar, mat.Prefix("  "))
	if e.gain == nil {
		return fmt.Sprintf("{\ns=%v\ny=%v\nP=%v\nP-=%v\ni=%v\n}", state, meas, covar, predp, innov)
	}
	gain := mat.Formatted(e.gain, mat.Prefix("  "))
	return fmt.Sprintf("{\ns=%v\ny=%v\nP=%v\nK=%v\nP-=%v\ni=%v\n}", state, meas, covar, gain, predp, innov)
}
