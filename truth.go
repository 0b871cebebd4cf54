package kalman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// BatchGroundTruth computes the error of a given estimate from a known batch
// of true states and observations, typically produced by a Simulator.
type BatchGroundTruth struct {
	states       []*mat.VecDense
	measurements []*mat.VecDense
}

// NewBatchGroundTruth initializes a new batch ground truth. Either slice may
// be nil, in which case the corresponding error is not computed.
func NewBatchGroundTruth(states, measurements []*mat.VecDense) *BatchGroundTruth {
	return &BatchGroundTruth{states, measurements}
}

// Error returns an ErrorEstimate after comparing the provided estimate with
// the ground truth at index k.
func (t *BatchGroundTruth) Error(k int, est Estimate) ErrorEstimate {
	return t.ErrorWithOffset(k, est, nil)
}

// ErrorWithOffset returns an ErrorEstimate after adding the offset to the
// estimated state and comparing with the ground truth at index k.
func (t *BatchGroundTruth) ErrorWithOffset(k int, est Estimate, offset mat.Vector) ErrorEstimate {
	estState := mat.VecDenseCopyOf(est.State())
	if offset != nil {
		estState.AddVec(estState, offset)
	}
	if t.states != nil {
		trueState := t.states[k]
		if estState.Len() != trueState.Len() {
			panic(fmt.Errorf("ground truth state size different from estimated state size (k=%d)", k))
		}
		estState.SubVec(estState, trueState)
	}

	estMeas := mat.VecDenseCopyOf(est.Measurement())
	if t.measurements != nil {
		trueMeas := t.measurements[k]
		if estMeas.Len() != trueMeas.Len() {
			panic(fmt.Errorf("ground truth measurement size different from estimated measurement size (k=%d)", k))
		}
		estMeas.SubVec(estMeas, trueMeas)
	}
	return ErrorEstimate{Estimate{
		state:      estState,
		meas:       estMeas,
		innovation: est.innovation,
		covar:      est.covar,
		predCovar:  est.predCovar,
		gain:       est.gain,
	}}
}

// ErrorEstimate wraps an Estimate whose state holds the estimation error
// instead of the estimate itself. IsWithin2σ is meaningful on it.
type ErrorEstimate struct {
	Estimate
}
