package kalman

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// NewChiSquare runs the chi-square consistency tests over the provided
// Monte Carlo runs: NEES (normalized estimation error squared) against each
// run's simulated truth, and NIS (normalized innovation squared) against the
// innovation covariance. A consistent filter keeps the per-step means near
// the state and observation dimensions, respectively.
// Returns NEES means and NIS means, one value per step.
func NewChiSquare(sys *System, runs MonteCarloRuns, withNEES, withNIS bool) ([]float64, []float64, error) {
	if !withNEES && !withNIS {
		return nil, nil, errors.New("chi square requires either NEES or NIS or both")
	}

	numRuns := runs.runs
	numSteps := runs.steps
	NEESsamples := make(map[int][]float64)
	NISsamples := make(map[int][]float64)

	for rNo, run := range runs.Runs {
		for k, est := range run.Estimates {
			if withNEES {
				if NEESsamples[k] == nil {
					NEESsamples[k] = make([]float64, numRuns)
				}
				var e, tmp mat.VecDense
				e.SubVec(run.Truth[k], est.state)
				var chol mat.Cholesky
				if ok := chol.Factorize(est.covar); !ok {
					return nil, nil, fmt.Errorf("%w: NEES covariance at run %d step %d", ErrSingularInnovation, rNo, k)
				}
				if err := chol.SolveVecTo(&tmp, &e); err != nil {
					return nil, nil, fmt.Errorf("%w: NEES covariance at run %d step %d: %s", ErrSingularInnovation, rNo, k, err)
				}
				NEESsamples[k][rNo] = mat.Dot(&e, &tmp)
			}

			if withNIS {
				if NISsamples[k] == nil {
					NISsamples[k] = make([]float64, numRuns)
				}
				// S = H*P⁻*H' + R from the pure prediction covariance.
				var PHt, S mat.Dense
				PHt.Mul(est.predCovar, sys.h.T())
				S.Mul(sys.h, &PHt)
				S.Add(&S, sys.r)
				var chol mat.Cholesky
				if ok := chol.Factorize(symmetrize(&S)); !ok {
					return nil, nil, fmt.Errorf("%w: NIS at run %d step %d", ErrSingularInnovation, rNo, k)
				}
				var tmp mat.VecDense
				if err := chol.SolveVecTo(&tmp, est.innovation); err != nil {
					return nil, nil, fmt.Errorf("%w: NIS at run %d step %d: %s", ErrSingularInnovation, rNo, k, err)
				}
				NISsamples[k][rNo] = mat.Dot(est.innovation, &tmp)
			}
		}
	}

	NEESmeans := make([]float64, numSteps)
	NISmeans := make([]float64, numSteps)
	for k := 0; k < numSteps; k++ {
		if withNEES {
			NEESmeans[k] = stat.Mean(NEESsamples[k], nil)
		}
		if withNIS {
			NISmeans[k] = stat.Mean(NISsamples[k], nil)
		}
	}
	return NEESmeans, NISmeans, nil
}
