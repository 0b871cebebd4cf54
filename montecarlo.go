package kalman

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// MonteCarloRuns stores repeated simulate-then-filter runs of the same
// system, each under its own deterministically derived seed.
type MonteCarloRuns struct {
	runs, steps int
	Runs        []MonteCarloRun
}

// MonteCarloRun stores the results of a single run: the simulated truth
// states (x_1..x_N) and the matching filter estimates.
type MonteCarloRun struct {
	Truth     []*mat.VecDense
	Estimates []Estimate
}

// NewMonteCarloRuns simulates and filters the provided system `samples`
// times over `steps` steps, starting each run from x0 and P0. Run i draws
// its noise from a PCG source seeded with (seed, i), so the whole batch is
// reproducible.
func NewMonteCarloRuns(samples, steps int, sys *System, x0 mat.Vector, P0 mat.Symmetric, seed uint64) (MonteCarloRuns, error) {
	runs := make([]MonteCarloRun, samples)
	for sample := 0; sample < samples; sample++ {
		noise, err := sys.GaussianNoise(rand.NewPCG(seed, uint64(sample)))
		if err != nil {
			return MonteCarloRuns{}, err
		}
		sim, err := NewSimulator(sys, noise)
		if err != nil {
			return MonteCarloRuns{}, err
		}
		states, observations, err := sim.Simulate(x0, steps)
		if err != nil {
			return MonteCarloRuns{}, err
		}
		kf, err := NewFilter(sys, x0, P0)
		if err != nil {
			return MonteCarloRuns{}, err
		}
		estimates, err := kf.Estimate(observations)
		if err != nil {
			return MonteCarloRuns{}, err
		}
		runs[sample] = MonteCarloRun{Truth: states[1:], Estimates: estimates}
	}
	return MonteCarloRuns{samples, steps, runs}, nil
}

// Mean returns the mean of the estimated states over all runs for the given
// time step.
func (mc MonteCarloRuns) Mean(step int) []float64 {
	// Take the first run in order to know the size.
	rows := mc.Runs[0].Estimates[0].state.Len()
	states := make(map[int][]float64)
	for i := 0; i < rows; i++ {
		states[i] = make([]float64, len(mc.Runs))
	}
	for r, run := range mc.Runs {
		state := run.Estimates[step].state
		for i := 0; i < rows; i++ {
			states[i][r] = state.AtVec(i)
		}
	}
	means := make([]float64, rows)
	for i := 0; i < rows; i++ {
		means[i] = stat.Mean(states[i], nil)
	}
	return means
}

// StdDev returns the standard deviation of the estimated states over all
// runs for the given time step.
func (mc MonteCarloRuns) StdDev(step int) []float64 {
	rows := mc.Runs[0].Estimates[0].state.Len()
	states := make(map[int][]float64)
	for i := 0; i < rows; i++ {
		states[i] = make([]float64, len(mc.Runs))
	}
	for r, run := range mc.Runs {
		state := run.Estimates[step].state
		for i := 0; i < rows; i++ {
			states[i][r] = state.AtVec(i)
		}
	}
	devs := make([]float64, rows)
	for i := 0; i < rows; i++ {
		devs[i] = stat.StdDev(states[i], nil)
	}
	return devs
}
