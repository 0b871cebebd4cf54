package kalman

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// The projectile scenario: a ballistic arc with gravity folded into the
// control vector, observed by a radar reporting noisy positions.

func TestBallisticScenarioLengths(t *testing.T) {
	sys := ballisticSystem(t)
	noise, err := sys.GaussianNoise(rand.NewPCG(1, 1))
	require.NoError(t, err)
	sim, err := NewSimulator(sys, noise)
	require.NoError(t, err)

	states, observations, err := sim.Simulate(mat.NewVecDense(4, []float64{0, 0, 300, 600}), 1250)
	require.NoError(t, err)
	require.Len(t, states, 1251)
	require.Len(t, observations, 1250)
}

// With Q = R = 0 the simulated states must match the closed-form discrete
// ballistic solution: with Δt = 0.1 and a per-step velocity decrement of
// 0.98, step t satisfies
//
//	x(t)  = 30*t            vx(t) = 300
//	y(t)  = 60*t - 0.049*t*(t-1)   vy(t) = 600 - 0.98*t
func TestBallisticNoiseFreeClosedForm(t *testing.T) {
	sys := ballisticSystem(t)
	sim, err := NewSimulator(sys, NewNoiseless(4, 2))
	require.NoError(t, err)

	states, _, err := sim.Simulate(mat.NewVecDense(4, []float64{0, 0, 300, 600}), 1250)
	require.NoError(t, err)
	require.Len(t, states, 1251)

	for step, state := range states {
		ts := float64(step)
		require.InDelta(t, 30*ts, state.AtVec(0), 1e-4, "x at step %d", step)
		require.InDelta(t, 60*ts-0.049*ts*(ts-1), state.AtVec(1), 1e-4, "y at step %d", step)
		require.InDelta(t, 300, state.AtVec(2), 1e-9, "vx at step %d", step)
		require.InDelta(t, 600-0.98*ts, state.AtVec(3), 1e-6, "vy at step %d", step)
	}
}

// Full pipeline: simulate the flight, filter the radar window with an
// initial estimate derived from the observations themselves, and check the
// filter converged onto the true trajectory.
func TestBallisticFilterTracksTruth(t *testing.T) {
	const Δt = 0.1
	sys := ballisticSystem(t)
	noise, err := sys.GaussianNoise(rand.NewPCG(3, 3))
	require.NoError(t, err)
	sim, err := NewSimulator(sys, noise)
	require.NoError(t, err)

	states, observations, err := sim.Simulate(mat.NewVecDense(4, []float64{0, 0, 300, 600}), 1250)
	require.NoError(t, err)

	window := observations[200:800]
	var vx, vy float64
	for i := 0; i < 8; i++ {
		vx += (window[i+1].AtVec(0) - window[i].AtVec(0)) / Δt
		vy += (window[i+1].AtVec(1) - window[i].AtVec(1)) / Δt
	}
	x0 := mat.NewVecDense(4, []float64{window[0].AtVec(0), window[0].AtVec(1), vx / 8, vy / 8})

	kf, err := NewFilter(sys, x0, ScaledIdentity(4, 1e5))
	require.NoError(t, err)
	estimates, err := kf.Estimate(window)
	require.NoError(t, err)
	require.Len(t, estimates, 600)

	// The last estimate corresponds to the true state at step 800. The radar
	// noise has σ≈70 per axis; the filtered position should be far tighter.
	last := estimates[len(estimates)-1].State()
	truth := states[800]
	require.InDelta(t, truth.AtVec(0), last.AtVec(0), 100, "x position")
	require.InDelta(t, truth.AtVec(1), last.AtVec(1), 100, "y position")
	require.InDelta(t, truth.AtVec(2), last.AtVec(2), 20, "x velocity")
	require.InDelta(t, truth.AtVec(3), last.AtVec(3), 20, "y velocity")

	// Forecasting from the final estimate must land near the true impact
	// region: the trajectory is dominated by the deterministic arc.
	forecast, err := sys.Forecast(last, 450)
	require.NoError(t, err)
	require.Equal(t, last.AtVec(0), forecast[0].AtVec(0))

	// Reconstructing from an early estimate must walk back toward launch.
	// estimates[50] is the state at step 251; 250 backward steps end at
	// step 2.
	rewound, err := sys.Reconstruct(estimates[50].State(), 250)
	require.NoError(t, err)
	require.Len(t, rewound, 250)
	origin := rewound[len(rewound)-1]
	require.InDelta(t, states[2].AtVec(0), origin.AtVec(0), 500, "origin x")
}
