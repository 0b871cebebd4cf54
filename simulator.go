package kalman

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Simulator generates synthetic ground-truth state and observation sequences
// by stochastic forward propagation of a System. The randomness comes
// entirely from the injected Noise, so a seeded AWGN (or a BatchNoise)
// makes runs reproducible.
type Simulator struct {
	sys   *System
	noise Noise
}

// NewSimulator returns a Simulator after checking that the noise dimensions
// match the system's.
func NewSimulator(sys *System, noise Noise) (*Simulator, error) {
	if err := checkMatDims(noise.ProcessMatrix(), sys.q, "noise Q", "system Q", rowsAndcols); err != nil {
		return nil, err
	}
	if err := checkMatDims(noise.MeasurementMatrix(), sys.r, "noise R", "system R", rowsAndcols); err != nil {
		return nil, err
	}
	return &Simulator{sys, noise}, nil
}

// Simulate computes the first N states and observations generated by the
// system from the initial state x0:
//
//	x_t = F*x_{t-1} + u + w_t
//	z_t = H*x_t + v_t
//
// The observation for step t samples the post-transition state x_t, so that
// a noise-free run satisfies z_t = H*x_t exactly, consistent with the
// filter's innovation term.
//
// It returns the state sequence of length N+1 (x0 included) and the
// observation sequence of length N. A negative N fails with
// ErrInvalidHorizon.
func (s *Simulator) Simulate(x0 mat.Vector, N int) (states, observations []*mat.VecDense, err error) {
	if N < 0 {
		return nil, nil, fmt.Errorf("%w: N=%d", ErrInvalidHorizon, N)
	}
	if err := checkMatDims(x0, s.sys.f, "x0", "F", rows2rows); err != nil {
		return nil, nil, err
	}

	states = make([]*mat.VecDense, N+1)
	observations = make([]*mat.VecDense, N)
	states[0] = mat.VecDenseCopyOf(x0)
	for t := 1; t <= N; t++ {
		var x, z mat.VecDense
		x.MulVec(s.sys.f, states[t-1])
		x.AddVec(&x, s.sys.u)
		x.AddVec(&x, s.noise.Process(t-1))

		z.MulVec(s.sys.h, &x)
		z.AddVec(&z, s.noise.Measurement(t-1))

		states[t] = &x
		observations[t-1] = &z
	}
	return states, observations, nil
}
