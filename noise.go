package kalman

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

// Noise is a source of process and observation noise draws for a Simulator.
type Noise interface {
	Process(k int) *mat.VecDense      // Returns the process noise w at step k
	Measurement(k int) *mat.VecDense  // Returns the measurement noise v at step k
	ProcessMatrix() mat.Symmetric     // Returns the process noise matrix Q
	MeasurementMatrix() mat.Symmetric // Returns the measurement noise matrix R
	String() string                   // Stringer interface implementation
}

// Noiseless is noiseless and implements the Noise interface.
type Noiseless struct {
	processSize, measurementSize int
}

// NewNoiseless creates a zero-draw noise for the given state and observation sizes.
func NewNoiseless(processSize, measurementSize int) Noiseless {
	return Noiseless{processSize, measurementSize}
}

// Process returns a zero vector of the correct size.
func (n Noiseless) Process(k int) *mat.VecDense {
	return mat.NewVecDense(n.processSize, nil)
}

// Measurement returns a zero vector of the correct size.
func (n Noiseless) Measurement(k int) *mat.VecDense {
	return mat.NewVecDense(n.measurementSize, nil)
}

// ProcessMatrix implements the Noise interface.
func (n Noiseless) ProcessMatrix() mat.Symmetric {
	return mat.NewSymDense(n.processSize, nil)
}

// MeasurementMatrix implements the Noise interface.
func (n Noiseless) MeasurementMatrix() mat.Symmetric {
	return mat.NewSymDense(n.measurementSize, nil)
}

// String implements the Stringer interface.
func (n Noiseless) String() string {
	return fmt.Sprintf("Noiseless{%d, %d}", n.processSize, n.measurementSize)
}

// BatchNoise replays pre-recorded noise vectors and implements the Noise
// interface. It makes otherwise stochastic runs fully deterministic, which
// the tests rely on.
type BatchNoise struct {
	process     []*mat.VecDense
	measurement []*mat.VecDense
}

// NewBatchNoise creates a BatchNoise from the provided draws.
func NewBatchNoise(process, measurement []*mat.VecDense) BatchNoise {
	return BatchNoise{process, measurement}
}

// Process implements the Noise interface.
func (n BatchNoise) Process(k int) *mat.VecDense {
	if k >= len(n.process) {
		panic(fmt.Errorf("no process noise defined at step k=%d", k))
	}
	return n.process[k]
}

// Measurement implements the Noise interface.
func (n BatchNoise) Measurement(k int) *mat.VecDense {
	if k >= len(n.measurement) {
		panic(fmt.Errorf("no measurement noise defined at step k=%d", k))
	}
	return n.measurement[k]
}

// ProcessMatrix implements the Noise interface.
func (n BatchNoise) ProcessMatrix() mat.Symmetric {
	return mat.NewSymDense(n.process[0].Len(), nil)
}

// MeasurementMatrix implements the Noise interface.
func (n BatchNoise) MeasurementMatrix() mat.Symmetric {
	return mat.NewSymDense(n.measurement[0].Len(), nil)
}

// String implements the Stringer interface.
func (n BatchNoise) String() string {
	return "BatchNoise"
}

// AWGN implements the Noise interface and generates additive white Gaussian
// noise from an explicitly injected randomness source, so that two AWGN built
// from sources with the same seed produce identical draws.
type AWGN struct {
	Q, R        mat.Symmetric
	process     *distmv.Normal
	measurement *distmv.Normal
}

// NewAWGN creates new AWGN noise from the provided Q and R and the seedable
// source src. An all-zero covariance short-circuits to zero draws; any other
// covariance must be positive definite for the underlying Cholesky-based
// sampler to accept it.
func NewAWGN(Q, R mat.Symmetric, src rand.Source) (*AWGN, error) {
	if Q == nil || R == nil {
		return nil, fmt.Errorf("Q and R must be specified")
	}
	n := AWGN{Q: Q, R: R}
	if !IsNil(Q) {
		sizeQ := Q.SymmetricDim()
		process, ok := distmv.NewNormal(make([]float64, sizeQ), Q, src)
		if !ok {
			return nil, fmt.Errorf("process noise covariance Q is not positive definite")
		}
		n.process = process
	}
	if !IsNil(R) {
		sizeR := R.SymmetricDim()
		measurement, ok := distmv.NewNormal(make([]float64, sizeR), R, src)
		if !ok {
			return nil, fmt.Errorf("measurement noise covariance R is not positive definite")
		}
		n.measurement = measurement
	}
	return &n, nil
}

// GaussianNoise creates AWGN noise matching the system's Q and R, drawn from
// the provided source.
func (sys *System) GaussianNoise(src rand.Source) (*AWGN, error) {
	return NewAWGN(sys.q, sys.r, src)
}

// ProcessMatrix implements the Noise interface.
func (n AWGN) ProcessMatrix() mat.Symmetric {
	return n.Q
}

// MeasurementMatrix implements the Noise interface.
func (n AWGN) MeasurementMatrix() mat.Symmetric {
	return n.R
}

// Process implements the Noise interface.
func (n AWGN) Process(k int) *mat.VecDense {
	if n.process == nil {
		return mat.NewVecDense(n.Q.SymmetricDim(), nil)
	}
	r := n.process.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// Measurement implements the Noise interface.
func (n AWGN) Measurement(k int) *mat.VecDense {
	if n.measurement == nil {
		return mat.NewVecDense(n.R.SymmetricDim(), nil)
	}
	r := n.measurement.Rand(nil)
	return mat.NewVecDense(len(r), r)
}

// String implements the Stringer interface.
func (n AWGN) String() string {
	return fmt.Sprintf("AWGN{\nQ=%v\nR=%v}\n", mat.Formatted(n.Q, mat.Prefix("  ")), mat.Formatted(n.R, mat.Prefix("  ")))
}
