package kalman

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Error kinds surfaced by the toolkit. All of them abort the call in which
// they occur: either the full requested sequence is produced or the
// operation fails as a whole. Match with errors.Is.
var (
	// ErrShapeMismatch indicates inconsistent matrix or vector dimensions,
	// either at construction or at call time.
	ErrShapeMismatch = errors.New("dimensions must agree")
	// ErrSingularInnovation indicates that the innovation covariance
	// S = H*P*H' + R could not be factorized during a filter update.
	ErrSingularInnovation = errors.New("innovation covariance is singular")
	// ErrSingularTransition indicates that the state transition matrix F is
	// not invertible, which backward reconstruction requires.
	ErrSingularTransition = errors.New("state transition matrix is singular")
	// ErrInvalidHorizon indicates a non-positive step count where a positive
	// one is required.
	ErrInvalidHorizon = errors.New("horizon must be positive")
	// ErrNumericInstability indicates that a computation produced NaN or Inf
	// values, typically from an ill-conditioned model.
	ErrNumericInstability = errors.New("numeric instability detected")
)

// DimensionAgreement defines how two matrices' dimensions should agree.
type DimensionAgreement uint8

const (
	rows2cols DimensionAgreement = iota + 1
	cols2rows
	cols2cols
	rows2rows
	rowsAndcols
)

// checkMatDims checks the matrix dimensions match provided a DimensionAgreement.
// Returns an error wrapping ErrShapeMismatch if not.
func checkMatDims(m1, m2 mat.Matrix, name1, name2 string, method DimensionAgreement) error {
	r1, c1 := m1.Dims()
	r2, c2 := m2.Dims()
	switch method {
	case rows2cols:
		if r1 != c2 {
			return fmt.Errorf("%w: %s(%dx...) %s(...x%d)", ErrShapeMismatch, name1, r1, name2, c2)
		}
	case cols2rows:
		if c1 != r2 {
			return fmt.Errorf("%w: %s(...x%d) %s(%dx...)", ErrShapeMismatch, name1, c1, name2, r2)
		}
	case cols2cols:
		if c1 != c2 {
			return fmt.Errorf("%w: %s(...x%d) %s(...x%d)", ErrShapeMismatch, name1, c1, name2, c2)
		}
	case rows2rows:
		if r1 != r2 {
			return fmt.Errorf("%w: %s(%dx...) %s(%dx...)", ErrShapeMismatch, name1, r1, name2, r2)
		}
	case rowsAndcols:
		if c1 != c2 || r1 != r2 {
			return fmt.Errorf("%w: %s(%dx%d) %s(%dx%d)", ErrShapeMismatch, name1, r1, c1, name2, r2, c2)
		}
	}
	return nil
}
