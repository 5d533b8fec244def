// Package policy defines the scoring capability used by the mapping engine:
// a feature matrix goes in, a probability distribution over physical nodes
// comes out. The engine never looks inside a policy; any backend that honors
// the output contract can be plugged in.
package policy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/substratix/substratix/internal/domain"
)

// SumTolerance is the allowed deviation of a score vector's sum from 1.
const SumTolerance = 1e-6

// Policy scores physical nodes. The input is the N x features.NumFeatures
// matrix with rows aligned to substrate node indices; the output must be a
// probability vector of length N with non-negative entries summing to 1
// within SumTolerance.
type Policy interface {
	Score(features *mat.Dense) ([]float64, error)
}

// Validate checks a score vector against the policy output contract. A
// violation wraps domain.ErrInvalidScoreVector and indicates a defect in the
// plugged-in policy, not a runtime condition to recover from.
func Validate(scores []float64, n int) error {
	if len(scores) != n {
		return fmt.Errorf("score vector has length %d, want %d: %w",
			len(scores), n, domain.ErrInvalidScoreVector)
	}

	sum := 0.0
	for i, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return fmt.Errorf("score[%d] is %f: %w", i, s, domain.ErrInvalidScoreVector)
		}
		if s < 0 {
			return fmt.Errorf("score[%d] is negative (%f): %w", i, s, domain.ErrInvalidScoreVector)
		}
		sum += s
	}
	if math.Abs(sum-1) > SumTolerance {
		return fmt.Errorf("scores sum to %f, want 1 within %g: %w",
			sum, SumTolerance, domain.ErrInvalidScoreVector)
	}
	return nil
}

// Uniform is the baseline policy: every node gets probability 1/N.
type Uniform struct{}

// Score returns the uniform distribution over all nodes.
func (Uniform) Score(features *mat.Dense) ([]float64, error) {
	n, _ := features.Dims()
	if n == 0 {
		return nil, fmt.Errorf("empty feature matrix: %w", domain.ErrInvalidArgument)
	}
	scores := make([]float64, n)
	for i := range scores {
		scores[i] = 1 / float64(n)
	}
	return scores, nil
}
