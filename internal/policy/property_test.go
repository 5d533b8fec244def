package policy

import (
	"math"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"gonum.org/v1/gonum/mat"

	"github.com/substratix/substratix/internal/features"
)

// TestScoreContractProperties verifies the policy output contract over
// randomly generated feature matrices: correct length, non-negative entries,
// and a sum of 1 within tolerance.
func TestScoreContractProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50

	properties := gopter.NewProperties(parameters)

	matrixGen := gen.IntRange(1, 40).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gen.SliceOfN(n*features.NumFeatures, gen.Float64Range(0, 1000)).Map(
			func(values []float64) *mat.Dense {
				return mat.NewDense(n, features.NumFeatures, values)
			})
	}, reflect.TypeOf(&mat.Dense{}))

	holdsContract := func(p Policy) func(*mat.Dense) bool {
		return func(m *mat.Dense) bool {
			n, _ := m.Dims()
			scores, err := p.Score(m)
			if err != nil {
				return false
			}
			if len(scores) != n {
				return false
			}
			sum := 0.0
			for _, s := range scores {
				if s < 0 || math.IsNaN(s) {
					return false
				}
				sum += s
			}
			return math.Abs(sum-1) <= SumTolerance
		}
	}

	properties.Property("softmax policy honors the score contract", prop.ForAll(
		holdsContract(NewSoftmax(DefaultConfig())),
		matrixGen,
	))

	properties.Property("uniform policy honors the score contract", prop.ForAll(
		holdsContract(Uniform{}),
		matrixGen,
	))

	properties.TestingRun(t)
}
