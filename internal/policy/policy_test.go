package policy

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/substratix/substratix/internal/domain"
)

// fiveNodeMatrix builds a feature matrix for a 5-node substrate with spread
// feature values.
func fiveNodeMatrix() *mat.Dense {
	return mat.NewDense(5, 5, []float64{
		50, 100, 0, 10, 1,
		60, 80, 1.5, 20, 2,
		70, 120, 2.0, 5, 3,
		55, 90, 0.5, 15, 1,
		65, 110, 1.0, 25, 2,
	})
}

func assertValidDistribution(t *testing.T, scores []float64, n int) {
	t.Helper()
	if len(scores) != n {
		t.Fatalf("score vector length = %d, want %d", len(scores), n)
	}
	sum := 0.0
	for i, s := range scores {
		if s < 0 {
			t.Errorf("score[%d] = %f, want >= 0", i, s)
		}
		sum += s
	}
	if math.Abs(sum-1) > SumTolerance {
		t.Errorf("scores sum to %f, want 1 within %g", sum, SumTolerance)
	}
}

func TestUniform_Score(t *testing.T) {
	scores, err := Uniform{}.Score(fiveNodeMatrix())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	assertValidDistribution(t, scores, 5)
	for i, s := range scores {
		if s != 0.2 {
			t.Errorf("score[%d] = %f, want 0.2", i, s)
		}
	}
}

func TestSoftmax_Score_ValidDistribution(t *testing.T) {
	p := NewSoftmax(DefaultConfig())
	scores, err := p.Score(fiveNodeMatrix())
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	assertValidDistribution(t, scores, 5)
}

func TestSoftmax_Score_PrefersSpareCapacity(t *testing.T) {
	// Only the CPU column varies; with a pure CPU weight the highest
	// capacity node must receive the highest probability.
	m := mat.NewDense(3, 5, []float64{
		10, 100, 1, 5, 2,
		80, 100, 1, 5, 2,
		40, 100, 1, 5, 2,
	})
	p := NewSoftmax(Config{CPUWeight: 1.0, Temperature: 1.0})

	scores, err := p.Score(m)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	assertValidDistribution(t, scores, 3)
	if !(scores[1] > scores[2] && scores[2] > scores[0]) {
		t.Errorf("scores %v not ordered by capacity", scores)
	}
}

func TestSoftmax_Score_ConstantFeaturesYieldUniform(t *testing.T) {
	m := mat.NewDense(4, 5, []float64{
		50, 100, 1, 5, 2,
		50, 100, 1, 5, 2,
		50, 100, 1, 5, 2,
		50, 100, 1, 5, 2,
	})
	scores, err := NewSoftmax(DefaultConfig()).Score(m)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	assertValidDistribution(t, scores, 4)
	for i, s := range scores {
		if math.Abs(s-0.25) > 1e-12 {
			t.Errorf("score[%d] = %f, want 0.25", i, s)
		}
	}
}

func TestSoftmax_Score_RejectsWrongWidth(t *testing.T) {
	m := mat.NewDense(3, 4, nil)
	_, err := NewSoftmax(DefaultConfig()).Score(m)
	if !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		scores  []float64
		n       int
		wantErr bool
	}{
		{"valid distribution", []float64{0.25, 0.25, 0.5}, 3, false},
		{"valid within tolerance", []float64{0.5, 0.5 + 5e-7}, 2, false},
		{"wrong length", []float64{0.5, 0.5}, 3, true},
		{"negative entry", []float64{1.2, -0.2}, 2, true},
		{"sum far from one", []float64{0.3, 0.3}, 2, true},
		{"nan entry", []float64{math.NaN(), 1.0}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.scores, tt.n)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidScoreVector) {
					t.Errorf("got %v, want ErrInvalidScoreVector", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
