package policy

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/substratix/substratix/internal/domain"
	"github.com/substratix/substratix/internal/features"
)

// Config holds the weights of the softmax scoring heuristic.
type Config struct {
	// CPUWeight rewards spare CPU capacity.
	CPUWeight float64 `mapstructure:"cpu_weight"`

	// BandwidthWeight rewards total adjacent link bandwidth.
	BandwidthWeight float64 `mapstructure:"bandwidth_weight"`

	// DistanceWeight weights the average hop distance to already-mapped
	// nodes. Negative values prefer nodes close to the mapped set.
	DistanceWeight float64 `mapstructure:"distance_weight"`

	// DelayWeight weights the average incident link delay. Negative values
	// prefer low-latency nodes.
	DelayWeight float64 `mapstructure:"delay_weight"`

	// SecurityWeight rewards higher security levels.
	SecurityWeight float64 `mapstructure:"security_weight"`

	// Temperature scales the logits before the softmax. Higher values
	// flatten the distribution towards uniform.
	Temperature float64 `mapstructure:"temperature"`
}

// DefaultConfig returns the default heuristic weights.
func DefaultConfig() Config {
	return Config{
		CPUWeight:       1.0,
		BandwidthWeight: 0.5,
		DistanceWeight:  -0.5,
		DelayWeight:     -0.25,
		SecurityWeight:  0.25,
		Temperature:     1.0,
	}
}

// Softmax scores nodes with a weighted linear combination of min-max
// normalized features pushed through a softmax. It is the default backend
// standing in for a trained model.
type Softmax struct {
	config Config
}

// NewSoftmax creates a softmax scoring policy.
func NewSoftmax(cfg Config) *Softmax {
	if cfg.Temperature <= 0 {
		cfg.Temperature = 1.0
	}
	return &Softmax{config: cfg}
}

// Score implements Policy.
func (p *Softmax) Score(featureMatrix *mat.Dense) ([]float64, error) {
	n, cols := featureMatrix.Dims()
	if n == 0 {
		return nil, fmt.Errorf("empty feature matrix: %w", domain.ErrInvalidArgument)
	}
	if cols != features.NumFeatures {
		return nil, fmt.Errorf("feature matrix has %d columns, want %d: %w",
			cols, features.NumFeatures, domain.ErrInvalidArgument)
	}

	weights := []float64{
		features.ColCPUResources:        p.config.CPUWeight,
		features.ColAdjacentBandwidth:   p.config.BandwidthWeight,
		features.ColDistanceCorrelation: p.config.DistanceWeight,
		features.ColTimeCorrelation:     p.config.DelayWeight,
		features.ColSecurity:            p.config.SecurityWeight,
	}

	logits := make([]float64, n)
	col := make([]float64, n)
	for j := 0; j < cols; j++ {
		mat.Col(col, j, featureMatrix)
		normalizeColumn(col)
		for i := 0; i < n; i++ {
			logits[i] += weights[j] * col[i]
		}
	}

	return softmax(logits, p.config.Temperature), nil
}

// normalizeColumn rescales values to [0, 1] in place. A constant column
// carries no signal and becomes all zeros.
func normalizeColumn(col []float64) {
	lo, hi := col[0], col[0]
	for _, v := range col[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		for i := range col {
			col[i] = 0
		}
		return
	}
	for i := range col {
		col[i] = (col[i] - lo) / (hi - lo)
	}
}

// softmax converts logits to a probability distribution, subtracting the max
// logit first for numerical stability.
func softmax(logits []float64, temperature float64) []float64 {
	maxLogit := logits[0]
	for _, l := range logits[1:] {
		if l > maxLogit {
			maxLogit = l
		}
	}

	out := make([]float64, len(logits))
	sum := 0.0
	for i, l := range logits {
		out[i] = math.Exp((l - maxLogit) / temperature)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
