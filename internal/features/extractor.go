// Package features derives per-node feature vectors from the substrate
// graph and the set of nodes already mapped in the current session.
package features

import (
	"gonum.org/v1/gonum/mat"

	"github.com/substratix/substratix/internal/substrate"
)

// NumFeatures is the width of every node feature vector.
const NumFeatures = 5

// Feature column indices within a feature matrix.
const (
	ColCPUResources = iota
	ColAdjacentBandwidth
	ColDistanceCorrelation
	ColTimeCorrelation
	ColSecurity
)

// NodeFeatures is the fixed-shape feature record for one physical node.
type NodeFeatures struct {
	// CPUResources is the node's current spare CPU capacity. It reflects
	// every deduction committed so far in the session.
	CPUResources float64

	// AdjacentBandwidth is the total bandwidth of links incident to the
	// node. Static for the session.
	AdjacentBandwidth float64

	// DistanceCorrelation is the average hop distance from the node to the
	// nodes already mapped in this session, excluding the node itself and
	// unreachable nodes. Exactly 0 while nothing is mapped.
	DistanceCorrelation float64

	// TimeCorrelation is the average delay of links incident to the node,
	// or 0 for an isolated node. Static for the session.
	TimeCorrelation float64

	// Security is the node's static security level.
	Security float64
}

// Vector returns the feature values in matrix column order.
func (f NodeFeatures) Vector() []float64 {
	return []float64{
		f.CPUResources,
		f.AdjacentBandwidth,
		f.DistanceCorrelation,
		f.TimeCorrelation,
		f.Security,
	}
}

// Extractor computes node feature vectors. It is stateless: every call reads
// the substrate's current capacities and the caller's mapped set, so
// recomputing with unchanged inputs yields identical output.
type Extractor struct{}

// NewExtractor creates a feature extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Features returns one NodeFeatures per physical node, indexed identically
// to the substrate's node indices.
func (e *Extractor) Features(g *substrate.Graph, mapped []int) []NodeFeatures {
	n := g.NodeCount()

	capacities := g.Capacities()
	bandwidth := make([]float64, n)
	totalDelay := make([]float64, n)
	linkCount := make([]int, n)
	for _, link := range g.Links() {
		bandwidth[link.A] += link.Bandwidth
		bandwidth[link.B] += link.Bandwidth
		totalDelay[link.A] += link.Delay
		totalDelay[link.B] += link.Delay
		linkCount[link.A]++
		linkCount[link.B]++
	}

	distanceCorr := distanceCorrelation(g, mapped)

	out := make([]NodeFeatures, n)
	for i := 0; i < n; i++ {
		timeCorr := 0.0
		if linkCount[i] > 0 {
			timeCorr = totalDelay[i] / float64(linkCount[i])
		}
		out[i] = NodeFeatures{
			CPUResources:        capacities[i],
			AdjacentBandwidth:   bandwidth[i],
			DistanceCorrelation: distanceCorr[i],
			TimeCorrelation:     timeCorr,
			Security:            float64(g.SecurityLevel(i)),
		}
	}
	return out
}

// Matrix returns the N x NumFeatures feature matrix with rows aligned to
// substrate node indices. Row order is significant: scoring policies consume
// the matrix positionally.
func (e *Extractor) Matrix(g *substrate.Graph, mapped []int) *mat.Dense {
	feats := e.Features(g, mapped)
	m := mat.NewDense(len(feats), NumFeatures, nil)
	for i, f := range feats {
		m.SetRow(i, f.Vector())
	}
	return m
}

// distanceCorrelation averages hop distance from each node to the mapped
// set. The topology is static, so distances come from the graph's all-pairs
// cache; only the averaging depends on the mapped set.
func distanceCorrelation(g *substrate.Graph, mapped []int) []float64 {
	n := g.NodeCount()
	out := make([]float64, n)
	if len(mapped) == 0 {
		return out
	}

	dist := g.AllDistances()
	for k := 0; k < n; k++ {
		sum := 0.0
		count := 0
		for _, m := range mapped {
			if m == k || dist[k][m] == substrate.Unreachable {
				continue
			}
			sum += float64(dist[k][m])
			count++
		}
		if count > 0 {
			out[k] = sum / float64(count)
		}
	}
	return out
}
