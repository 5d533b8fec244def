// Package substrate owns the physical network's static topology and mutable
// resource state. It determines which physical nodes exist, who neighbors
// whom, and how much CPU capacity each node has left.
package substrate

import (
	"fmt"
	"math"
	"sync"

	"github.com/substratix/substratix/internal/domain"
)

// Unreachable is the distance reported for node pairs with no connecting
// path. Consumers must exclude it from any averaging.
const Unreachable = math.MaxInt

// Link is an undirected substrate edge with its endpoints resolved to dense
// node indices. Bandwidth and delay are static for the session.
type Link struct {
	A         int
	B         int
	Bandwidth float64
	Delay     float64
}

// Graph holds the substrate network. Topology (links, adjacency) is immutable
// after construction; CPU capacities are mutated in place by the mapping
// engine as virtual nodes are committed.
type Graph struct {
	mu         sync.RWMutex
	capacities []float64
	security   []int
	links      []Link
	adjacency  [][]int

	distOnce sync.Once
	allDist  [][]int
}

// New builds a Graph from physical nodes and index-resolved links. It returns
// domain.ErrMalformedTopology if a link references a node index outside
// [0, len(nodes)).
func New(nodes []domain.PhysicalNode, links []Link) (*Graph, error) {
	n := len(nodes)

	g := &Graph{
		capacities: make([]float64, n),
		security:   make([]int, n),
		links:      make([]Link, len(links)),
		adjacency:  make([][]int, n),
	}
	for i, node := range nodes {
		g.capacities[i] = node.CPUCapacity
		g.security[i] = node.SecurityLevel
	}

	for i, link := range links {
		if link.A < 0 || link.A >= n {
			return nil, fmt.Errorf("link %d references node %d (substrate has %d nodes): %w",
				i, link.A, n, domain.ErrMalformedTopology)
		}
		if link.B < 0 || link.B >= n {
			return nil, fmt.Errorf("link %d references node %d (substrate has %d nodes): %w",
				i, link.B, n, domain.ErrMalformedTopology)
		}
		g.links[i] = link
		g.adjacency[link.A] = append(g.adjacency[link.A], link.B)
		g.adjacency[link.B] = append(g.adjacency[link.B], link.A)
	}

	return g, nil
}

// NodeCount returns the number of physical nodes.
func (g *Graph) NodeCount() int {
	return len(g.capacities)
}

// Capacity returns the current CPU capacity of a node.
func (g *Graph) Capacity(i int) float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.capacities[i]
}

// Capacities returns a snapshot of all current CPU capacities, indexed by
// node.
func (g *Graph) Capacities() []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]float64, len(g.capacities))
	copy(out, g.capacities)
	return out
}

// SecurityLevel returns the static security level of a node.
func (g *Graph) SecurityLevel(i int) int {
	return g.security[i]
}

// Links returns a copy of the substrate's link list.
func (g *Graph) Links() []Link {
	out := make([]Link, len(g.links))
	copy(out, g.links)
	return out
}

// Adjacency returns the neighbor indices of a node, in link-insertion order.
// The adjacency is symmetric by construction.
func (g *Graph) Adjacency(i int) []int {
	out := make([]int, len(g.adjacency[i]))
	copy(out, g.adjacency[i])
	return out
}

// ShortestDistances runs a breadth-first traversal from the given node and
// returns hop distances to every node. Distance to self is 0; nodes with no
// path from the start are reported as Unreachable.
func (g *Graph) ShortestDistances(from int) []int {
	n := len(g.capacities)
	dist := make([]int, n)
	for i := range dist {
		dist[i] = Unreachable
	}
	dist[from] = 0

	queue := make([]int, 0, n)
	queue = append(queue, from)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, neighbor := range g.adjacency[current] {
			if dist[neighbor] == Unreachable {
				dist[neighbor] = dist[current] + 1
				queue = append(queue, neighbor)
			}
		}
	}

	return dist
}

// AllDistances returns the all-pairs hop distance matrix. The topology never
// changes after construction, so the matrix is computed once on first use
// and shared by every subsequent feature extraction.
func (g *Graph) AllDistances() [][]int {
	g.distOnce.Do(func() {
		g.allDist = make([][]int, len(g.capacities))
		for i := range g.allDist {
			g.allDist[i] = g.ShortestDistances(i)
		}
	})
	return g.allDist
}

// DeductCapacity subtracts amount from a node's CPU capacity, clamping at
// zero. The new capacity is visible to all subsequent feature extractions.
func (g *Graph) DeductCapacity(i int, amount float64) error {
	if i < 0 || i >= len(g.capacities) {
		return fmt.Errorf("node index %d out of range: %w", i, domain.ErrInvalidArgument)
	}
	if amount < 0 {
		return fmt.Errorf("negative deduction %f: %w", amount, domain.ErrInvalidArgument)
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.capacities[i] -= amount
	if g.capacities[i] < 0 {
		g.capacities[i] = 0
	}
	return nil
}
