// Package embedding implements the sequential node-mapping engine. One
// session embeds one virtual network request: for each virtual node in
// request order the engine scores all physical nodes, filters out those
// without enough spare CPU, draws a placement from the renormalized
// distribution, and commits the capacity deduction before moving on.
package embedding

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/substratix/substratix/internal/domain"
	"github.com/substratix/substratix/internal/features"
	"github.com/substratix/substratix/internal/observability"
	"github.com/substratix/substratix/internal/policy"
	"github.com/substratix/substratix/internal/substrate"
)

// Engine embeds virtual network requests onto a substrate graph. Sessions
// are strictly sequential: each step's features depend on the capacity
// deductions and mapped-set growth of all prior steps, and the engine
// serializes concurrent callers so only one session mutates the substrate at
// a time.
type Engine struct {
	graph     *substrate.Graph
	extractor *features.Extractor
	policy    policy.Policy
	rng       *rand.Rand
	observer  Observer
	metrics   *observability.Collector
	logger    *zap.Logger

	mu sync.Mutex
}

// New creates a mapping engine. The random source drives the weighted
// placement draw and is injected so tests can force deterministic outcomes;
// observer and metrics may be nil.
func New(
	graph *substrate.Graph,
	pol policy.Policy,
	rng *rand.Rand,
	observer Observer,
	metrics *observability.Collector,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		graph:     graph,
		extractor: features.NewExtractor(),
		policy:    pol,
		rng:       rng,
		observer:  observer,
		metrics:   metrics,
		logger:    logger.With(zap.String("component", "embedding")),
	}
}

// Graph returns the substrate graph the engine embeds onto.
func (e *Engine) Graph() *substrate.Graph {
	return e.graph
}

// Embed runs one embedding session for the given request. Per-virtual-node
// resource exhaustion is recovered locally and reported in the result; a
// scoring policy that violates its output contract aborts the session,
// leaving capacity already committed for prior virtual nodes in place.
func (e *Engine) Embed(ctx context.Context, vnr *domain.VirtualNetworkRequest) (*domain.MappingResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sessionID := uuid.New().String()
	logger := e.logger.With(
		zap.String("session_id", sessionID),
		zap.Int("vnr_index", vnr.Index),
		zap.Int("virtual_nodes", len(vnr.VirtualNodes)),
	)
	logger.Info("Starting embedding session")

	result := &domain.MappingResult{
		SessionID: sessionID,
		VNRIndex:  vnr.Index,
		StartedAt: time.Now(),
	}
	mapped := make([]int, 0, len(vnr.VirtualNodes))

	for _, vnode := range vnr.VirtualNodes {
		stepStart := time.Now()

		selected, prob, eligible, err := e.step(vnode, mapped)
		if err != nil {
			e.countSession(observability.OutcomeAborted)
			logger.Error("Embedding session aborted",
				zap.String("virtual_node", vnode.Name),
				zap.Error(err),
			)
			return nil, fmt.Errorf("mapping %s: %w", vnode.Name, err)
		}

		if e.metrics != nil {
			e.metrics.StepDuration.Observe(time.Since(stepStart).Seconds())
		}

		if selected < 0 {
			result.Unmapped = append(result.Unmapped, domain.UnmappedNode{
				VirtualNode: vnode.Name,
				Reason:      domain.UnmapReasonResourceExhausted,
			})
			if e.metrics != nil {
				e.metrics.NodesUnmapped.Inc()
			}
			logger.Warn("No eligible physical node",
				zap.String("virtual_node", vnode.Name),
				zap.Float64("cpu_req", vnode.CPUReq),
			)
			e.emit(Event{
				Type:        EventNodeUnmapped,
				SessionID:   sessionID,
				VNRIndex:    vnr.Index,
				Timestamp:   time.Now(),
				VirtualNode: vnode.Name,
				Reason:      domain.UnmapReasonResourceExhausted,
			})
			continue
		}

		if err := e.graph.DeductCapacity(selected, vnode.CPUReq); err != nil {
			e.countSession(observability.OutcomeAborted)
			return nil, fmt.Errorf("committing %s to node %d: %w", vnode.Name, selected, err)
		}
		mapped = append(mapped, selected)
		result.Mappings = append(result.Mappings, domain.Mapping{
			VirtualNode:  vnode.Name,
			PhysicalNode: domain.FormatNodeID(selected),
		})

		if e.metrics != nil {
			e.metrics.NodesMapped.Inc()
		}
		logger.Debug("Committed mapping",
			zap.String("virtual_node", vnode.Name),
			zap.Int("physical_node", selected),
			zap.Float64("probability", prob),
			zap.Int("eligible_nodes", eligible),
			zap.Float64("remaining_capacity", e.graph.Capacity(selected)),
		)
		e.emit(Event{
			Type:          EventNodeMapped,
			SessionID:     sessionID,
			VNRIndex:      vnr.Index,
			Timestamp:     time.Now(),
			VirtualNode:   vnode.Name,
			PhysicalNode:  domain.FormatNodeID(selected),
			Probability:   prob,
			EligibleCount: eligible,
		})
	}

	result.Duration = time.Since(result.StartedAt)

	outcome := observability.OutcomeComplete
	if len(result.Unmapped) > 0 {
		outcome = observability.OutcomePartial
	}
	e.countSession(outcome)

	logger.Info("Embedding session completed",
		zap.Int("mapped", len(result.Mappings)),
		zap.Int("unmapped", len(result.Unmapped)),
		zap.Duration("duration", result.Duration),
	)
	e.emit(Event{
		Type:      EventSessionCompleted,
		SessionID: sessionID,
		VNRIndex:  vnr.Index,
		Timestamp: time.Now(),
		Mapped:    len(result.Mappings),
		Unmapped:  len(result.Unmapped),
	})

	return result, nil
}

// step performs the SCORE, FILTER, and SELECT stages for one virtual node.
// It returns the selected physical node index and its renormalized
// probability, or a negative index when no node is eligible.
func (e *Engine) step(vnode domain.VirtualNode, mapped []int) (selected int, prob float64, eligibleCount int, err error) {
	matrix := e.extractor.Matrix(e.graph, mapped)

	scores, err := e.policy.Score(matrix)
	if err != nil {
		return -1, 0, 0, fmt.Errorf("scoring policy: %w", err)
	}
	if err := policy.Validate(scores, e.graph.NodeCount()); err != nil {
		return -1, 0, 0, err
	}

	capacities := e.graph.Capacities()
	eligible := make([]int, 0, len(capacities))
	weights := make([]float64, 0, len(capacities))
	for i, capacity := range capacities {
		if capacity >= vnode.CPUReq {
			eligible = append(eligible, i)
			weights = append(weights, scores[i])
		}
	}
	if len(eligible) == 0 {
		return -1, 0, 0, nil
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	if total > 0 {
		for i := range weights {
			weights[i] /= total
		}
	} else {
		// Every eligible node scored exactly zero; fall back to a uniform
		// draw over the eligible subset.
		for i := range weights {
			weights[i] = 1 / float64(len(weights))
		}
	}

	choice := weightedChoice(e.rng, weights)
	return eligible[choice], weights[choice], len(eligible), nil
}

// weightedChoice draws one index from a normalized weight vector.
func weightedChoice(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	// Floating point slack can leave r just above the final cumulative sum.
	return len(weights) - 1
}

func (e *Engine) countSession(outcome string) {
	if e.metrics != nil {
		e.metrics.Sessions.WithLabelValues(outcome).Inc()
	}
}

func (e *Engine) emit(event Event) {
	if e.observer != nil {
		e.observer(event)
	}
}
