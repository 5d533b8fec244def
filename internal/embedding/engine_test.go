package embedding

import (
	"context"
	"errors"
	"math/rand"
	"testing"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/substratix/substratix/internal/domain"
	"github.com/substratix/substratix/internal/policy"
	"github.com/substratix/substratix/internal/substrate"
)

// fakePolicy returns a fixed score vector (or error) regardless of features.
type fakePolicy struct {
	scores []float64
	err    error
}

func (f *fakePolicy) Score(features *mat.Dense) ([]float64, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scores, nil
}

func newTestGraph(t *testing.T, capacities ...float64) *substrate.Graph {
	t.Helper()
	nodes := make([]domain.PhysicalNode, len(capacities))
	for i, c := range capacities {
		nodes[i] = domain.PhysicalNode{CPUCapacity: c, SecurityLevel: 1}
	}
	var links []substrate.Link
	for i := 0; i+1 < len(capacities); i++ {
		links = append(links, substrate.Link{A: i, B: i + 1, Bandwidth: 10, Delay: 1})
	}
	g, err := substrate.New(nodes, links)
	if err != nil {
		t.Fatalf("substrate.New: %v", err)
	}
	return g
}

func newTestEngine(g *substrate.Graph, pol policy.Policy, seed int64, observer Observer) *Engine {
	return New(g, pol, rand.New(rand.NewSource(seed)), observer, nil, zap.NewNop())
}

func singleNodeVNR(name string, cpuReq float64) *domain.VirtualNetworkRequest {
	return &domain.VirtualNetworkRequest{
		Index: 1,
		VirtualNodes: []domain.VirtualNode{
			{Name: name, CPUReq: cpuReq, SafetyReq: 1},
		},
	}
}

func TestEngine_Embed_NeverSelectsIneligibleNode(t *testing.T) {
	// Capacities [10, 5, 20] with cpu_req 8: only nodes 0 and 2 are
	// eligible, whatever the draw.
	for seed := int64(0); seed < 25; seed++ {
		g := newTestGraph(t, 10, 5, 20)
		e := newTestEngine(g, policy.Uniform{}, seed, nil)

		result, err := e.Embed(context.Background(), singleNodeVNR("Virtual_Node_1", 8))
		if err != nil {
			t.Fatalf("seed %d: Embed: %v", seed, err)
		}
		if len(result.Mappings) != 1 {
			t.Fatalf("seed %d: mapped %d nodes, want 1", seed, len(result.Mappings))
		}
		if got := result.Mappings[0].PhysicalNode; got == "node_1" {
			t.Errorf("seed %d: selected ineligible node_1", seed)
		}
	}
}

func TestEngine_Embed_CommitDeductsCapacity(t *testing.T) {
	g := newTestGraph(t, 10)
	e := newTestEngine(g, policy.Uniform{}, 1, nil)

	result, err := e.Embed(context.Background(), singleNodeVNR("Virtual_Node_1", 8))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if result.Mappings[0].PhysicalNode != "node_0" {
		t.Fatalf("mapped to %s, want node_0", result.Mappings[0].PhysicalNode)
	}
	if got := g.Capacity(0); got != 2 {
		t.Errorf("capacity after commit = %f, want 2", got)
	}
}

func TestEngine_Embed_ResourceExhaustionIsNonFatal(t *testing.T) {
	g := newTestGraph(t, 10, 12)
	e := newTestEngine(g, policy.Uniform{}, 1, nil)

	vnr := &domain.VirtualNetworkRequest{
		Index: 7,
		VirtualNodes: []domain.VirtualNode{
			{Name: "Virtual_Node_1", CPUReq: 50}, // nothing fits
			{Name: "Virtual_Node_2", CPUReq: 5},  // still processed
		},
	}

	result, err := e.Embed(context.Background(), vnr)
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(result.Unmapped) != 1 {
		t.Fatalf("unmapped = %v, want one entry", result.Unmapped)
	}
	if result.Unmapped[0].VirtualNode != "Virtual_Node_1" {
		t.Errorf("unmapped node = %s, want Virtual_Node_1", result.Unmapped[0].VirtualNode)
	}
	if result.Unmapped[0].Reason != domain.UnmapReasonResourceExhausted {
		t.Errorf("reason = %s, want %s", result.Unmapped[0].Reason, domain.UnmapReasonResourceExhausted)
	}
	if len(result.Mappings) != 1 || result.Mappings[0].VirtualNode != "Virtual_Node_2" {
		t.Errorf("mappings = %v, want Virtual_Node_2 mapped", result.Mappings)
	}
	if result.Complete() {
		t.Error("result reported complete despite unmapped node")
	}
}

func TestEngine_Embed_InvalidScoreVectorAborts(t *testing.T) {
	tests := []struct {
		name   string
		scores []float64
	}{
		{"wrong length", []float64{0.5, 0.5}},
		{"negative entry", []float64{1.5, -0.25, -0.25}},
		{"does not sum to one", []float64{0.2, 0.2, 0.2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestGraph(t, 10, 10, 10)
			e := newTestEngine(g, &fakePolicy{scores: tt.scores}, 1, nil)

			_, err := e.Embed(context.Background(), singleNodeVNR("Virtual_Node_1", 5))
			if !errors.Is(err, domain.ErrInvalidScoreVector) {
				t.Errorf("got %v, want ErrInvalidScoreVector", err)
			}
		})
	}
}

func TestEngine_Embed_AbortPreservesCommittedState(t *testing.T) {
	g := newTestGraph(t, 10, 10)

	// First virtual node maps fine; the policy then breaks its contract.
	calls := 0
	pol := policyFunc(func(features *mat.Dense) ([]float64, error) {
		calls++
		if calls == 1 {
			return []float64{1, 0}, nil
		}
		return []float64{0.3, 0.3}, nil
	})
	e := newTestEngine(g, pol, 1, nil)

	vnr := &domain.VirtualNetworkRequest{
		VirtualNodes: []domain.VirtualNode{
			{Name: "Virtual_Node_1", CPUReq: 4},
			{Name: "Virtual_Node_2", CPUReq: 4},
		},
	}

	_, err := e.Embed(context.Background(), vnr)
	if !errors.Is(err, domain.ErrInvalidScoreVector) {
		t.Fatalf("got %v, want ErrInvalidScoreVector", err)
	}
	// The first commit's deduction stays in place.
	if got := g.Capacity(0); got != 6 {
		t.Errorf("capacity of node 0 = %f, want 6", got)
	}
}

// policyFunc adapts a function to the policy.Policy interface.
type policyFunc func(features *mat.Dense) ([]float64, error)

func (f policyFunc) Score(features *mat.Dense) ([]float64, error) {
	return f(features)
}

func TestEngine_Embed_ZeroEligibleMassFallsBackToUniform(t *testing.T) {
	// All probability mass sits on the ineligible node 0; the eligible
	// subset {1, 2} scores zero and the engine must still place the node.
	g := newTestGraph(t, 4, 20, 20)
	e := newTestEngine(g, &fakePolicy{scores: []float64{1, 0, 0}}, 3, nil)

	result, err := e.Embed(context.Background(), singleNodeVNR("Virtual_Node_1", 10))
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(result.Mappings) != 1 {
		t.Fatalf("mapped %d, want 1", len(result.Mappings))
	}
	if got := result.Mappings[0].PhysicalNode; got != "node_1" && got != "node_2" {
		t.Errorf("mapped to %s, want node_1 or node_2", got)
	}
}

func TestEngine_Embed_DeterministicWithSeed(t *testing.T) {
	vnr := &domain.VirtualNetworkRequest{
		VirtualNodes: []domain.VirtualNode{
			{Name: "Virtual_Node_1", CPUReq: 7},
			{Name: "Virtual_Node_2", CPUReq: 16},
			{Name: "Virtual_Node_3", CPUReq: 9},
		},
	}

	run := func() *domain.MappingResult {
		g := newTestGraph(t, 50, 60, 70, 80)
		e := newTestEngine(g, policy.NewSoftmax(policy.DefaultConfig()), 42, nil)
		result, err := e.Embed(context.Background(), vnr)
		if err != nil {
			t.Fatalf("Embed: %v", err)
		}
		return result
	}

	first := run()
	second := run()
	if len(first.Mappings) != len(second.Mappings) {
		t.Fatalf("mapping counts differ: %d vs %d", len(first.Mappings), len(second.Mappings))
	}
	for i := range first.Mappings {
		if first.Mappings[i] != second.Mappings[i] {
			t.Errorf("mapping %d differs: %+v vs %+v", i, first.Mappings[i], second.Mappings[i])
		}
	}
}

func TestEngine_Embed_EmitsEventsInDecisionOrder(t *testing.T) {
	g := newTestGraph(t, 30, 30)
	var events []Event
	e := newTestEngine(g, policy.Uniform{}, 5, func(ev Event) {
		events = append(events, ev)
	})

	vnr := &domain.VirtualNetworkRequest{
		Index: 3,
		VirtualNodes: []domain.VirtualNode{
			{Name: "Virtual_Node_1", CPUReq: 10},
			{Name: "Virtual_Node_2", CPUReq: 99},
		},
	}
	if _, err := e.Embed(context.Background(), vnr); err != nil {
		t.Fatalf("Embed: %v", err)
	}

	wantTypes := []EventType{EventNodeMapped, EventNodeUnmapped, EventSessionCompleted}
	if len(events) != len(wantTypes) {
		t.Fatalf("got %d events, want %d", len(events), len(wantTypes))
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d type = %s, want %s", i, events[i].Type, want)
		}
		if events[i].VNRIndex != 3 {
			t.Errorf("event %d vnr_index = %d, want 3", i, events[i].VNRIndex)
		}
		if events[i].SessionID == "" {
			t.Errorf("event %d has empty session id", i)
		}
	}
	final := events[len(events)-1]
	if final.Mapped != 1 || final.Unmapped != 1 {
		t.Errorf("completion event mapped/unmapped = %d/%d, want 1/1", final.Mapped, final.Unmapped)
	}
}

func TestWeightedChoice_RespectsWeights(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	weights := []float64{0, 1, 0}
	for i := 0; i < 100; i++ {
		if got := weightedChoice(rng, weights); got != 1 {
			t.Fatalf("weightedChoice = %d, want 1", got)
		}
	}
}
