// Package generate produces synthetic substrate networks and virtual network
// request workloads for testing and benchmarking the embedding engine.
package generate

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/substratix/substratix/internal/domain"
)

// SubstrateConfig controls synthetic substrate generation.
type SubstrateConfig struct {
	Nodes          int
	Links          int
	CPUMin, CPUMax int
	SecurityLevels int
	BWMin, BWMax   int
	DelayMin       int
	DelayMax       int
}

// DefaultSubstrateConfig mirrors the reference workload: 100 nodes, 550
// links, CPU and bandwidth U(50,80), delay U(1,50), security U(1,3).
func DefaultSubstrateConfig() SubstrateConfig {
	return SubstrateConfig{
		Nodes:          100,
		Links:          550,
		CPUMin:         50,
		CPUMax:         80,
		SecurityLevels: 3,
		BWMin:          50,
		BWMax:          80,
		DelayMin:       1,
		DelayMax:       50,
	}
}

// VNRConfig controls synthetic VNR generation.
type VNRConfig struct {
	Count           int
	NodesMin        int
	NodesMax        int
	CPUReqMin       int
	CPUReqMax       int
	SafetyLevels    int
	LinkProbability float64
	BWReqMin        int
	BWReqMax        int
	DelayReqMin     int
	DelayReqMax     int
	ArrivalLambda   float64
	DurationMean    float64
}

// DefaultVNRConfig mirrors the reference workload: 2-10 virtual nodes with
// CPU requirement U(1,30), 50% link probability, Poisson(5) arrivals, and
// Exp(10) lifetimes.
func DefaultVNRConfig() VNRConfig {
	return VNRConfig{
		Count:           1000,
		NodesMin:        2,
		NodesMax:        10,
		CPUReqMin:       1,
		CPUReqMax:       30,
		SafetyLevels:    3,
		LinkProbability: 0.5,
		BWReqMin:        1,
		BWReqMax:        30,
		DelayReqMin:     1,
		DelayReqMax:     20,
		ArrivalLambda:   5,
		DurationMean:    10,
	}
}

// Substrate generates a random substrate network with distinct undirected
// links and no self-loops.
func Substrate(cfg SubstrateConfig, rng *rand.Rand) (*domain.SubstrateNetwork, error) {
	maxLinks := cfg.Nodes * (cfg.Nodes - 1) / 2
	if cfg.Links > maxLinks {
		return nil, fmt.Errorf("%d links exceed the %d possible for %d nodes: %w",
			cfg.Links, maxLinks, cfg.Nodes, domain.ErrInvalidArgument)
	}

	nodes := make([]domain.PhysicalNode, cfg.Nodes)
	for i := range nodes {
		nodes[i] = domain.PhysicalNode{
			ID:            domain.FormatNodeID(i),
			CPUCapacity:   float64(uniformInt(rng, cfg.CPUMin, cfg.CPUMax)),
			SecurityLevel: uniformInt(rng, 1, cfg.SecurityLevels),
		}
	}

	links := make([]domain.PhysicalLink, 0, cfg.Links)
	taken := make(map[[2]int]bool, cfg.Links)
	for len(links) < cfg.Links {
		source := rng.Intn(cfg.Nodes)
		target := rng.Intn(cfg.Nodes)
		if source == target {
			continue
		}
		key := [2]int{source, target}
		if source > target {
			key = [2]int{target, source}
		}
		if taken[key] {
			continue
		}
		taken[key] = true
		links = append(links, domain.PhysicalLink{
			Source:    domain.FormatNodeID(source),
			Target:    domain.FormatNodeID(target),
			Bandwidth: float64(uniformInt(rng, cfg.BWMin, cfg.BWMax)),
			Delay:     float64(uniformInt(rng, cfg.DelayMin, cfg.DelayMax)),
		})
	}

	return &domain.SubstrateNetwork{Nodes: nodes, Links: links}, nil
}

// VNRs generates a random workload of virtual network requests. Arrival
// times are Poisson distributed and lifetimes exponential.
func VNRs(cfg VNRConfig, rng *rand.Rand) []domain.VirtualNetworkRequest {
	arrivals := distuv.Poisson{Lambda: cfg.ArrivalLambda, Src: rng}
	durations := distuv.Exponential{Rate: 1 / cfg.DurationMean, Src: rng}

	vnrs := make([]domain.VirtualNetworkRequest, cfg.Count)
	for idx := range vnrs {
		numNodes := uniformInt(rng, cfg.NodesMin, cfg.NodesMax)
		virtualNodes := make([]domain.VirtualNode, numNodes)
		for i := range virtualNodes {
			virtualNodes[i] = domain.VirtualNode{
				Name:      fmt.Sprintf("Virtual_Node_%d", i+1),
				CPUReq:    float64(uniformInt(rng, cfg.CPUReqMin, cfg.CPUReqMax)),
				SafetyReq: uniformInt(rng, 1, cfg.SafetyLevels),
			}
		}

		var virtualLinks []domain.VirtualLink
		for i := 0; i < numNodes; i++ {
			for j := i + 1; j < numNodes; j++ {
				if rng.Float64() >= cfg.LinkProbability {
					continue
				}
				virtualLinks = append(virtualLinks, domain.VirtualLink{
					Node1:        virtualNodes[i].Name,
					Node2:        virtualNodes[j].Name,
					BandwidthReq: float64(uniformInt(rng, cfg.BWReqMin, cfg.BWReqMax)),
					DelayReq:     float64(uniformInt(rng, cfg.DelayReqMin, cfg.DelayReqMax)),
				})
			}
		}

		arrival := arrivals.Rand()
		vnrs[idx] = domain.VirtualNetworkRequest{
			Index:         idx + 1,
			ArrivalTime:   arrival,
			DepartureTime: arrival + durations.Rand(),
			VirtualNodes:  virtualNodes,
			VirtualLinks:  virtualLinks,
		}
	}
	return vnrs
}

// uniformInt draws from the inclusive range [min, max].
func uniformInt(rng *rand.Rand, min, max int) int {
	if max <= min {
		return min
	}
	return min + rng.Intn(max-min+1)
}
