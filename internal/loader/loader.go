// Package loader reads the external JSON representations of substrate
// networks and virtual network requests and resolves their string node
// identifiers into dense indices.
package loader

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/substratix/substratix/internal/domain"
	"github.com/substratix/substratix/internal/substrate"
)

// LoadSubstrate reads a substrate network document ({"NP": [...], "LP":
// [...]}) from disk.
func LoadSubstrate(path string) (*domain.SubstrateNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading substrate file: %w", err)
	}

	var network domain.SubstrateNetwork
	if err := json.Unmarshal(data, &network); err != nil {
		return nil, fmt.Errorf("parsing substrate file %s: %w", path, err)
	}
	return &network, nil
}

// LoadVNRs reads an ordered collection of virtual network requests from
// disk. The order is the arrival order.
func LoadVNRs(path string) ([]domain.VirtualNetworkRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading VNR file: %w", err)
	}

	var vnrs []domain.VirtualNetworkRequest
	if err := json.Unmarshal(data, &vnrs); err != nil {
		return nil, fmt.Errorf("parsing VNR file %s: %w", path, err)
	}
	return vnrs, nil
}

// BuildGraph resolves a substrate network's node identifiers into dense
// indices and constructs the substrate graph. Node identifiers must cover
// the indices 0..N-1 exactly once; links referencing unknown nodes fail with
// domain.ErrMalformedTopology.
func BuildGraph(network *domain.SubstrateNetwork) (*substrate.Graph, error) {
	n := len(network.Nodes)
	nodes := make([]domain.PhysicalNode, n)
	seen := make([]bool, n)

	for _, node := range network.Nodes {
		index, err := domain.ParseNodeID(node.ID)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", node.ID, err)
		}
		if index >= n {
			return nil, fmt.Errorf("node %q: index %d exceeds node count %d: %w",
				node.ID, index, n, domain.ErrMalformedTopology)
		}
		if seen[index] {
			return nil, fmt.Errorf("node %q: duplicate index %d: %w",
				node.ID, index, domain.ErrMalformedTopology)
		}
		seen[index] = true
		nodes[index] = node
	}

	links := make([]substrate.Link, len(network.Links))
	for i, link := range network.Links {
		source, err := domain.ParseNodeID(link.Source)
		if err != nil {
			return nil, fmt.Errorf("link %d source %q: %w", i, link.Source, err)
		}
		target, err := domain.ParseNodeID(link.Target)
		if err != nil {
			return nil, fmt.Errorf("link %d target %q: %w", i, link.Target, err)
		}
		links[i] = substrate.Link{
			A:         source,
			B:         target,
			Bandwidth: link.Bandwidth,
			Delay:     link.Delay,
		}
	}

	return substrate.New(nodes, links)
}
