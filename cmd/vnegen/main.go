// Package main generates synthetic substrate networks and VNR workloads.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/rand"

	"github.com/substratix/substratix/internal/generate"
)

func main() {
	nodes := flag.Int("nodes", 100, "Number of physical nodes")
	links := flag.Int("links", 550, "Number of physical links")
	vnrCount := flag.Int("vnrs", 1000, "Number of VNRs to generate")
	seed := flag.Uint64("seed", 1, "Random seed")
	substrateOut := flag.String("substrate-out", "physical_network.json", "Substrate output file")
	vnrsOut := flag.String("vnrs-out", "vnrs.json", "VNR workload output file")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	substrateCfg := generate.DefaultSubstrateConfig()
	substrateCfg.Nodes = *nodes
	substrateCfg.Links = *links

	network, err := generate.Substrate(substrateCfg, rng)
	if err != nil {
		fmt.Fprintln(os.Stderr, "generating substrate:", err)
		os.Exit(1)
	}
	if err := writeJSON(*substrateOut, network); err != nil {
		fmt.Fprintln(os.Stderr, "writing substrate:", err)
		os.Exit(1)
	}

	vnrCfg := generate.DefaultVNRConfig()
	vnrCfg.Count = *vnrCount

	vnrs := generate.VNRs(vnrCfg, rng)
	if err := writeJSON(*vnrsOut, vnrs); err != nil {
		fmt.Fprintln(os.Stderr, "writing VNRs:", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %s (%d nodes, %d links) and %s (%d VNRs)\n",
		*substrateOut, len(network.Nodes), len(network.Links), *vnrsOut, len(vnrs))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
