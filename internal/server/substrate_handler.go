package server

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/substratix/substratix/internal/domain"
	"github.com/substratix/substratix/internal/features"
)

// SubstrateHandler provides read-only endpoints for substrate state.
//
// Routes:
//   - GET /api/v1/substrate          - nodes with current capacities, links
//   - GET /api/v1/substrate/features - current feature matrix (empty mapped set)
type SubstrateHandler struct {
	server    *Server
	extractor *features.Extractor
	logger    *zap.Logger
}

// NewSubstrateHandler creates a substrate REST handler.
func NewSubstrateHandler(s *Server) *SubstrateHandler {
	return &SubstrateHandler{
		server:    s,
		extractor: features.NewExtractor(),
		logger:    s.logger.Named("substrate"),
	}
}

func (h *SubstrateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Substrate endpoints are read-only")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/substrate")
	rest = strings.Trim(rest, "/")

	switch rest {
	case "":
		h.handleState(w)
	case "features":
		h.handleFeatures(w)
	default:
		writeError(w, http.StatusNotFound, "not_found", "Unknown substrate endpoint")
	}
}

type substrateNodeState struct {
	ID            string  `json:"id"`
	CPUCapacity   float64 `json:"cpu_capacity"`
	SecurityLevel int     `json:"security_level"`
}

type substrateState struct {
	Nodes []substrateNodeState  `json:"nodes"`
	Links []domain.PhysicalLink `json:"links"`
}

func (h *SubstrateHandler) handleState(w http.ResponseWriter) {
	graph := h.server.engine.Graph()

	state := substrateState{
		Nodes: make([]substrateNodeState, graph.NodeCount()),
		Links: make([]domain.PhysicalLink, 0, len(graph.Links())),
	}
	capacities := graph.Capacities()
	for i := range state.Nodes {
		state.Nodes[i] = substrateNodeState{
			ID:            domain.FormatNodeID(i),
			CPUCapacity:   capacities[i],
			SecurityLevel: graph.SecurityLevel(i),
		}
	}
	for _, link := range graph.Links() {
		state.Links = append(state.Links, domain.PhysicalLink{
			Source:    domain.FormatNodeID(link.A),
			Target:    domain.FormatNodeID(link.B),
			Bandwidth: link.Bandwidth,
			Delay:     link.Delay,
		})
	}

	writeJSON(w, http.StatusOK, state)
}

type nodeFeaturesResponse struct {
	Node                string  `json:"node"`
	CPUResources        float64 `json:"cpu_resources"`
	AdjacentBandwidth   float64 `json:"adjacent_bandwidth"`
	DistanceCorrelation float64 `json:"distance_correlation"`
	TimeCorrelation     float64 `json:"time_correlation"`
	Security            float64 `json:"security"`
}

func (h *SubstrateHandler) handleFeatures(w http.ResponseWriter) {
	graph := h.server.engine.Graph()
	feats := h.extractor.Features(graph, nil)

	out := make([]nodeFeaturesResponse, len(feats))
	for i, f := range feats {
		out[i] = nodeFeaturesResponse{
			Node:                domain.FormatNodeID(i),
			CPUResources:        f.CPUResources,
			AdjacentBandwidth:   f.AdjacentBandwidth,
			DistanceCorrelation: f.DistanceCorrelation,
			TimeCorrelation:     f.TimeCorrelation,
			Security:            f.Security,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"features": out})
}
