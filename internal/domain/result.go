package domain

import "time"

// UnmapReason explains why a virtual node could not be placed.
type UnmapReason string

const (
	// UnmapReasonResourceExhausted means no physical node had enough spare
	// CPU capacity for the virtual node's requirement.
	UnmapReasonResourceExhausted UnmapReason = "RESOURCE_EXHAUSTED"
)

// Mapping records one committed placement decision.
type Mapping struct {
	VirtualNode  string `json:"virtual_node"`
	PhysicalNode string `json:"mapped_physical_node"`
}

// UnmappedNode records a virtual node the session could not place.
type UnmappedNode struct {
	VirtualNode string      `json:"virtual_node"`
	Reason      UnmapReason `json:"reason"`
}

// MappingResult is the outcome of one embedding session: the committed
// mappings in allocation order plus the virtual nodes left unmapped.
type MappingResult struct {
	SessionID string         `json:"session_id"`
	VNRIndex  int            `json:"vnr_index"`
	Mappings  []Mapping      `json:"mappings"`
	Unmapped  []UnmappedNode `json:"unmapped,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration"`
}

// Complete reports whether every virtual node of the request was placed.
func (r *MappingResult) Complete() bool {
	return len(r.Unmapped) == 0
}

// MappedCount returns the number of committed placements.
func (r *MappingResult) MappedCount() int {
	return len(r.Mappings)
}
