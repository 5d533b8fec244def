package embedding

import (
	"time"

	"github.com/substratix/substratix/internal/domain"
)

// EventType identifies a mapping decision event.
type EventType string

const (
	// EventNodeMapped fires when a virtual node is committed to a physical
	// node.
	EventNodeMapped EventType = "NODE_MAPPED"

	// EventNodeUnmapped fires when no physical node is eligible for a
	// virtual node.
	EventNodeUnmapped EventType = "NODE_UNMAPPED"

	// EventSessionCompleted fires once per session after the last virtual
	// node has been processed.
	EventSessionCompleted EventType = "SESSION_COMPLETED"
)

// Event describes one mapping decision. Events replace inline diagnostics:
// observers receive them synchronously, in decision order.
type Event struct {
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
	VNRIndex  int       `json:"vnr_index"`
	Timestamp time.Time `json:"timestamp"`

	// VirtualNode is set for NODE_MAPPED and NODE_UNMAPPED events.
	VirtualNode string `json:"virtual_node,omitempty"`

	// PhysicalNode and Probability are set for NODE_MAPPED events.
	// Probability is the renormalized weight the selected node was drawn
	// with.
	PhysicalNode string  `json:"physical_node,omitempty"`
	Probability  float64 `json:"probability,omitempty"`

	// EligibleCount is the size of the eligible subset for the step.
	EligibleCount int `json:"eligible_count"`

	// Reason is set for NODE_UNMAPPED events.
	Reason domain.UnmapReason `json:"reason,omitempty"`

	// Mapped and Unmapped are set for SESSION_COMPLETED events.
	Mapped   int `json:"mapped,omitempty"`
	Unmapped int `json:"unmapped,omitempty"`
}

// Observer receives mapping decision events. Observers run synchronously on
// the embedding goroutine and must not block.
type Observer func(Event)
