package domain

// PhysicalNode represents one node of the substrate network. Nodes are
// addressed everywhere by their dense zero-based index; the string ID
// ("node_<index>") only appears at the external JSON boundary.
type PhysicalNode struct {
	ID            string  `json:"id"`
	CPUCapacity   float64 `json:"cpu_capacity"`
	SecurityLevel int     `json:"security_level"`
}

// PhysicalLink is an undirected edge between two substrate nodes. Links are
// immutable after load; bandwidth and delay are static properties.
type PhysicalLink struct {
	Source    string  `json:"source"`
	Target    string  `json:"target"`
	Bandwidth float64 `json:"bandwidth"`
	Delay     float64 `json:"delay"`
}

// SubstrateNetwork is the external JSON representation of the substrate.
type SubstrateNetwork struct {
	Nodes []PhysicalNode `json:"NP"`
	Links []PhysicalLink `json:"LP"`
}
