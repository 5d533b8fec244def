package domain

// VirtualNode is one node of a virtual network request.
type VirtualNode struct {
	Name      string  `json:"node"`
	CPUReq    float64 `json:"cpu_req"`
	SafetyReq int     `json:"safety_req"`
}

// VirtualLink connects two virtual nodes. Link-level constraints are carried
// through untouched; the mapping engine places nodes only.
type VirtualLink struct {
	Node1        string  `json:"node1"`
	Node2        string  `json:"node2"`
	BandwidthReq float64 `json:"bandwidth_req"`
	DelayReq     float64 `json:"delay_req"`
}

// VirtualNetworkRequest is an ordered set of virtual nodes plus their links.
// The order of VirtualNodes is the allocation order.
type VirtualNetworkRequest struct {
	Index         int           `json:"index"`
	ArrivalTime   float64       `json:"arrival_time"`
	DepartureTime float64       `json:"departure_time"`
	VirtualNodes  []VirtualNode `json:"virtual_nodes"`
	VirtualLinks  []VirtualLink `json:"virtual_links"`
}
