package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatNodeID renders a physical node index as its canonical external
// identifier ("node_<index>").
func FormatNodeID(index int) string {
	return fmt.Sprintf("node_%d", index)
}

// ParseNodeID extracts the zero-based node index from an external physical
// node identifier. The trailing integer segment after the last underscore is
// the canonical index.
func ParseNodeID(id string) (int, error) {
	sep := strings.LastIndex(id, "_")
	if sep < 0 || sep == len(id)-1 {
		return 0, fmt.Errorf("node id %q has no index segment: %w", id, ErrInvalidArgument)
	}
	index, err := strconv.Atoi(id[sep+1:])
	if err != nil {
		return 0, fmt.Errorf("node id %q has non-numeric index segment: %w", id, ErrInvalidArgument)
	}
	if index < 0 {
		return 0, fmt.Errorf("node id %q has negative index: %w", id, ErrInvalidArgument)
	}
	return index, nil
}
