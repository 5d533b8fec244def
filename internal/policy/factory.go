package policy

import (
	"fmt"

	"github.com/substratix/substratix/internal/domain"
)

// Backend names accepted by FromBackend.
const (
	BackendSoftmax = "softmax"
	BackendUniform = "uniform"
)

// FromBackend constructs a scoring policy by backend name.
func FromBackend(backend string, cfg Config) (Policy, error) {
	switch backend {
	case BackendSoftmax:
		return NewSoftmax(cfg), nil
	case BackendUniform:
		return Uniform{}, nil
	default:
		return nil, fmt.Errorf("unknown policy backend %q: %w", backend, domain.ErrInvalidArgument)
	}
}
