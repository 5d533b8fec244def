// Package memory provides in-memory repository implementations. Results live
// for the lifetime of the process only; embedding history is not persisted.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/substratix/substratix/internal/domain"
)

// EmbeddingRepository stores embedding session results keyed by session ID.
type EmbeddingRepository struct {
	mu    sync.RWMutex
	data  map[string]*domain.MappingResult
	order []string
}

// NewEmbeddingRepository creates an empty in-memory result store.
func NewEmbeddingRepository() *EmbeddingRepository {
	return &EmbeddingRepository{
		data: make(map[string]*domain.MappingResult),
	}
}

// Create stores a session result.
func (r *EmbeddingRepository) Create(ctx context.Context, result *domain.MappingResult) (*domain.MappingResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if result.SessionID == "" {
		result.SessionID = uuid.New().String()
	}
	if _, exists := r.data[result.SessionID]; exists {
		return nil, domain.ErrInvalidArgument
	}

	stored := cloneResult(result)
	r.data[stored.SessionID] = stored
	r.order = append(r.order, stored.SessionID)

	return cloneResult(stored), nil
}

// Get retrieves a session result by ID.
func (r *EmbeddingRepository) Get(ctx context.Context, sessionID string) (*domain.MappingResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result, ok := r.data[sessionID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneResult(result), nil
}

// List returns all stored results in insertion order.
func (r *EmbeddingRepository) List(ctx context.Context) ([]*domain.MappingResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.MappingResult, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneResult(r.data[id]))
	}
	return out, nil
}

// cloneResult deep-copies a result so callers cannot mutate stored state.
func cloneResult(result *domain.MappingResult) *domain.MappingResult {
	clone := *result
	clone.Mappings = make([]domain.Mapping, len(result.Mappings))
	copy(clone.Mappings, result.Mappings)
	if result.Unmapped != nil {
		clone.Unmapped = make([]domain.UnmappedNode, len(result.Unmapped))
		copy(clone.Unmapped, result.Unmapped)
	}
	return &clone
}
