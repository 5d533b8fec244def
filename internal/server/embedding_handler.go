package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/substratix/substratix/internal/domain"
)

// EmbeddingHandler provides REST endpoints for embedding sessions.
//
// Routes:
//   - POST /api/v1/embeddings        - submit a VNR and run one session
//   - GET  /api/v1/embeddings        - list stored session results
//   - GET  /api/v1/embeddings/{id}   - fetch one session result
type EmbeddingHandler struct {
	server *Server
	logger *zap.Logger
}

// NewEmbeddingHandler creates an embedding REST handler.
func NewEmbeddingHandler(s *Server) *EmbeddingHandler {
	return &EmbeddingHandler{
		server: s,
		logger: s.logger.Named("embeddings"),
	}
}

func (h *EmbeddingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/embeddings")
	rest = strings.Trim(rest, "/")

	switch {
	case rest == "" && r.Method == http.MethodPost:
		h.handleSubmit(w, r)
	case rest == "" && r.Method == http.MethodGet:
		h.handleList(w, r)
	case rest != "" && r.Method == http.MethodGet:
		h.handleGet(w, r, rest)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Unsupported method for this path")
	}
}

func (h *EmbeddingHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var vnr domain.VirtualNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&vnr); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "Request body is not a valid VNR document")
		return
	}
	if len(vnr.VirtualNodes) == 0 {
		writeError(w, http.StatusBadRequest, "empty_vnr", "VNR has no virtual nodes")
		return
	}
	for _, vnode := range vnr.VirtualNodes {
		if vnode.Name == "" {
			writeError(w, http.StatusBadRequest, "unnamed_virtual_node", "Every virtual node needs a name")
			return
		}
		if vnode.CPUReq <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_cpu_req",
				"Virtual node "+vnode.Name+" has a non-positive CPU requirement")
			return
		}
	}

	result, err := h.server.engine.Embed(r.Context(), &vnr)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidScoreVector) {
			h.logger.Error("Scoring policy violated its contract", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "invalid_score_vector", err.Error())
			return
		}
		h.logger.Error("Embedding session failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "embedding_failed", err.Error())
		return
	}

	if _, err := h.server.results.Create(r.Context(), result); err != nil {
		h.logger.Warn("Failed to store session result", zap.Error(err))
	}
	h.server.updateSubstrateGauges()

	writeJSON(w, http.StatusCreated, result)
}

func (h *EmbeddingHandler) handleList(w http.ResponseWriter, r *http.Request) {
	results, err := h.server.results.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"embeddings": results})
}

func (h *EmbeddingHandler) handleGet(w http.ResponseWriter, r *http.Request, sessionID string) {
	result, err := h.server.results.Get(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not_found", "No session with id "+sessionID)
			return
		}
		writeError(w, http.StatusInternalServerError, "get_failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}
