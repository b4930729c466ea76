package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/indexer"
)

// IndexStatus reports the published index generation.
type IndexStatus interface {
	Current() *indexer.Generation
}

// PointCounter counts the points of a vector collection.
type PointCounter interface {
	Count(ctx context.Context, collection string) (int, error)
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	index              IndexStatus
	vectorStore        PointCounter
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(index IndexStatus, vectorStore PointCounter) *HealthHandler {
	return &HealthHandler{
		index:              index,
		vectorStore:        vectorStore,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy", "degraded", or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Published index generation, if any
	Index *IndexInfo `json:"index,omitempty"`

	// List of issues (only present if status is degraded or unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// IndexInfo describes the published index generation.
type IndexInfo struct {
	Collection string `json:"collection"`
	Stories    int    `json:"stories"`
	Chunks     int    `json:"chunks"`
	BuiltAt    string `json:"built_at"`
}

// ServeHTTP handles HTTP requests for health checks.
// Returns 200 OK if healthy, 503 Service Unavailable if degraded or unhealthy.
//
// swagger:route GET /api/health health healthCheck
//
// responses:
//
//	200: HealthResponse
//	503: HealthResponse
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string
	status := "healthy"

	gen := h.index.Current()
	var info *IndexInfo
	if gen == nil {
		// Not built yet; the first question builds it.
		checks["index"] = "not_built"
		issues = append(issues, "index_not_built")
		status = "degraded"
	} else {
		checks["index"] = "ok"
		info = &IndexInfo{
			Collection: gen.Collection,
			Stories:    gen.Stats.DocsProcessed,
			Chunks:     gen.Stats.ChunksEmbedded,
			BuiltAt:    gen.BuiltAt.UTC().Format(time.RFC3339),
		}

		if h.checkVectorStore(checkCtx, logger, gen.Collection) {
			checks["vector_store"] = "ok"
		} else {
			checks["vector_store"] = "error"
			issues = append(issues, "vector_store_unavailable")
			status = "unhealthy"
		}
	}

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Index:     info,
		Issues:    issues,
	})
}

// checkVectorStore checks that the published collection is reachable.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger, collection string) bool {
	if _, err := h.vectorStore.Count(ctx, collection); err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "collection", collection, "error", err)
		return false
	}
	return true
}
