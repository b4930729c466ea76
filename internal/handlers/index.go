package handlers

import (
	"context"
	"net/http"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/service"
)

// IndexHandler triggers an index rebuild.
type IndexHandler struct {
	indexService service.IndexService
}

// NewIndexHandler creates a new IndexHandler.
func NewIndexHandler(indexService service.IndexService) *IndexHandler {
	return &IndexHandler{indexService: indexService}
}

// IndexResponse acknowledges a rebuild request.
//
// swagger:model IndexResponse
type IndexResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// ServeHTTP starts a rebuild in the background and returns 202 immediately.
// Questions keep using the current generation until the new one is published.
//
// swagger:route POST /api/index index rebuildIndex
//
// responses:
//
//	202: IndexResponse
//	405: ErrorResponse
func (h *IndexHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger.InfoContext(ctx, "re-indexing triggered via API")

	// The rebuild outlives the request but keeps its logger.
	indexCtx := context.WithoutCancel(ctx)
	go func() {
		if _, err := h.indexService.Rebuild(indexCtx); err != nil {
			logger.ErrorContext(indexCtx, "re-indexing completed with errors", "error", err)
			return
		}
		logger.InfoContext(indexCtx, "re-indexing completed successfully")
	}()

	writeJSON(w, http.StatusAccepted, IndexResponse{
		Message: "Indexing started. Check server logs for progress.",
		Status:  "accepted",
	})
}
