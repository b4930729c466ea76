package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/service"
	"kahani-ai/internal/story"
)

// StoriesHandler serves the story catalogue.
// Without an id path parameter it lists stories; with one it returns the full story.
type StoriesHandler struct {
	storyService service.StoryService
	validate     *validator.Validate
}

// NewStoriesHandler creates a new StoriesHandler.
func NewStoriesHandler(storyService service.StoryService) *StoriesHandler {
	return &StoriesHandler{
		storyService: storyService,
		validate:     newValidator(),
	}
}

// StoryListQuery holds the listing filters.
type StoryListQuery struct {
	AgeGroup string `query:"age_group" validate:"max=16"`
	Type     string `query:"type" validate:"omitempty,oneof=story poem"`
}

// StoryListResponse is the catalogue listing.
//
// swagger:model StoryListResponse
type StoryListResponse struct {
	Stories []story.Listing `json:"stories"`
	Count   int             `json:"count"`
}

// ServeHTTP handles GET /api/stories and GET /api/stories/{id}.
// Ids contain a slash ("poems/chanda"), so the id is the route's wildcard.
func (h *StoriesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	if id := strings.Trim(chi.URLParam(r, "*"), "/"); id != "" {
		h.get(w, r, id)
		return
	}
	h.list(w, r)
}

func (h *StoriesHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q := StoryListQuery{
		AgeGroup: strings.TrimSpace(r.URL.Query().Get("age_group")),
		Type:     strings.ToLower(strings.TrimSpace(r.URL.Query().Get("type"))),
	}
	if err := h.validate.Struct(q); err != nil {
		contextutil.LoggerFromContext(ctx).WarnContext(ctx, "invalid story filter", "error", err)
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	listings, err := h.storyService.List(ctx, service.StoryFilter{AgeGroup: q.AgeGroup, Type: q.Type})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to list stories")
		return
	}

	writeJSON(w, http.StatusOK, StoryListResponse{Stories: listings, Count: len(listings)})
}

func (h *StoriesHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	ctx := r.Context()

	doc, err := h.storyService.Get(ctx, id)
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to get story")
		return
	}

	writeJSON(w, http.StatusOK, doc)
}
