package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"kahani-ai/internal/handlers"
	"kahani-ai/internal/service"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	AskService   service.AskService
	StoryService service.StoryService
	IndexService service.IndexService
	Index        handlers.IndexStatus
	VectorStore  handlers.PointCounter
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	askHandler := handlers.NewAskHandler(deps.AskService)
	storiesHandler := handlers.NewStoriesHandler(deps.StoryService)
	indexHandler := handlers.NewIndexHandler(deps.IndexService)
	healthHandler := handlers.NewHealthHandler(deps.Index, deps.VectorStore)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodPost, "/ask", askHandler)
		r.Method(http.MethodGet, "/stories", storiesHandler)
		r.Method(http.MethodGet, "/stories/*", storiesHandler)
		r.Method(http.MethodPost, "/index", indexHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
