package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"kahani-ai/internal/contextutil"
	"kahani-ai/internal/rag"
	"kahani-ai/internal/service"
)

// AskHandler handles HTTP requests for story questions.
type AskHandler struct {
	askService service.AskService
	validate   *validator.Validate
}

// NewAskHandler creates a new AskHandler.
func NewAskHandler(askService service.AskService) *AskHandler {
	return &AskHandler{
		askService: askService,
		validate:   newValidator(),
	}
}

// AskRequest represents the HTTP request payload for a story question.
//
// swagger:model AskRequest
type AskRequest struct {
	// The question, in Urdu.
	// required: true
	Question string `json:"question" validate:"required,max=2000"`

	// Story id such as "root/zakhmi-parinda". Loose forms like "zakhmi_parinda" are accepted.
	StoryID string `json:"story_id" validate:"max=512"`
}

// ServeHTTP handles HTTP requests for story questions.
//
// swagger:route POST /api/ask ask askQuestion
//
// # Answer a question about a story
//
// Benchmark and keyword questions are answered from story metadata; other
// questions are answered from retrieved story text.
//
// responses:
//
//	200: Answer
//	400: ErrorResponse
//	404: Answer
//	422: Answer
//	500: Answer
func (h *AskHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		logger.WarnContext(ctx, "ask request failed validation", "error", err)
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	answer, err := h.askService.Ask(ctx, service.AskRequest{
		Question: req.Question,
		StoryID:  req.StoryID,
	})
	if err != nil {
		handleServiceError(w, ctx, err, "Failed to answer question")
		return
	}

	writeJSON(w, statusForAnswer(answer), answer)
}

// statusForAnswer maps an answer's failure reason to an HTTP status.
func statusForAnswer(answer rag.Answer) int {
	if answer.Success {
		return http.StatusOK
	}
	switch answer.Reason {
	case rag.ReasonNotFound, rag.ReasonNoContext:
		return http.StatusNotFound
	case rag.ReasonInvalidResponse, rag.ReasonTokenBudgetExceeded:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
