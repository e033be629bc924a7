package handler

import (
	"log/slog"
	"net/http"

	llmSvc "promptlab/internal/domain/services/llm"
	"promptlab/internal/httputil"
)

// PromptHandler serves prompt execution
type PromptHandler struct {
	executor llmSvc.ExecutionService
	logger   *slog.Logger
}

// NewPromptHandler creates a new prompt handler
func NewPromptHandler(executor llmSvc.ExecutionService, logger *slog.Logger) *PromptHandler {
	return &PromptHandler{
		executor: executor,
		logger:   logger,
	}
}

// Execute runs one prompt
// POST /api/prompts/execute
func (h *PromptHandler) Execute(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.ExecuteRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondErrorWithExtras(w, http.StatusBadRequest, err.Error(),
			map[string]any{"request_id": httputil.GetRequestID(r)})
		return
	}
	req.UserID = httputil.GetUserID(r)

	result, err := h.executor.Execute(r.Context(), &req)
	if err != nil {
		handleError(w, r, h.logger, err)
		return
	}

	httputil.RespondJSON(w, http.StatusOK, result)
}
