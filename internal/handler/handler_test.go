package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"promptlab/internal/capabilities"
	"promptlab/internal/domain"
	llmModels "promptlab/internal/domain/models/llm"
	llmSvc "promptlab/internal/domain/services/llm"
	"promptlab/internal/httputil"
	llmService "promptlab/internal/service/llm"
	"promptlab/internal/service/llm/conversation"
	"promptlab/internal/service/ratelimit"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// withCaller mimics the request id and identity middleware
func withCaller(r *http.Request, userID string) *http.Request {
	return httputil.WithUserID(httputil.WithRequestID(r, "req-1"), userID)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

type fakeExecutor struct {
	got    *llmSvc.ExecuteRequest
	result *llmSvc.ExecuteResult
	err    error
}

func (f *fakeExecutor) Execute(ctx context.Context, req *llmSvc.ExecuteRequest) (*llmSvc.ExecuteResult, error) {
	f.got = req
	return f.result, f.err
}

func TestPromptHandler_Execute(t *testing.T) {
	exec := &fakeExecutor{result: &llmSvc.ExecuteResult{
		PromptID:       "p1",
		ConversationID: "c1",
		Content:        "4",
		Provider:       "gemini",
	}}
	h := NewPromptHandler(exec, testLogger())

	body := `{"prompt":"What is 2+2?","model":"gemini-1.5-flash","temperature":0.2}`
	req := withCaller(httptest.NewRequest(http.MethodPost, "/api/prompts/execute", strings.NewReader(body)), "alice")
	rec := httptest.NewRecorder()
	h.Execute(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if exec.got.UserID != "alice" || exec.got.Prompt != "What is 2+2?" || *exec.got.Model != "gemini-1.5-flash" {
		t.Errorf("request = %+v", exec.got)
	}
	got := decode(t, rec)
	if got["content"] != "4" || got["conversation_id"] != "c1" {
		t.Errorf("body = %v", got)
	}
}

func TestPromptHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		check      func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]any)
	}{
		{
			name:       "validation",
			err:        domain.NewValidationError("prompt: cannot be blank"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "not found",
			err:        &domain.NotFoundError{Message: "conversation not found"},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "rate limited",
			err:        &domain.RateLimitError{Key: "alice", Remaining: 0, RetryAfter: 1500 * time.Millisecond},
			wantStatus: http.StatusTooManyRequests,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]any) {
				if rec.Header().Get("Retry-After") != "2" {
					t.Errorf("Retry-After = %q, want 2", rec.Header().Get("Retry-After"))
				}
				if body["retry_after"] != float64(2) || body["remaining"] != float64(0) {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "provider failure",
			err:        &domain.ProviderError{Provider: "openai", Model: "gpt-4o", Message: "upstream returned status 503"},
			wantStatus: http.StatusBadGateway,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]any) {
				if body["detail"] != "upstream returned status 503" || body["provider"] != "openai" {
					t.Errorf("body = %v", body)
				}
			},
		},
		{
			name:       "configuration",
			err:        &domain.ConfigurationError{Message: `no provider adapter registered for model "x"`},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unexpected error is hidden",
			err:        errors.New("create prompt: disk I/O error"),
			wantStatus: http.StatusInternalServerError,
			check: func(t *testing.T, rec *httptest.ResponseRecorder, body map[string]any) {
				if body["detail"] != "internal server error" {
					t.Errorf("detail = %v", body["detail"])
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewPromptHandler(&fakeExecutor{err: tt.err}, testLogger())
			req := withCaller(httptest.NewRequest(http.MethodPost, "/api/prompts/execute",
				strings.NewReader(`{"prompt":"hi"}`)), "alice")
			rec := httptest.NewRecorder()
			h.Execute(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Errorf("Content-Type = %q", ct)
			}
			body := decode(t, rec)
			if body["request_id"] != "req-1" {
				t.Errorf("request_id = %v", body["request_id"])
			}
			if tt.check != nil {
				tt.check(t, rec, body)
			}
		})
	}
}

func TestPromptHandler_BadBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", "prompt=hi"},
		{"unknown field", `{"prompt":"hi","temprature":1}`},
		{"trailing data", `{"prompt":"hi"} {"prompt":"again"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &fakeExecutor{}
			h := NewPromptHandler(exec, testLogger())
			req := withCaller(httptest.NewRequest(http.MethodPost, "/api/prompts/execute", strings.NewReader(tt.body)), "alice")
			rec := httptest.NewRecorder()
			h.Execute(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			if exec.got != nil {
				t.Error("executor should not be called")
			}
		})
	}
}

type fakeHistoryReader struct {
	history *conversation.ConversationHistory
	err     error
	userID  string
}

func (f *fakeHistoryReader) GetConversationHistory(ctx context.Context, conversationID, userID string) (*conversation.ConversationHistory, error) {
	f.userID = userID
	return f.history, f.err
}

func TestConversationHandler_GetHistory(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	reader := &fakeHistoryReader{history: &conversation.ConversationHistory{
		Conversation: &llmModels.Conversation{ID: "c1", UserID: "alice", Title: "What is 2+2?", CreatedAt: now, UpdatedAt: now},
		Exchanges: []llmModels.PromptWithResponse{
			{
				Prompt:   llmModels.Prompt{ID: "p1", Content: "What is 2+2?", CreatedAt: now},
				Response: &llmModels.Response{ID: "r1", Content: "4", Provider: "gemini", Model: "gemini-1.5-flash", CreatedAt: now},
			},
			{Prompt: llmModels.Prompt{ID: "p2", Content: "pending", CreatedAt: now}},
		},
	}}
	h := NewConversationHandler(reader, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations/{id}/history", h.GetHistory)

	req := withCaller(httptest.NewRequest(http.MethodGet, "/api/conversations/c1/history", nil), "alice")
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if reader.userID != "alice" {
		t.Errorf("userID = %q", reader.userID)
	}

	var got historyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ID != "c1" || len(got.Exchanges) != 2 {
		t.Fatalf("got %+v", got)
	}
	if got.Exchanges[0].Response == nil || *got.Exchanges[0].Response != "4" {
		t.Errorf("first exchange = %+v", got.Exchanges[0])
	}
	if got.Exchanges[1].Response != nil {
		t.Errorf("unanswered prompt has response %q", *got.Exchanges[1].Response)
	}
}

func TestConversationHandler_NotFound(t *testing.T) {
	reader := &fakeHistoryReader{err: &domain.NotFoundError{Message: "conversation not found"}}
	h := NewConversationHandler(reader, testLogger())

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/conversations/{id}/history", h.GetHistory)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, withCaller(httptest.NewRequest(http.MethodGet, "/api/conversations/nope/history", nil), "bob"))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestRateLimitHandler_GetStatus(t *testing.T) {
	limiter := ratelimit.NewLimiter(ratelimit.Config{Enabled: true, PerMinute: 2, PerHour: 100})
	limiter.AdmitAndRecord("alice")
	limiter.AdmitAndRecord("alice")
	h := NewRateLimitHandler(limiter)

	rec := httptest.NewRecorder()
	h.GetStatus(rec, withCaller(httptest.NewRequest(http.MethodGet, "/api/rate-limit", nil), "alice"))

	body := decode(t, rec)
	if body["enabled"] != true || body["limit_per_minute"] != float64(2) || body["remaining"] != float64(0) {
		t.Errorf("body = %v", body)
	}
	if retry, _ := body["retry_after"].(float64); retry <= 0 || retry > 60 {
		t.Errorf("retry_after = %v", body["retry_after"])
	}

	rec = httptest.NewRecorder()
	h.GetStatus(rec, withCaller(httptest.NewRequest(http.MethodGet, "/api/rate-limit", nil), "bob"))
	if body := decode(t, rec); body["remaining"] != float64(2) {
		t.Errorf("bob remaining = %v", body["remaining"])
	}
}

type fakeChecker struct{}

func (fakeChecker) Availability(ctx context.Context, timeout time.Duration) []llmService.ProviderStatus {
	return []llmService.ProviderStatus{
		{Provider: llmModels.ProviderGemini, DisplayName: "Google Gemini", Available: true},
		{Provider: llmModels.ProviderLorem, DisplayName: "Lorem", Available: false},
	}
}

func TestProvidersHandler_ListProviders(t *testing.T) {
	registry, err := capabilities.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	h := NewProvidersHandler(fakeChecker{}, registry, time.Second, testLogger())

	rec := httptest.NewRecorder()
	h.ListProviders(rec, httptest.NewRequest(http.MethodGet, "/api/providers", nil))

	var got struct {
		Providers []ProviderResponse `json:"providers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Providers) != 2 {
		t.Fatalf("providers = %+v", got.Providers)
	}
	gemini := got.Providers[0]
	if gemini.ID != "gemini" || !gemini.Available || len(gemini.Models) == 0 {
		t.Errorf("gemini = %+v", gemini)
	}
	if gemini.Models[0].ID != "gemini-1.5-flash" || gemini.Models[0].InputPer1K <= 0 {
		t.Errorf("first model = %+v", gemini.Models[0])
	}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		ping       error
		wantStatus int
	}{
		{"healthy", nil, http.StatusOK},
		{"database down", errors.New("connection refused"), http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(PingFunc(func(ctx context.Context) error { return tt.ping }))
			rec := httptest.NewRecorder()
			h.HealthCheck(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
