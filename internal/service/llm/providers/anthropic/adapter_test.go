package anthropic

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"promptlab/internal/capabilities"
	"promptlab/internal/domain/models/llm"
	"promptlab/internal/service/llm/providers"
)

type fixedRates capabilities.Rates

func (f fixedRates) RatesFor(provider, model string) capabilities.Rates {
	return capabilities.Rates(f)
}

func newTestAdapter(srv *httptest.Server) *Adapter {
	retry := providers.NewRetryPolicy(3, time.Second)
	retry.Sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return NewAdapter(Config{
		APIKey:     "sk-ant-test",
		BaseURL:    srv.URL,
		HTTPClient: srv.Client(),
		Retry:      retry,
		Rates:      fixedRates{InputPer1K: 0.0008, OutputPer1K: 0.004},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
}

const messageBody = `{
	"id": "msg_01",
	"type": "message",
	"role": "assistant",
	"model": "claude-3-5-haiku-20241022",
	"content": [{"type": "text", "text": "4"}],
	"stop_reason": "end_turn",
	"usage": {"input_tokens": 5, "output_tokens": 1}
}`

func TestGenerate_Success(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if key := r.Header.Get("X-Api-Key"); key != "sk-ant-test" {
			t.Errorf("X-Api-Key = %q", key)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, messageBody)
	}))
	defer srv.Close()

	system := "be brief"
	resp, err := newTestAdapter(srv).Generate(context.Background(), &llm.CanonicalRequest{
		Prompt:  "What is 2+2?",
		System:  &system,
		Model:   "claude-3-5-haiku-latest",
		History: []llm.HistoryTurn{{User: "hi", Assistant: "hello"}},
	})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !resp.Success || resp.Content != "4" {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.PromptTokens != 5 || resp.CompletionTokens != 1 || resp.FinishReason != "end_turn" {
		t.Errorf("resp = %+v", resp)
	}
	wantCost := providers.CalculateCost(5, 1, capabilities.Rates{InputPer1K: 0.0008, OutputPer1K: 0.004})
	if resp.Cost != wantCost {
		t.Errorf("Cost = %v, want %v", resp.Cost, wantCost)
	}

	if msgs := got["messages"].([]any); len(msgs) != 3 {
		t.Errorf("sent %d messages, want 3", len(msgs))
	}
	if got["max_tokens"].(float64) != 4096 {
		t.Errorf("max_tokens = %v, want default 4096", got["max_tokens"])
	}
	if _, ok := got["system"]; !ok {
		t.Error("system prompt missing")
	}
}

func TestGenerate_RetriesOverloaded(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = io.WriteString(w, `{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`)
			return
		}
		_, _ = io.WriteString(w, messageBody)
	}))
	defer srv.Close()

	resp, err := newTestAdapter(srv).Generate(context.Background(), &llm.CanonicalRequest{Prompt: "x", Model: "claude-3-5-haiku-latest"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}
}

func TestGenerate_BadRequestIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer srv.Close()

	resp, err := newTestAdapter(srv).Generate(context.Background(), &llm.CanonicalRequest{Prompt: "x", Model: "claude-3-5-haiku-latest"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if resp.Success || calls.Load() != 1 {
		t.Errorf("success=%v calls=%d, want failure after one call", resp.Success, calls.Load())
	}
}

func TestEstimateTokens_UsesCountEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages/count_tokens" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"input_tokens": 17}`)
	}))
	defer srv.Close()

	n, err := newTestAdapter(srv).EstimateTokens(context.Background(), "some text")
	if err != nil || n != 17 {
		t.Errorf("EstimateTokens() = %d, %v; want 17", n, err)
	}
}

func TestEstimateModelTokens_SendsRoutedModel(t *testing.T) {
	var got struct {
		Model string `json:"model"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"input_tokens": 9}`)
	}))
	defer srv.Close()

	n, err := newTestAdapter(srv).EstimateModelTokens(context.Background(), "claude-3-5-sonnet-20241022", "some text")
	if err != nil || n != 9 {
		t.Errorf("EstimateModelTokens() = %d, %v; want 9", n, err)
	}
	if got.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("model = %q", got.Model)
	}
}

func TestEstimateTokens_HangingEndpointFallsBack(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	a := newTestAdapter(srv)
	a.retry.AttemptTimeout = 50 * time.Millisecond

	done := make(chan struct{})
	var (
		n   int
		err error
	)
	go func() {
		defer close(done)
		n, err = a.EstimateTokens(context.Background(), "12345678")
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("EstimateTokens did not honour the attempt timeout")
	}
	if err != nil || n != 2 {
		t.Errorf("EstimateTokens() = %d, %v; want heuristic 2", n, err)
	}
}

func TestGenerate_ContractViolations(t *testing.T) {
	if _, err := NewAdapter(Config{APIKey: "k"}).Generate(context.Background(), nil); err == nil {
		t.Error("nil request: expected error")
	}
	if _, err := NewAdapter(Config{}).Generate(context.Background(), &llm.CanonicalRequest{Prompt: "x"}); err == nil {
		t.Error("missing key: expected error")
	}
}
