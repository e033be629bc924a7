package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"promptlab/internal/service/llm/providers"
)

const (
	// DefaultBaseURL is the Generative Language API root
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	maxErrorBody = 4 << 10
)

// client is a thin JSON client for the Generative Language REST API
type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
	Temperature     *float64 `json:"temperature,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type countTokensRequest struct {
	Contents []content `json:"contents"`
}

type countTokensResponse struct {
	TotalTokens *int `json:"totalTokens"`
}

// modelPath returns the escaped "models/{model}" resource path
func modelPath(model string) string {
	return "models/" + url.PathEscape(strings.TrimPrefix(model, "models/"))
}

func (c *client) generateContent(ctx context.Context, model string, body *generateRequest) (*generateResponse, error) {
	var out generateResponse
	if err := c.post(ctx, modelPath(model)+":generateContent", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *client) countTokens(ctx context.Context, model string, body *countTokensRequest) (int, error) {
	var out countTokensResponse
	if err := c.post(ctx, modelPath(model)+":countTokens", body, &out); err != nil {
		return 0, err
	}
	if out.TotalTokens == nil {
		return 0, providers.ErrMalformedResponse
	}
	return *out.TotalTokens, nil
}

// listModels fetches one page of models; used as a liveness probe
func (c *client) listModels(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/models?pageSize=1", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, nil)
}

func (c *client) post(ctx context.Context, path string, payload, out any) error {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return providers.Permanent(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return providers.Permanent(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &providers.StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", providers.ErrMalformedResponse, err)
	}
	return nil
}
