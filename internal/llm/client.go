// Package llm wraps the external text-generation service. The service is a
// black box: it accepts a message list plus an optional output schema and
// returns free text or a structured value. Failures propagate to the caller;
// no retries happen at this layer.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/draftwright/draftwright/internal/metrics"
)

// Message is one chat-style message sent to the generation service.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerateRequest is the wire request for the /v1/generate endpoint.
// OutputSchema, when set, asks the service for a structured value matching
// the named schema instead of free text.
type GenerateRequest struct {
	Messages     []Message `json:"messages"`
	OutputSchema string    `json:"output_schema,omitempty"`
	Temperature  float64   `json:"temperature,omitempty"`
}

// GenerateResponse is the wire response. Exactly one of Text or Structured
// is populated depending on whether a schema was requested.
type GenerateResponse struct {
	Text         string          `json:"text,omitempty"`
	Structured   json.RawMessage `json:"structured,omitempty"`
	Model        string          `json:"model,omitempty"`
	Provider     string          `json:"provider,omitempty"`
	InputTokens  int             `json:"input_tokens,omitempty"`
	OutputTokens int             `json:"output_tokens,omitempty"`
}

// Client is a handle on the generation service, constructed once at process
// start and injected into every activity that needs it. Safe for concurrent
// use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewClient builds a client for the generation service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *zap.Logger) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Generate performs one call against the generation service.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("marshal generate request: %w", err)
	}

	url := c.baseURL + "/v1/generate"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return GenerateResponse{}, fmt.Errorf("create generate request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		metrics.GenerationRequests.WithLabelValues("error").Inc()
		return GenerateResponse{}, fmt.Errorf("call generation service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		metrics.GenerationRequests.WithLabelValues("error").Inc()
		return GenerateResponse{}, fmt.Errorf("generation service returned status %d", resp.StatusCode)
	}

	var out GenerateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		metrics.GenerationRequests.WithLabelValues("error").Inc()
		return GenerateResponse{}, fmt.Errorf("decode generation response: %w", err)
	}

	metrics.GenerationRequests.WithLabelValues("ok").Inc()
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	c.logger.Debug("Generation call completed",
		zap.String("schema", req.OutputSchema),
		zap.String("model", out.Model),
		zap.Int("input_tokens", out.InputTokens),
		zap.Int("output_tokens", out.OutputTokens),
		zap.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}

// GenerateInto performs a structured call and unmarshals the structured
// payload into out. An empty structured payload is an error: the service
// contract for schema-constrained calls is a structured value or failure.
func (c *Client) GenerateInto(ctx context.Context, req GenerateRequest, out interface{}) error {
	if req.OutputSchema == "" {
		return fmt.Errorf("structured generation requires an output schema")
	}
	resp, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}
	if len(resp.Structured) == 0 {
		return fmt.Errorf("generation service returned no structured value for schema %q", req.OutputSchema)
	}
	if err := json.Unmarshal(resp.Structured, out); err != nil {
		return fmt.Errorf("unmarshal %q structured value: %w", req.OutputSchema, err)
	}
	return nil
}
