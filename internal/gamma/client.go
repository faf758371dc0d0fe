// internal/gamma/client.go
package gamma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Generation statuses reported by the Gamma API.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
}

// Client talks to the Gamma public generations API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GenerationRequest carries the document text and formatting options for a
// create call.
type GenerationRequest struct {
	InputText string `json:"inputText"`
	TextMode  string `json:"textMode"`
	Format    string `json:"format"`
	Model     string `json:"model"`
	Language  string `json:"language"`
	Layout    string `json:"layout"`
	Style     string `json:"style"`
}

// Generation is the observed state of an asynchronous generation job.
type Generation struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	GammaURL string `json:"gammaUrl"`
	PdfURL   string `json:"pdfUrl,omitempty"`
	PptxURL  string `json:"pptxUrl,omitempty"`
}

// Terminal reports whether the remote service will not change this status
// again.
func (g *Generation) Terminal() bool {
	return g.Status == StatusCompleted || g.Status == StatusFailed
}

type createResponse struct {
	GenerationID string `json:"generationId"`
}

type statusResponse struct {
	Generation json.RawMessage `json:"generation"`
}

type apiError struct {
	Message string `json:"message"`
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://public-api.gamma.app/v0.2"
	}

	return &Client{
		apiKey:     opts.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

// CreateGeneration submits a new generation job and returns its identifier.
func (c *Client) CreateGeneration(ctx context.Context, req GenerationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode gamma request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generations", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gamma request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gamma request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gamma response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("gamma API error: %s", errorMessage(data, resp.Status))
	}

	var result createResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode gamma response: %w", err)
	}
	if result.GenerationID == "" {
		return "", fmt.Errorf("gamma API returned no generation id")
	}
	return result.GenerationID, nil
}

// GetGeneration queries the state of a job by identifier.
func (c *Client) GetGeneration(ctx context.Context, id string) (*Generation, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/generations/"+id, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build gamma request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-API-KEY", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gamma request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gamma response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gamma API error: %s", errorMessage(data, resp.Status))
	}

	// The status payload is sometimes wrapped in a "generation" envelope.
	var wrapped statusResponse
	if json.Unmarshal(data, &wrapped) == nil && len(wrapped.Generation) > 0 {
		data = wrapped.Generation
	}

	var gen Generation
	if err := json.Unmarshal(data, &gen); err != nil {
		return nil, fmt.Errorf("failed to decode gamma response: %w", err)
	}
	if gen.ID == "" {
		gen.ID = id
	}
	return &gen, nil
}

func errorMessage(data []byte, fallback string) string {
	var apiErr apiError
	if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
