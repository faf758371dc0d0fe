// internal/gemini/client.go
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	// ErrEmptyResponse indicates the model returned no text candidate.
	ErrEmptyResponse = errors.New("gemini: empty response")
	// ErrMalformedOutput indicates the model text did not conform to the
	// declared response schema.
	ErrMalformedOutput = errors.New("gemini: malformed model output")
)

type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
}

// Client is a thin facade over the Gemini generateContent REST endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   *Schema `json:"responseSchema,omitempty"`
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// GenerateText sends a plain text prompt, optionally with an inline image,
// and returns the first candidate's text.
func (c *Client) GenerateText(ctx context.Context, prompt string, image *Image) (string, error) {
	parts := make([]part, 0, 2)
	if image != nil {
		parts = append(parts, part{InlineData: &inlineData{
			MimeType: image.MimeType,
			Data:     image.Base64,
		}})
	}
	parts = append(parts, part{Text: prompt})

	req := generateContentRequest{
		Contents: []content{{Parts: parts}},
	}
	return c.generate(ctx, req)
}

// Image is an inline base64 payload forwarded to the model.
type Image struct {
	MimeType string
	Base64   string
}

// GenerateJSON sends a prompt constrained by a response schema and decodes
// the model text into out. A response that cannot be decoded into out, or
// that omits any schema-required field, is reported as ErrMalformedOutput
// rather than handed to the caller half-filled.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, schema *Schema, out interface{}) error {
	req := generateContentRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   schema,
		},
	}

	text, err := c.generate(ctx, req)
	if err != nil {
		return err
	}

	raw := []byte(strings.TrimSpace(text))
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
	}

	if schema != nil {
		var decoded interface{}
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
		if err := checkRequired(schema, decoded); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedOutput, err)
		}
	}
	return nil
}

func (c *Client) generate(ctx context.Context, req generateContentRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to encode gemini request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build gemini request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read gemini response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error.Message != "" {
			return "", fmt.Errorf("gemini API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return "", fmt.Errorf("gemini API error: status %d", resp.StatusCode)
	}

	var result generateContentResponse
	if err := json.Unmarshal(data, &result); err != nil {
		return "", fmt.Errorf("failed to decode gemini response: %w", err)
	}

	text := firstText(result)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func firstText(resp generateContentResponse) string {
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}
