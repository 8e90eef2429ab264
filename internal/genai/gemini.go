// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package genai calls the generative-language service that produces the slide
// list, and validates its response.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// geminiAPIBase is the Generative Language API root. Package-level var for
// test substitution.
var geminiAPIBase = "https://generativelanguage.googleapis.com/v1beta"

// ErrTransport wraps any failure to obtain a response from the generation
// service: network errors, auth rejections, non-2xx statuses, malformed
// envelopes. The run does not retry.
var ErrTransport = errors.New("generation request failed")

// Backend abstracts the generation service so tests can supply a mock. The
// returned string is the service's raw text, expected to be a JSON array of
// slide objects.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiBackend calls the Gemini generateContent endpoint with a response
// schema constraining the output to an array of slide objects.
type GeminiBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// slideSchema declares the required response shape: an array of objects with
// required title/body and an optional image_refs string array.
var slideSchema = json.RawMessage(`{
  "type": "ARRAY",
  "items": {
    "type": "OBJECT",
    "properties": {
      "title": {"type": "STRING", "description": "main slide title"},
      "body": {"type": "STRING", "description": "slide content, bullets included"},
      "image_refs": {
        "type": "ARRAY",
        "description": "ids of extracted PDF images; set only when a figure is used",
        "items": {"type": "STRING"}
      }
    },
    "required": ["title", "body"]
  }
}`)

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	ResponseMIMEType string          `json:"response_mime_type"`
	ResponseSchema   json.RawMessage `json:"response_schema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Generate sends the composed prompt and returns the raw response text (the
// concatenated text parts of the first candidate).
func (g *GeminiBackend) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Role: "user", Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenerationConfig{
			ResponseMIMEType: "application/json",
			ResponseSchema:   slideSchema,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", geminiAPIBase, g.Model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.APIKey)

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slurp, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%w: status %d: %s", ErrTransport, resp.StatusCode, strings.TrimSpace(string(slurp)))
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return "", fmt.Errorf("%w: decoding response: %v", ErrTransport, err)
	}
	if len(gResp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", ErrTransport)
	}

	var sb strings.Builder
	for _, part := range gResp.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	return strings.TrimSpace(sb.String()), nil
}
