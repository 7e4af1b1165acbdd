// Package caption talks to an external multimodal AI service to describe a
// photo. One request carries the normalized JPEG inline plus an instruction
// block, and constrains the response to a fixed JSON schema.
package caption

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// ErrQuotaExhausted is returned when the service rejects a request for quota
// or rate-limit reasons. Callers must stop automatic processing instead of
// retrying; every other failure is non-fatal.
var ErrQuotaExhausted = errors.New("caption: quota exhausted")

const prompt = `Describe this photo in one sentence focused on the place and atmosphere. Do not describe any people in the photo. If the location is determinable, name it. List any recognizable landmarks, each with its name, a one-line fact about it, and a reference URL.`

// Hint carries decimal GPS coordinates embedded into the request so the
// service can pin down the location.
type Hint struct {
	Latitude  float64
	Longitude float64
}

// Landmark is one recognised point of interest in the service's response.
type Landmark struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Result is the structured output of one captioning request.
type Result struct {
	Description string     `json:"description"`
	Location    string     `json:"location,omitempty"`
	Landmarks   []Landmark `json:"landmarks,omitempty"`
}

// Client issues captioning requests against a generateContent-style endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	logger     *slog.Logger
}

// New builds a captioning client. baseURL is the service root without a
// trailing slash; model names the multimodal model to invoke.
func New(baseURL, apiKey, model string, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		logger:     logger,
	}
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type schema struct {
	Type       string            `json:"type"`
	Properties map[string]schema `json:"properties,omitempty"`
	Items      *schema           `json:"items,omitempty"`
	Required   []string          `json:"required,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
	ResponseSchema   schema `json:"responseSchema"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

var resultSchema = schema{
	Type: "OBJECT",
	Properties: map[string]schema{
		"description": {Type: "STRING"},
		"location":    {Type: "STRING"},
		"landmarks": {
			Type: "ARRAY",
			Items: &schema{
				Type: "OBJECT",
				Properties: map[string]schema{
					"name":        {Type: "STRING"},
					"description": {Type: "STRING"},
					"url":         {Type: "STRING"},
				},
				Required: []string{"name", "description", "url"},
			},
		},
	},
	Required: []string{"description"},
}

// Describe sends one captioning request for the given JPEG payload. A nil
// hint omits the coordinate text. ErrQuotaExhausted signals a fatal
// quota/rate-limit rejection; any other error is a non-fatal failure.
func (c *Client) Describe(ctx context.Context, jpeg []byte, hint *Hint) (Result, error) {
	parts := []part{
		{InlineData: &inlineData{
			MimeType: "image/jpeg",
			Data:     base64.StdEncoding.EncodeToString(jpeg),
		}},
		{Text: prompt},
	}
	if hint != nil {
		parts = append(parts, part{
			Text: fmt.Sprintf("The photo was taken near latitude %.6f, longitude %.6f.", hint.Latitude, hint.Longitude),
		})
	}

	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: parts}},
		GenerationConfig: generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   resultSchema,
		},
	})
	if err != nil {
		return Result{}, fmt.Errorf("caption: encode request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, fmt.Errorf("caption: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("caption: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		c.logger.Warn("captioning service rejected request for quota", "status", resp.StatusCode)
		return Result{}, ErrQuotaExhausted
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Result{}, fmt.Errorf("caption: unexpected status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, fmt.Errorf("caption: read response: %w", err)
	}

	var envelope generateResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return Result{}, fmt.Errorf("caption: decode response: %w", err)
	}

	if len(envelope.Candidates) == 0 || len(envelope.Candidates[0].Content.Parts) == 0 {
		return Result{}, fmt.Errorf("caption: empty response")
	}

	text := envelope.Candidates[0].Content.Parts[0].Text

	var result Result
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return Result{}, fmt.Errorf("caption: decode result: %w", err)
	}

	if strings.TrimSpace(result.Description) == "" {
		return Result{}, fmt.Errorf("caption: response missing description")
	}

	return result, nil
}
