// internal/clients/vision_client.go
package clients

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TransportError is a network or HTTP failure from the vision endpoint,
// including timeouts. It is never retried here; only an externally
// triggered fresh scan tries again.
type TransportError struct {
	Status int
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("vision transport error: %v", e.Err)
	}
	return fmt.Sprintf("vision API error: %d - %s", e.Status, e.Body)
}

func (e *TransportError) Unwrap() error { return e.Err }

// VisionClient calls a chat-completions style inference endpoint with an
// inline base64 image and returns the model's JSON text.
type VisionClient struct {
	apiURL     string
	apiKey     string
	model      string
	httpClient *http.Client
	tracer     trace.Tracer
}

// NewVisionClient creates a client for the given endpoint and model.
func NewVisionClient(apiURL, apiKey, model string) *VisionClient {
	return &VisionClient{
		apiURL:     apiURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{},
		tracer:     otel.Tracer("smartbin/clients"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

// Infer sends one inference request and returns the extracted content with
// markdown fences stripped, ready for JSON parsing. The timeout bounds the
// whole call; a timed-out or failed call surfaces as a *TransportError.
func (c *VisionClient) Infer(ctx context.Context, image []byte, prompt, system string, timeout time.Duration) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "vision.infer",
		trace.WithAttributes(
			attribute.String("vision.model", c.model),
			attribute.Int("image.bytes", len(image)),
		),
	)
	defer span.End()

	encoded := base64.StdEncoding.EncodeToString(image)
	payload := map[string]any{
		"model": c.model,
		"messages": []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: []contentPart{
				{Type: "image_url", ImageURL: &imageURL{URL: "data:image/jpeg;base64," + encoded}},
				{Type: "text", Text: prompt},
			}},
		},
		"temperature":     0.0,
		"response_format": map[string]string{"type": "json_object"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal inference payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(resp.Body)
		return nil, &TransportError{Status: resp.StatusCode, Body: string(errBody)}
	}

	var data struct {
		Choices []struct {
			FinishReason string `json:"finish_reason"`
			Message      struct {
				Content          json.RawMessage `json:"content"`
				ReasoningContent string          `json:"reasoning_content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if len(data.Choices) == 0 {
		return nil, fmt.Errorf("no choices in inference response")
	}

	content := extractContent(data.Choices[0].Message.Content)
	if content == "" {
		// Some backends put the answer in reasoning_content only.
		content = data.Choices[0].Message.ReasoningContent
	}
	if content == "" {
		return nil, fmt.Errorf("empty content in inference response")
	}

	span.SetAttributes(attribute.Int("content.length", len(content)))
	return []byte(stripFences(content)), nil
}

// extractContent handles both the plain-string and the content-parts form
// of message.content.
func extractContent(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var parts []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parts); err == nil {
		var b strings.Builder
		for _, part := range parts {
			if part.Type == "text" {
				b.WriteString(part.Text)
			}
		}
		return b.String()
	}
	return ""
}

// stripFences removes ```json / ``` wrappers the model sometimes adds
// despite being told not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
