// Package ollama suggests photo tags with a local multimodal model served by
// Ollama's /api/generate endpoint.
package ollama

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

	"github.com/vbonduro/renovo/internal/tagging"
)

const (
	requestTimeout = 2 * time.Minute
	maxErrorBody   = 512
)

type OllamaSuggester struct {
	endpoint string
	model    string
	client   *http.Client
}

func NewOllamaSuggester(host, model string) *OllamaSuggester {
	return &OllamaSuggester{
		endpoint: strings.TrimRight(host, "/") + "/api/generate",
		model:    model,
		client:   &http.Client{Timeout: requestTimeout},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Images  []string        `json:"images"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions pins sampling so the same photo yields the same tags.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (s *OllamaSuggester) Suggest(ctx context.Context, r io.Reader, _ string) (*tagging.Suggestion, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	var body bytes.Buffer
	if err := json.NewEncoder(&body).Encode(generateRequest{
		Model:  s.model,
		Prompt: tagging.Prompt,
		Images: []string{base64.StdEncoding.EncodeToString(imageData)},
	}); err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &tagging.Suggestion{
		Tags:        tagging.ParseResponse(out.Response),
		RawResponse: out.Response,
	}, nil
}
