package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/imagenamer/internal/naming"
	"github.com/lehigh-university-libraries/imagenamer/internal/providers"
)

const defaultURL = "http://localhost:11434"

// Ollama is a provider for Ollama
type Ollama struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a new Ollama provider
func New(baseURL string) *Ollama {
	if baseURL == "" {
		baseURL = defaultURL
	}
	return &Ollama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
}

// ExtractText sends the prompt and image to the generate endpoint
func (o *Ollama) ExtractText(ctx context.Context, config providers.Config) (string, error) {
	options := map[string]interface{}{
		"temperature": config.Temperature,
	}
	if config.MaxTokens > 0 {
		options["num_predict"] = config.MaxTokens
	}

	requestBody, err := json.Marshal(map[string]interface{}{
		"model":   config.Model,
		"system":  config.SystemPrompt,
		"prompt":  config.Prompt,
		"images":  []string{naming.EncodeBytes(config.Image)},
		"stream":  false,
		"options": options,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.baseURL+"/api/generate", bytes.NewBuffer(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("received non-200 status code: %d - %s", resp.StatusCode, string(body))
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response body: %w", err)
	}

	return response.Response, nil
}
