// internal/backends/textgen.go
package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/chorus-cli/chorus/internal/logging"
)

// textGenerator invokes an Ollama-compatible /api/generate endpoint.
type textGenerator struct {
	url         string
	model       string
	maxTokens   int
	temperature *float64
	client      *http.Client
	timeout     time.Duration
}

func newTextGenerator(options Options, client *http.Client, timeout time.Duration) (*textGenerator, error) {
	url := options.stringValue("url")
	if url == "" {
		return nil, fmt.Errorf("text-generation backend requires a \"url\" option")
	}
	model := options.stringValue("model")
	if model == "" {
		return nil, fmt.Errorf("text-generation backend requires a \"model\" option")
	}

	gen := &textGenerator{
		url:     strings.TrimRight(url, "/"),
		model:   model,
		client:  client,
		timeout: timeout,
	}
	if v, ok := options.floatValue("max_tokens"); ok {
		gen.maxTokens = int(v)
	}
	if v, ok := options.floatValue("temperature"); ok {
		temp := v
		gen.temperature = &temp
	}
	return gen, nil
}

// generateResponse is the non-streaming /api/generate reply shape.
type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Invoke sends the prompt to the generate endpoint and returns the reply text.
func (g *textGenerator) Invoke(ctx context.Context, input string, params CallParams) (string, error) {
	options := map[string]any{}
	if g.temperature != nil {
		options["temperature"] = *g.temperature
	}
	if params.Temperature != nil {
		options["temperature"] = *params.Temperature
	}
	if g.maxTokens > 0 {
		options["num_predict"] = g.maxTokens
	}

	payload := map[string]any{
		"model":   g.model,
		"prompt":  input,
		"options": options,
		"stream":  false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logging.LogModelCall("CHORUS->MODEL", g.model, string(CapabilityTextGeneration), body)

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, g.url+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogModelCall("MODEL->CHORUS", g.model, string(CapabilityTextGeneration), respBody)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("generate endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var result generateResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Response), nil
}
