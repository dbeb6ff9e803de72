// internal/backends/transcribe.go
package backends

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chorus-cli/chorus/internal/logging"
)

// transcriber posts an audio file to a whisper-style transcription endpoint.
type transcriber struct {
	url     string
	model   string
	client  *http.Client
	timeout time.Duration
}

func newTranscriber(options Options, client *http.Client, timeout time.Duration) (*transcriber, error) {
	url := options.stringValue("url")
	if url == "" {
		return nil, fmt.Errorf("audio-transcription backend requires a \"url\" option")
	}
	return &transcriber{
		url:     strings.TrimRight(url, "/"),
		model:   options.stringValue("model"),
		client:  client,
		timeout: timeout,
	}, nil
}

// transcriptionResponse is the reply shape of the transcription endpoint.
type transcriptionResponse struct {
	Text string `json:"text"`
}

// Invoke uploads the audio file at the given path and returns the transcript.
func (t *transcriber) Invoke(ctx context.Context, path string, _ CallParams) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open audio file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if t.model != "" {
		if err := writer.WriteField("model", t.model); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	logging.LogModelCall("CHORUS->MODEL", t.model, string(CapabilityTranscription), path)

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, t.url+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogModelCall("MODEL->CHORUS", t.model, string(CapabilityTranscription), respBody)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("transcription endpoint returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var result transcriptionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	return strings.TrimSpace(result.Text), nil
}
