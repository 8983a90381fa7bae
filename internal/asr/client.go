// Package asr is a client for a Whisper-style transcription service.
package asr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Options are the transcription query parameters. Zero values are omitted.
type Options struct {
	Output   string // "text", "json", "vtt", "srt", "tsv"
	Task     string // "transcribe" or "translate"
	Language string
}

// Result is the transcription outcome. Plain-text responses populate Text
// only.
type Result struct {
	Text     string `json:"text"`
	Language string `json:"language,omitempty"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Transcribe posts the audio as a multipart body to /asr. A non-2xx response
// is a hard failure; there is no retry.
func (c *Client) Transcribe(ctx context.Context, filename string, audio io.Reader, opts Options) (*Result, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("audio_file", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}

	params := url.Values{}
	if opts.Output != "" {
		params.Set("output", opts.Output)
	}
	if opts.Task != "" {
		params.Set("task", opts.Task)
	}
	if opts.Language != "" {
		params.Set("language", opts.Language)
	}

	endpoint := c.baseURL + "/asr"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read transcription response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("transcription status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		var result Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("parse transcription response: %w", err)
		}
		return &result, nil
	}

	return &Result{Text: strings.TrimSpace(string(data))}, nil
}
