// Package backend is the HTTP client for the remote document QA service.
// The service owns all parsing, retrieval, and answer generation; this
// client only moves bytes and JSON.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/hyperjump/docchat/internal/models"
)

// DefaultBaseURL is the local development address of the backend.
const DefaultBaseURL = "http://localhost:8000"

// DefaultTimeout bounds every request; a timed-out call resolves as a
// normal failure.
const DefaultTimeout = 30 * time.Second

// Client talks to the backend's /upload and /ask endpoints.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL. Empty baseURL falls
// back to DefaultBaseURL; a non-positive timeout falls back to DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// Upload sends the file bytes as a multipart form to POST /upload.
// Any 2xx status is acceptance; the response body is not required.
func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) error {
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("copy file contents: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if !is2xx(resp.StatusCode) {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

// Ask sends the trimmed question and prior turns to POST /ask and decodes
// the answer/context payload.
func (c *Client) Ask(ctx context.Context, question string, history []models.ChatTurn) (*models.AskResponse, error) {
	payload, err := json.Marshal(models.AskRequest{Question: question, ChatHistory: history})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if !is2xx(resp.StatusCode) {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}

	var answer models.AskResponse
	if err := json.NewDecoder(resp.Body).Decode(&answer); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &answer, nil
}

func is2xx(code int) bool {
	return code >= 200 && code < 300
}
