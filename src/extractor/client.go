// src/extractor/client.go
package extractor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/username/mpesaviz/backend/src/logger"
)

// Client submits statement documents to the external extraction service.
// The service answers at the transport level only; the structured result
// arrives later as a push event tagged with the correlation token.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Submit transfers the document with its correlation token and optional
// pass code for encrypted files. A nil return means all bytes were sent
// and the service acknowledged the transfer, nothing more.
func (c *Client) Submit(ctx context.Context, token, filename, passCode string, file io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("the_file", filename)
	if err != nil {
		return fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("failed to copy file into request: %w", err)
	}
	if err := writer.WriteField("token", token); err != nil {
		return fmt.Errorf("failed to write token field: %w", err)
	}
	if passCode != "" {
		if err := writer.WriteField("pass_code", passCode); err != nil {
			return fmt.Errorf("failed to write pass code field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	logger.L.Info("Submitting document to extractor", "token", token, "filename", filename)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("extractor transfer failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("extractor returned status %d: %s", resp.StatusCode, string(snippet))
	}
	return nil
}
