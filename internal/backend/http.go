package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

// doGetJSON performs a GET request and unmarshals the JSON response into the result type.
func doGetJSON[T any](ctx context.Context, c *Client, endpoint string) (*T, error) {
	return doRequestJSON[T](ctx, c, http.MethodGet, endpoint, nil, "")
}

// doMultipartJSON posts a multipart form built by fill and unmarshals the JSON response.
func doMultipartJSON[T any](ctx context.Context, c *Client, endpoint string, fill func(*multipart.Writer) error) (*T, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := fill(writer); err != nil {
		return nil, fmt.Errorf("could not build multipart body: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}
	return doRequestJSON[T](ctx, c, http.MethodPost, endpoint, &body, writer.FormDataContentType())
}

// doRequestJSON sends a request and decodes a 2xx JSON answer. Any other status
// becomes a *ServerRejectedError; network failures become a *TransportError.
func doRequestJSON[T any](ctx context.Context, c *Client, method, endpoint string, body io.Reader, contentType string) (*T, error) {
	respBody, err := c.do(ctx, method, endpoint, body, contentType)
	if err != nil {
		return nil, err
	}

	var result T
	if len(bytes.TrimSpace(respBody)) == 0 {
		return &result, nil
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &TransportError{Op: method + " " + endpoint, Err: fmt.Errorf("could not unmarshal response: %w", err)}
	}
	return &result, nil
}

// do performs the request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, endpoint string, body io.Reader, contentType string) ([]byte, error) {
	op := method + " " + endpoint
	url := c.resolveURL(endpoint)

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // URL constructed from the configured backend origin via resolveURL
	if err != nil {
		c.logger.Warn("Backend: request failed", "op", op, "error", err)
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("Backend: response", "op", op, "status", resp.StatusCode, "duration", time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &ServerRejectedError{StatusCode: resp.StatusCode, Detail: parseDetail(errBody)}
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("could not read response body: %w", err)}
	}

	c.captureResponse(endpoint, respBody)
	return respBody, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// addImage writes one image as a JPEG form file part.
func addImage(writer *multipart.Writer, field string, img Image) error {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(img.Filename)))
	h.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(h)
	if err != nil {
		return fmt.Errorf("could not create form file: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return fmt.Errorf("could not copy image data: %w", err)
	}
	return nil
}
