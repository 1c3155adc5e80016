package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/Dolphinator7/airtable-automation/internal/logger"

	"go.uber.org/zap"
)

const (
	contentType    = "application/json"
	maxErrorLogLen = 500
)

// APIError is returned when Airtable answers with anything but 200 OK.
type APIError struct {
	Method     string
	URL        string
	StatusCode int
	Status     string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bad status: %s: %s", e.Status, e.Body)
}

// IsRetryable reports whether err is a rate limit or temporary server error.
// Transport errors are not retried since a write may already have landed.
func IsRetryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}

	switch apiErr.StatusCode {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// do sends a JSON request and decodes a 200 response into target.
func (c *Client) do(ctx context.Context, method, rawURL string, q url.Values, body, target any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
	}

	return c.retry.Do(ctx, func(ctx context.Context, attempt int) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
		if err != nil {
			return err
		}

		req = c.setHeaders(req)
		if q != nil {
			req.URL.RawQuery = q.Encode()
		}

		resp, err := c.request(req, attempt)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		if resp.StatusCode != http.StatusOK {
			apiErr := &APIError{
				Method:     method,
				URL:        req.URL.String(),
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       string(data),
			}

			c.logger.Error("airtable request failed",
				zap.String("method", method),
				zap.String("url", apiErr.URL),
				zap.Int("status", resp.StatusCode),
				zap.String("body", logger.Preview(apiErr.Body, maxErrorLogLen)),
			)

			return apiErr
		}

		if target == nil {
			return nil
		}

		if err := json.Unmarshal(data, target); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}

		return nil
	})
}

func (c *Client) request(req *http.Request, attempt int) (*http.Response, error) {
	c.logger.Debug("make request",
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Int("attempt", attempt+1),
	)

	return c.HTTPClient.Do(req)
}

func (c *Client) setHeaders(req *http.Request) *http.Request {
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	req.Header.Set("Content-Type", contentType)

	return req
}
