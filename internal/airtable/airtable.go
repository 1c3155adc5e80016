// Package airtable is a small client for the Airtable REST API covering the
// list, create and update calls the pipeline needs.
package airtable

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/Dolphinator7/airtable-automation/internal/retry"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	apiURL = "https://api.airtable.com/v0"
	// Max value for list page size.
	pageSize = "100"
	// Airtable allows 5 requests per second per base.
	defaultRequestsPerSecond = 5
	defaultTimeout           = 30 * time.Second
)

// Options tune the client. Zero values fall back to defaults.
type Options struct {
	APIURL            string
	RequestsPerSecond float64
	Timeout           time.Duration
	Retry             retry.Policy
}

type Client struct {
	token   string
	baseID  string
	logger  *zap.Logger
	limiter *rate.Limiter
	retry   retry.Policy

	HTTPClient *http.Client
	APIURL     string
}

func New(logger *zap.Logger, token, baseID string, opts Options) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	rps := opts.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSecond
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	base := opts.APIURL
	if base == "" {
		base = apiURL
	}

	policy := opts.Retry
	if policy.Retryable == nil {
		policy.Retryable = IsRetryable
	}

	return &Client{
		token:   token,
		baseID:  baseID,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   policy,
		APIURL:  base,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields map[string]any `json:"fields"`
}

// List returns every record of the table, following pagination. An empty
// table yields an empty slice and a nil error.
func (c *Client) List(ctx context.Context, table string) (Records, error) {
	records := make(Records, 0)

	q := url.Values{}
	q.Set("pageSize", pageSize)

	for {
		var page listResponse
		if err := c.do(ctx, http.MethodGet, c.tableURL(table), q, nil, &page); err != nil {
			return nil, fmt.Errorf("list %s: %w", table, err)
		}

		records = append(records, page.Records...)

		if page.Offset == "" {
			break
		}

		c.logger.Debug("additional request needed",
			zap.String("table", table),
			zap.Int("records_so_far", len(records)),
		)
		q.Set("offset", page.Offset)
	}

	return records, nil
}

// Create inserts a single record with the given fields.
func (c *Client) Create(ctx context.Context, table string, fields map[string]any) (*Record, error) {
	var created Record
	if err := c.do(ctx, http.MethodPost, c.tableURL(table), nil, &writeRequest{Fields: fields}, &created); err != nil {
		return nil, fmt.Errorf("create in %s: %w", table, err)
	}

	return &created, nil
}

// Update merges fields into the record with the given id.
func (c *Client) Update(ctx context.Context, table, id string, fields map[string]any) (*Record, error) {
	if id == "" {
		return nil, fmt.Errorf("update in %s: record id is required", table)
	}

	target := fmt.Sprintf("%s/%s", c.tableURL(table), url.PathEscape(id))

	var updated Record
	if err := c.do(ctx, http.MethodPatch, target, nil, &writeRequest{Fields: fields}, &updated); err != nil {
		return nil, fmt.Errorf("update %s in %s: %w", id, table, err)
	}

	return &updated, nil
}

func (c *Client) tableURL(table string) string {
	return fmt.Sprintf("%s/%s/%s", c.APIURL, url.PathEscape(c.baseID), url.PathEscape(table))
}
