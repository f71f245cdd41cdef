package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"addressbook/internal/addressbook/models"
	dErrors "addressbook/pkg/domain-errors"
	"addressbook/pkg/platform/sentinel"
)

const searchPath = "/api/getAddresses"

// HTTPClient is a Lookup backed by a remote search endpoint speaking the same
// contract this service exposes.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

type HTTPClientOption func(*HTTPClient)

func WithHTTPClient(client *http.Client) HTTPClientOption {
	return func(c *HTTPClient) {
		c.client = client
	}
}

// NewHTTPClient targets baseURL (scheme and host, optional path prefix).
func NewHTTPClient(baseURL string, opts ...HTTPClientOption) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find maps 404 to ErrNoResults and 400 to a validation error carrying the
// server's message verbatim. Transport failures and 5xx wrap
// sentinel.ErrUnavailable.
func (c *HTTPClient) Find(ctx context.Context, postcode, houseNumber string) ([]models.Candidate, error) {
	q := url.Values{}
	q.Set("postcode", postcode)
	q.Set("streetnumber", houseNumber)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+searchPath+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build lookup request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lookup request: %w: %w", sentinel.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var body models.SearchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode lookup response (status %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK && body.Status == models.StatusOK:
		return body.Details, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNoResults
	case resp.StatusCode == http.StatusBadRequest:
		return nil, dErrors.New(dErrors.CodeValidation, body.ErrorMessage)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("lookup failed with status %d: %s: %w", resp.StatusCode, body.ErrorMessage, sentinel.ErrUnavailable)
	default:
		return nil, fmt.Errorf("lookup failed with status %d: %s", resp.StatusCode, body.ErrorMessage)
	}
}
