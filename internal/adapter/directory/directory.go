package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/beratbay/broadcast-engage/internal/domain"
	"github.com/beratbay/broadcast-engage/pkg/circuitbreaker"
	"github.com/beratbay/broadcast-engage/pkg/logger"
)

// Client resolves group and team display names from the directory service.
// Lookups are read-only and callers treat failures as degradable, so a single
// breaker covers both endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New("directory"),
	}
}

type groupResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type teamNamesRequest struct {
	IDs []string `json:"ids"`
}

type teamNamesResponse struct {
	Names []string `json:"names"`
}

func (c *Client) GroupName(ctx context.Context, groupID string) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		body, err := c.get(ctx, "/groups/"+url.PathEscape(groupID))
		if err != nil {
			return nil, err
		}
		var resp groupResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		return resp.DisplayName, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) TeamNames(ctx context.Context, teamIDs []string) ([]string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		payload, err := json.Marshal(teamNamesRequest{IDs: teamIDs})
		if err != nil {
			return nil, err
		}
		body, err := c.post(ctx, "/teams/names", payload)
		if err != nil {
			return nil, err
		}
		var resp teamNamesResponse
		if err := json.Unmarshal(body, &resp); err != nil {
			return nil, err
		}
		return resp.Names, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, path string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	if correlationID := logger.CorrelationIDFromContext(req.Context()); correlationID != "" {
		req.Header.Set("X-Correlation-ID", correlationID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorDown, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		return nil, fmt.Errorf("%w: status %d", domain.ErrCollaboratorDown, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("directory request failed: status %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
