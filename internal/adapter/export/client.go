package export

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/beratbay/broadcast-engage/internal/domain"
	"github.com/beratbay/broadcast-engage/pkg/circuitbreaker"
	"github.com/beratbay/broadcast-engage/pkg/logger"
)

// Client asks the export subsystem whether a finished export exists for a
// (user, broadcast) pair. The answer only feeds the download-eligibility flag
// on the detail view.
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
		breaker: circuitbreaker.New("export"),
	}
}

func (c *Client) HasExport(ctx context.Context, userID, broadcastID string) (bool, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		endpoint := c.baseURL + "/exports/" + url.PathEscape(userID) + "/" + url.PathEscape(broadcastID)
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
		if err != nil {
			return nil, err
		}
		if correlationID := logger.CorrelationIDFromContext(ctx); correlationID != "" {
			req.Header.Set("X-Correlation-ID", correlationID)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCollaboratorDown, err)
		}
		defer func() { _ = resp.Body.Close() }()

		switch {
		case resp.StatusCode == http.StatusOK:
			return true, nil
		case resp.StatusCode == http.StatusNotFound:
			return false, nil
		default:
			return nil, fmt.Errorf("%w: status %d", domain.ErrCollaboratorDown, resp.StatusCode)
		}
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}
