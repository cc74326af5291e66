package directory

import (
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

// CatalogClient looks up the companion app in the external app catalog by its
// configured external reference id.
type CatalogClient struct {
	baseURL    string
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
}

func NewCatalogClient(baseURL string) *CatalogClient {
	return &CatalogClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   5 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New("app-catalog"),
	}
}

type catalogApp struct {
	ID string `json:"id"`
}

type catalogResponse struct {
	Apps []catalogApp `json:"apps"`
}

// ResolveAppID returns the catalog app id for the external reference, or an
// empty string when the catalog has no matching app.
func (c *CatalogClient) ResolveAppID(ctx context.Context, externalID string) (string, error) {
	result, err := c.breaker.Execute(func() (any, error) {
		endpoint := c.baseURL + "/apps?external_id=" + url.QueryEscape(externalID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
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

		if resp.StatusCode == http.StatusNotFound {
			return "", nil
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("%w: status %d", domain.ErrCollaboratorDown, resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		var catalog catalogResponse
		if err := json.Unmarshal(body, &catalog); err != nil {
			return nil, err
		}
		if len(catalog.Apps) == 0 {
			return "", nil
		}
		return catalog.Apps[0].ID, nil
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}
