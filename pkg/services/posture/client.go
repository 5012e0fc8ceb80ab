package posture

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/de-tools/posture-exporter/pkg/adapters"
	"github.com/de-tools/posture-exporter/pkg/models/api"
	"github.com/de-tools/posture-exporter/pkg/models/domain"
	"github.com/de-tools/posture-exporter/pkg/services/config"
	"github.com/rs/zerolog"
)

// FetchError describes a failed attempt to retrieve the compliance view.
// StatusCode is zero when the request never produced a response.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("posture fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("posture fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client retrieves compliance views from the Sysdig posture API.
type Client struct {
	httpClient *http.Client
	url        string
	token      string
}

func NewClient(cfg config.Posture) (*Client, error) {
	endpoint, err := url.JoinPath(cfg.RegionURL, cfg.PostureAPIEndpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to build posture API URL from %q and %q: %w",
			cfg.RegionURL, cfg.PostureAPIEndpoint, err)
	}

	timeout := cfg.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		url:        endpoint,
		token:      cfg.APIToken,
	}, nil
}

// Fetch performs a single authenticated GET against the compliance views
// endpoint and returns the usable records it contains. There is no retry;
// the caller's collection interval provides the cadence.
func (c *Client) Fetch(ctx context.Context) ([]domain.ComplianceRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, &FetchError{URL: c.url, Err: fmt.Errorf("failed to build request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: c.url, Err: err}
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			zerolog.Ctx(ctx).Warn().Err(closeErr).Msg("failed to close posture response body")
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	var view api.ComplianceView
	if err := json.NewDecoder(resp.Body).Decode(&view); err != nil {
		return nil, &FetchError{
			URL:        c.url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("failed to decode compliance view: %w", err),
		}
	}

	return adapters.MapComplianceViewToRecords(ctx, view), nil
}
