// Package ghcn reads the public GHCN-Daily resources: the fixed-width station
// registry, the inventory listing and the per-station compressed CSV files.
package ghcn

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultStationsURL  = "https://noaa-ghcn-pds.s3.amazonaws.com/ghcnd-stations.txt"
	DefaultInventoryURL = "https://noaa-ghcn-pds.s3.amazonaws.com/ghcnd-inventory.txt"
	DefaultByStationURL = "https://noaa-ghcn-pds.s3.amazonaws.com/csv.gz/by_station"
)

// Fetcher retrieves a read-only upstream resource. The caller closes the body.
// A response outside the 2xx range is reported as a *StatusError.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// StatusError is returned when the upstream answers with a non-success status.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("upstream returned status %d for %s: %s", e.StatusCode, e.URL, e.Body)
	}
	return fmt.Sprintf("upstream returned status %d for %s", e.StatusCode, e.URL)
}

// maxErrorBody caps how much of an error response is copied into a StatusError.
const maxErrorBody = 512

// HTTPFetcher is the production Fetcher.
type HTTPFetcher struct {
	httpClient *http.Client
}

// NewHTTPFetcher creates a fetcher whose requests, body reads included, are
// bounded by timeout.
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewHTTPFetcherWithClient creates a fetcher with a custom HTTP client
func NewHTTPFetcherWithClient(httpClient *http.Client) *HTTPFetcher {
	return &HTTPFetcher{httpClient: httpClient}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	return resp.Body, nil
}

// StationDataURL returns the address of a station's compressed CSV file below
// the by_station base URL.
func StationDataURL(baseURL, stationID string) string {
	return strings.TrimRight(baseURL, "/") + "/" + url.PathEscape(stationID) + ".csv.gz"
}
