package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"franchise-crm/internal/models"

	"golang.org/x/time/rate"
)

// Place is the first hit of a Nominatim search.
type Place struct {
	Coordinates models.Coordinates
	DisplayName string
}

type nominatimResult struct {
	Lat         flexFloat `json:"lat"`
	Lon         flexFloat `json:"lon"`
	DisplayName string    `json:"display_name"`
}

// NominatimClient queries an OpenStreetMap Nominatim instance. Requests are
// throttled by limiter because the public instance allows about one request
// per second per client.
type NominatimClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewNominatimClient creates a client limited to rps requests per second.
func NewNominatimClient(baseURL, userAgent string, httpClient *http.Client, timeout time.Duration, rps float64) *NominatimClient {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}
	return &NominatimClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		httpClient: httpClient,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// SearchPostalCode runs a structured postal-code query restricted to country.
func (c *NominatimClient) SearchPostalCode(ctx context.Context, postalCode, country string) (*Place, error) {
	params := url.Values{}
	params.Set("postalcode", postalCode)
	params.Set("country", country)
	return c.search(ctx, params)
}

// SearchText runs a free-form query such as "Vadodara, Gujarat, India".
func (c *NominatimClient) SearchText(ctx context.Context, query string) (*Place, error) {
	params := url.Values{}
	params.Set("q", query)
	return c.search(ctx, params)
}

func (c *NominatimClient) search(ctx context.Context, params url.Values) (*Place, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nominatim: rate limit: %w", err)
	}

	params.Set("format", "json")
	params.Set("limit", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("nominatim: create request: %w", err)
	}
	// Nominatim rejects requests without an identifying User-Agent.
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nominatim: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("nominatim: status %d: %s", resp.StatusCode, string(b))
	}

	var out []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("nominatim: decode: %w", err)
	}
	if len(out) == 0 {
		return nil, models.ErrNotFound
	}
	p := &Place{
		Coordinates: models.Coordinates{Lat: float64(out[0].Lat), Lon: float64(out[0].Lon)},
		DisplayName: out[0].DisplayName,
	}
	if p.Coordinates.Unresolved() {
		return nil, models.ErrNoCoordinates
	}
	return p, nil
}
