package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"franchise-crm/internal/models"
)

// PostOffice is the first post office India Post lists for a pincode.
type PostOffice struct {
	Name      string    `json:"Name"`
	District  string    `json:"District"`
	Division  string    `json:"Division"`
	Region    string    `json:"Region"`
	Block     string    `json:"Block"`
	State     string    `json:"State"`
	Country   string    `json:"Country"`
	Pincode   string    `json:"Pincode"`
	Latitude  flexFloat `json:"Latitude"`
	Longitude flexFloat `json:"Longitude"`
}

// Coordinates returns the post office location; see models.Coordinates.Unresolved.
func (p PostOffice) Coordinates() models.Coordinates {
	return models.Coordinates{Lat: float64(p.Latitude), Lon: float64(p.Longitude)}
}

type indiaPostResponse struct {
	Message    string       `json:"Message"`
	Status     string       `json:"Status"`
	PostOffice []PostOffice `json:"PostOffice"`
}

// IndiaPostClient calls the public api.postalpincode.in directory.
type IndiaPostClient struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewIndiaPostClient creates a client. timeout bounds each lookup.
func NewIndiaPostClient(baseURL string, httpClient *http.Client, timeout time.Duration) *IndiaPostClient {
	return &IndiaPostClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    timeout,
	}
}

// LookupPincode returns the first post office for pincode. A non-success
// status or an empty list yields models.ErrNotFound.
func (c *IndiaPostClient) LookupPincode(ctx context.Context, pincode string) (*PostOffice, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + "/pincode/" + url.PathEscape(pincode)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("indiapost: create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("indiapost: http: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("indiapost: status %d: %s", resp.StatusCode, string(b))
	}

	var out []indiaPostResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("indiapost: decode: %w", err)
	}
	if len(out) == 0 || out[0].Status != "Success" || len(out[0].PostOffice) == 0 {
		return nil, models.ErrNotFound
	}
	po := out[0].PostOffice[0]
	return &po, nil
}

// flexFloat decodes numbers that may arrive as JSON numbers, numeric strings,
// empty strings, "NA" or null. Anything unparseable decodes to 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		unq, err := strconv.Unquote(s)
		if err != nil {
			*f = 0
			return nil
		}
		s = strings.TrimSpace(unq)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
