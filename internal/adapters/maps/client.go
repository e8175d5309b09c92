package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"whentomeet/internal/domain"
)

const apiBase = "https://maps.googleapis.com/maps/api"

// Client calls the Google Maps web services. It implements both
// domain.Geocoder and domain.RoutePlanner.
type Client struct {
	httpClient *http.Client
	apiKey     string
}

// NewClient returns a maps client using the given API key.
func NewClient(httpClient *http.Client, apiKey string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{httpClient: httpClient, apiKey: apiKey}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

// Geocode resolves an address via the Geocoding API.
func (c *Client) Geocode(ctx context.Context, address string) (domain.GeoPoint, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("key", c.apiKey)

	var data geocodeResponse
	if err := c.get(ctx, "/geocode/json", query, &data); err != nil {
		return domain.GeoPoint{}, err
	}
	if data.Status != "OK" || len(data.Results) == 0 {
		return domain.GeoPoint{}, fmt.Errorf("geocode %q: status %s", address, data.Status)
	}
	result := data.Results[0]
	return domain.GeoPoint{
		Lat:     result.Geometry.Location.Lat,
		Lng:     result.Geometry.Location.Lng,
		Address: result.FormattedAddress,
	}, nil
}

type distanceMatrixResponse struct {
	Status string `json:"status"`
	Rows   []struct {
		Elements []struct {
			Status   string `json:"status"`
			Duration struct {
				Value int64 `json:"value"`
			} `json:"duration"`
		} `json:"elements"`
	} `json:"rows"`
}

// Route estimates travel time between two points via the Distance Matrix API.
func (c *Client) Route(ctx context.Context, from, to domain.GeoPoint) (time.Duration, error) {
	query := url.Values{}
	query.Set("origins", fmt.Sprintf("%f,%f", from.Lat, from.Lng))
	query.Set("destinations", fmt.Sprintf("%f,%f", to.Lat, to.Lng))
	query.Set("key", c.apiKey)

	var data distanceMatrixResponse
	if err := c.get(ctx, "/distancematrix/json", query, &data); err != nil {
		return 0, err
	}
	if data.Status != "OK" || len(data.Rows) == 0 || len(data.Rows[0].Elements) == 0 {
		return 0, fmt.Errorf("distance matrix: status %s", data.Status)
	}
	element := data.Rows[0].Elements[0]
	if element.Status != "OK" {
		return 0, fmt.Errorf("distance matrix: no route (%s)", element.Status)
	}
	return time.Duration(element.Duration.Value) * time.Second, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch from maps api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("maps api returned status: %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode maps response: %w", err)
	}
	return nil
}
