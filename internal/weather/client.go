package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const httpTimeout = 10 * time.Second

const openMeteoDefaultURL = "https://api.open-meteo.com/v1/forecast"

const dailyFields = "weathercode,temperature_2m_max,temperature_2m_min,sunrise,sunset,uv_index_max"

// Client fetches multi-day forecasts from Open-Meteo.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a Client against the production Open-Meteo API.
func NewClient() *Client {
	return &Client{baseURL: openMeteoDefaultURL, client: &http.Client{Timeout: httpTimeout}}
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL string) *Client {
	return &Client{baseURL: baseURL, client: &http.Client{Timeout: httpTimeout}}
}

// Fetch retrieves a forecast of the given length for the given coordinates.
func (c *Client) Fetch(ctx context.Context, latitude, longitude float64, days int) (*Forecast, error) {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	params.Set("daily", dailyFields)
	params.Set("timezone", "auto")
	params.Set("forecast_days", strconv.Itoa(days))

	endpoint := c.baseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request for %s: %w", endpoint, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s returned status %d", endpoint, resp.StatusCode)
	}

	var forecast Forecast
	if err := json.NewDecoder(resp.Body).Decode(&forecast); err != nil {
		return nil, fmt.Errorf("decoding forecast response: %w", err)
	}

	return &forecast, nil
}
