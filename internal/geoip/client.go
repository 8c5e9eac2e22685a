package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const httpTimeout = 10 * time.Second

const ipinfoDefaultURL = "https://ipinfo.io"

// Location is a resolved client location.
type Location struct {
	City      string
	Country   string
	Latitude  float64
	Longitude float64
}

// DefaultLocation is used whenever IP lookup fails for any reason.
// London per the documented fallback.
var DefaultLocation = Location{
	City:      "London",
	Country:   "GB",
	Latitude:  51.5074,
	Longitude: -0.1278,
}

// Client resolves an IP address to a city-level location via ipinfo.io.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	log     *slog.Logger
}

// NewClient constructs a Client with the given API token.
func NewClient(token string, log *slog.Logger) *Client {
	return &Client{token: token, baseURL: ipinfoDefaultURL, client: &http.Client{Timeout: httpTimeout}, log: log}
}

// NewClientWithURL constructs a Client pointing at a custom base URL (for tests).
func NewClientWithURL(baseURL, token string, log *slog.Logger) *Client {
	return &Client{token: token, baseURL: baseURL, client: &http.Client{Timeout: httpTimeout}, log: log}
}

type ipinfoResponse struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Loc     string `json:"loc"`
}

// Lookup resolves ip to a location. It never fails: any lookup or parse
// error falls back to DefaultLocation, with the cause logged.
func (c *Client) Lookup(ctx context.Context, ip string) Location {
	loc, err := c.lookup(ctx, ip)
	if err != nil {
		c.log.Warn("ip lookup failed, using default location", "ip", ip, "err", err)
		return DefaultLocation
	}
	return loc
}

func (c *Client) lookup(ctx context.Context, ip string) (Location, error) {
	endpoint := c.baseURL + "/" + ip + "/json"
	if c.token != "" {
		endpoint += "?token=" + c.token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Location{}, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Location{}, fmt.Errorf("GET %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Location{}, fmt.Errorf("GET %s returned status %d", endpoint, resp.StatusCode)
	}

	var raw ipinfoResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return Location{}, fmt.Errorf("decoding ipinfo response: %w", err)
	}

	lat, lon, err := parseLoc(raw.Loc)
	if err != nil {
		return Location{}, err
	}
	if raw.City == "" || raw.Country == "" {
		return Location{}, fmt.Errorf("ipinfo response missing city or country")
	}

	return Location{City: raw.City, Country: raw.Country, Latitude: lat, Longitude: lon}, nil
}

// parseLoc splits an ipinfo "lat,lon" pair.
func parseLoc(loc string) (float64, float64, error) {
	parts := strings.Split(loc, ",")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed loc %q", loc)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing latitude from %q: %w", loc, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing longitude from %q: %w", loc, err)
	}
	return lat, lon, nil
}
