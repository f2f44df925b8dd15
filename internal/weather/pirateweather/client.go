// Package pirateweather is a client for the Pirate Weather forecast API, which
// serves DarkSky-compatible documents.
package pirateweather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/skywindow/skywindow/internal/provider/resilience"
	"github.com/skywindow/skywindow/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "pirateweather"

	// DefaultBaseURL is the Pirate Weather forecast endpoint.
	DefaultBaseURL = "https://api.pirateweather.net/forecast"
)

// ClientConfig holds configuration for the Pirate Weather client.
type ClientConfig struct {
	// APIKey is the Pirate Weather API key (required).
	APIKey string

	// BaseURL is the forecast endpoint (optional, defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (optional).
	// If nil, uses a resilient client with defaults.
	HTTPClient *resilience.Client

	// Logger for client operations.
	Logger zerolog.Logger
}

// Client is a Pirate Weather API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new Pirate Weather client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
		now:        time.Now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// GetForecast fetches current, minutely and 168 hours of hourly conditions.
//
// Metric requests are sent as "ca" so wind arrives in km/h rather than m/s;
// the returned forecast is still labelled with the requested unit system.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64, units weather.UnitSystem) (*weather.Forecast, error) {
	endpoint := fmt.Sprintf("%s/%s/%.4f,%.4f?%s",
		c.baseURL, url.PathEscape(c.apiKey), lat, lon,
		url.Values{"units": {requestUnits(units)}, "extend": {"hourly"}}.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var doc forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	c.logger.Debug().
		Float64("lat", lat).
		Float64("lon", lon).
		Int("hourly", len(doc.Hourly.Data)).
		Int("minutely", len(doc.Minutely.Data)).
		Msg("received forecast")

	return &weather.Forecast{
		Lat:       doc.Latitude,
		Lon:       doc.Longitude,
		Timezone:  doc.Timezone,
		Units:     units,
		Currently: doc.Currently,
		Hourly:    doc.Hourly.Data,
		Minutely:  doc.Minutely.Data,
		FetchedAt: c.now(),
	}, nil
}

func requestUnits(units weather.UnitSystem) string {
	switch units {
	case weather.UnitsMetric, weather.UnitsCanada:
		return string(weather.UnitsCanada)
	case weather.UnitsUK:
		return string(weather.UnitsUK)
	default:
		return string(weather.UnitsImperial)
	}
}

// forecastResponse is the subset of the DarkSky document the engine consumes.
// Data points decode straight into weather.Sample, whose field names match.
type forecastResponse struct {
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	Timezone  string          `json:"timezone"`
	Currently *weather.Sample `json:"currently"`
	Minutely  struct {
		Data []weather.MinuteSample `json:"data"`
	} `json:"minutely"`
	Hourly struct {
		Data []weather.Sample `json:"data"`
	} `json:"hourly"`
}

// Ensure Client implements weather.Provider.
var _ weather.Provider = (*Client)(nil)
