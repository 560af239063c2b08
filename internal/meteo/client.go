// Package meteo fetches current conditions and the 7-day forecast from the
// open-meteo API for the climate overlay. No authentication is required.
package meteo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/joao-cbj/silowatch/pkg/config"
	"go.uber.org/zap"
)

const (
	currentVariables = "temperature_2m,relative_humidity_2m,apparent_temperature,precipitation,rain,pressure_msl,wind_speed_10m,wind_direction_10m"
	dailyVariables   = "temperature_2m_max,temperature_2m_min,precipitation_sum,rain_sum,wind_speed_10m_max"
	forecastDays     = 7
)

// Current holds the present weather conditions at a location.
type Current struct {
	Time                string  `json:"time"`
	Temperature         float64 `json:"temperature_2m"`
	RelativeHumidity    float64 `json:"relative_humidity_2m"`
	ApparentTemperature float64 `json:"apparent_temperature"`
	Precipitation       float64 `json:"precipitation"`
	Rain                float64 `json:"rain"`
	PressureMSL         float64 `json:"pressure_msl"`
	WindSpeed           float64 `json:"wind_speed_10m"`
	WindDirection       float64 `json:"wind_direction_10m"`
}

// Daily holds the 7-day forecast as parallel arrays, one entry per day,
// matching open-meteo's response layout.
type Daily struct {
	Time             []string  `json:"time"`
	TemperatureMax   []float64 `json:"temperature_2m_max"`
	TemperatureMin   []float64 `json:"temperature_2m_min"`
	PrecipitationSum []float64 `json:"precipitation_sum"`
	RainSum          []float64 `json:"rain_sum"`
	WindSpeedMax     []float64 `json:"wind_speed_10m_max"`
}

// Report is the combined climate overlay payload.
type Report struct {
	Location config.LocationData `json:"localizacao"`
	Current  *Current            `json:"atual,omitempty"`
	Forecast *Daily              `json:"previsao,omitempty"`
}

// Client fetches weather data from open-meteo.
type Client struct {
	baseURL    string
	timezone   string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient creates a weather client.
func NewClient(cfg config.WeatherData, logger *zap.SugaredLogger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultWeatherBaseURL
	}
	timezone := cfg.Timezone
	if timezone == "" {
		timezone = config.DefaultWeatherTimezone
	}

	return &Client{
		baseURL:  baseURL,
		timezone: timezone,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Fetch returns current conditions plus the 7-day forecast for a location.
// Both come from the same endpoint with different variable sets; either
// half failing fails the whole fetch (the caller degrades gracefully).
func (c *Client) Fetch(ctx context.Context, loc config.LocationData) (*Report, error) {
	var current struct {
		Current Current `json:"current"`
	}
	query := c.locationQuery(loc)
	query.Set("current", currentVariables)
	if err := c.get(ctx, query, &current); err != nil {
		return nil, fmt.Errorf("error fetching current conditions: %w", err)
	}

	var forecast struct {
		Daily Daily `json:"daily"`
	}
	query = c.locationQuery(loc)
	query.Set("daily", dailyVariables)
	query.Set("forecast_days", fmt.Sprint(forecastDays))
	if err := c.get(ctx, query, &forecast); err != nil {
		return nil, fmt.Errorf("error fetching forecast: %w", err)
	}

	return &Report{
		Location: loc,
		Current:  &current.Current,
		Forecast: &forecast.Daily,
	}, nil
}

func (c *Client) locationQuery(loc config.LocationData) url.Values {
	v := url.Values{}
	v.Set("latitude", fmt.Sprintf("%.4f", loc.Latitude))
	v.Set("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	v.Set("timezone", c.timezone)
	return v
}

func (c *Client) get(ctx context.Context, query url.Values, out interface{}) error {
	endpoint := c.baseURL + "/v1/forecast?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating weather request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling open-meteo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading open-meteo response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("open-meteo returned %d: %s", resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("error decoding open-meteo response: %w", err)
	}
	return nil
}
