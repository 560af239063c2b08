package meteo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joao-cbj/silowatch/internal/log"
	"github.com/joao-cbj/silowatch/pkg/config"
)

func TestFetch(t *testing.T) {
	var queries []map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		queries = append(queries, map[string]string{
			"latitude":      q.Get("latitude"),
			"longitude":     q.Get("longitude"),
			"timezone":      q.Get("timezone"),
			"current":       q.Get("current"),
			"daily":         q.Get("daily"),
			"forecast_days": q.Get("forecast_days"),
		})

		if q.Get("current") != "" {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"current": map[string]interface{}{
					"time":                 "2024-06-01T12:00",
					"temperature_2m":       29.4,
					"relative_humidity_2m": 71.0,
					"wind_speed_10m":       13.2,
				},
			})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"daily": map[string]interface{}{
				"time":               []string{"2024-06-01", "2024-06-02"},
				"temperature_2m_max": []float64{30.1, 28.7},
				"temperature_2m_min": []float64{22.3, 21.9},
			},
		})
	}))
	defer server.Close()

	client := NewClient(config.WeatherData{BaseURL: server.URL, Timezone: "America/Recife"}, log.GetSugaredLogger())
	loc := config.LocationData{Name: "Recife, PE", Latitude: -8.0476, Longitude: -34.877}

	report, err := client.Fetch(context.Background(), loc)
	require.NoError(t, err)
	require.Len(t, queries, 2)

	assert.Equal(t, "-8.0476", queries[0]["latitude"])
	assert.Equal(t, "-34.8770", queries[0]["longitude"])
	assert.Equal(t, "America/Recife", queries[0]["timezone"])
	assert.NotEmpty(t, queries[0]["current"])
	assert.Equal(t, "7", queries[1]["forecast_days"])

	require.NotNil(t, report.Current)
	assert.Equal(t, 29.4, report.Current.Temperature)
	require.NotNil(t, report.Forecast)
	assert.Len(t, report.Forecast.Time, 2)
	assert.Equal(t, "Recife, PE", report.Location.Name)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewClient(config.WeatherData{BaseURL: server.URL}, log.GetSugaredLogger())
	_, err := client.Fetch(context.Background(), config.DefaultLocation)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}
