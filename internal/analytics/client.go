// Package analytics implements the client for the analytics service, which
// computes statistics, anomaly detection and trend regression over device
// history. This client only fetches results; the algorithms live in the
// service.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/joao-cbj/silowatch/pkg/config"
	"go.uber.org/zap"
)

// Indicator names exposed by the /api/indicators endpoints.
const (
	IndicatorThermalAmplitude = "amplitude-termica"
	IndicatorHumidityRate     = "taxa-umidade"
	IndicatorFungalRisk       = "indice-fungos"
	IndicatorCriticalTime     = "tempo-critico"
)

// Client is an unauthenticated REST client for the analytics service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewClient creates an analytics client.
func NewClient(cfg config.AnalyticsData, logger *zap.SugaredLogger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = time.Duration(config.DefaultGatewayTimeoutSeconds) * time.Second
	}

	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("error creating analytics request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling analytics service %s: %w", path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("error reading analytics response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("analytics service %s returned %d: %s", path, resp.StatusCode, string(raw))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("error decoding analytics response for %s: %w", path, err)
	}
	return nil
}

// Statistics fetches per-metric statistics for a device over a date range
// (YYYY-MM-DD).
func (c *Client) Statistics(ctx context.Context, deviceID, startDate, endDate string) (*DeviceStatistics, error) {
	query := url.Values{}
	if startDate != "" {
		query.Set("start_date", startDate)
	}
	if endDate != "" {
		query.Set("end_date", endDate)
	}

	var stats DeviceStatistics
	if err := c.get(ctx, "/api/analytics/estatisticas/"+url.PathEscape(deviceID), query, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Anomalies fetches the anomalies detected for a device over the last
// hours of history.
func (c *Client) Anomalies(ctx context.Context, deviceID string, hours int) (*AnomalyReport, error) {
	query := url.Values{}
	query.Set("hours", strconv.Itoa(hours))

	var report AnomalyReport
	if err := c.get(ctx, "/api/analytics/anomalias/"+url.PathEscape(deviceID), query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Trends fetches the regression outcome for a device over the last days.
func (c *Client) Trends(ctx context.Context, deviceID string, days int) (*TrendReport, error) {
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	var report TrendReport
	if err := c.get(ctx, "/api/analytics/tendencias/"+url.PathEscape(deviceID), query, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeviceSummary fetches the per-device condition summary.
func (c *Client) DeviceSummary(ctx context.Context, deviceID string) (*DeviceSummary, error) {
	var summary DeviceSummary
	if err := c.get(ctx, "/api/analytics/resumo-dispositivo/"+url.PathEscape(deviceID), nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// Indicator fetches one named indicator series for a device over the last
// days.
func (c *Client) Indicator(ctx context.Context, indicator, deviceID string, days int) (*IndicatorSeries, error) {
	query := url.Values{}
	query.Set("days", strconv.Itoa(days))

	var series IndicatorSeries
	path := "/api/indicators/" + url.PathEscape(indicator) + "/" + url.PathEscape(deviceID)
	if err := c.get(ctx, path, query, &series); err != nil {
		return nil, err
	}
	return &series, nil
}

// GlobalMetrics fetches the fleet-wide metrics for the dashboard cards.
func (c *Client) GlobalMetrics(ctx context.Context) (*GlobalMetrics, error) {
	var metrics GlobalMetrics
	if err := c.get(ctx, "/api/metrics/global", nil, &metrics); err != nil {
		return nil, err
	}
	return &metrics, nil
}
