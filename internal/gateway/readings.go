package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/joao-cbj/silowatch/pkg/timeseries"
)

// LatestReadings returns the most recent reading per device.
func (c *Client) LatestReadings(ctx context.Context) ([]timeseries.Reading, error) {
	var resp struct {
		Success bool                 `json:"success"`
		Data    []timeseries.Reading `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dados/ultimas", nil, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway reported failure fetching latest readings")
	}
	return resp.Data, nil
}

// DeviceReadings returns the raw readings for one device over the last
// hours of history. The gateway applies the time filter; readings come
// back in no guaranteed order.
func (c *Client) DeviceReadings(ctx context.Context, deviceID string, hours int) ([]timeseries.Reading, error) {
	query := url.Values{}
	query.Set("horas", strconv.Itoa(hours))

	var resp struct {
		Success  bool                 `json:"success"`
		Readings []timeseries.Reading `json:"dados"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/dados/"+url.PathEscape(deviceID), query, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway reported failure fetching readings for %s", deviceID)
	}
	return resp.Readings, nil
}

// ExportReadings fetches the gateway's raw CSV export for a device between
// two dates (YYYY-MM-DD) and returns the blob unmodified.
func (c *Client) ExportReadings(ctx context.Context, deviceID, start, end string) ([]byte, error) {
	query := url.Values{}
	query.Set("dispositivo", deviceID)
	query.Set("inicio", start)
	query.Set("fim", end)

	return c.doRaw(ctx, http.MethodGet, "/api/dados/exportar", query, nil)
}
