package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ListSilos returns every registered silo.
func (c *Client) ListSilos(ctx context.Context) ([]Silo, error) {
	var resp struct {
		Success bool   `json:"success"`
		Silos   []Silo `json:"silos"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/silos", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Silos, nil
}

// CreateSilo registers a new silo.
func (c *Client) CreateSilo(ctx context.Context, silo Silo) (*Silo, error) {
	var resp struct {
		Success bool   `json:"success"`
		Silo    Silo   `json:"silo"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/silos", nil, silo, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway refused silo creation: %s", resp.Error)
	}
	return &resp.Silo, nil
}

// UpdateSilo applies a partial update to a silo by ID.
func (c *Client) UpdateSilo(ctx context.Context, id string, silo Silo) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/silos/"+url.PathEscape(id), nil, silo, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("gateway refused silo update: %s", resp.Error)
	}
	return nil
}

// DeleteSilo removes a silo registration.
func (c *Client) DeleteSilo(ctx context.Context, id string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/silos/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("gateway refused silo deletion: %s", resp.Error)
	}
	return nil
}

// SiloStatistics returns the aggregate silo counts shown on the dashboard
// metric cards.
func (c *Client) SiloStatistics(ctx context.Context) (*SiloStatistics, error) {
	var stats SiloStatistics
	if err := c.do(ctx, http.MethodGet, "/api/silos/estatisticas", nil, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
