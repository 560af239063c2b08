package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// ScanDevices asks the provisioning gateway to scan for ESP32 devices in
// setup mode over BLE. The scan itself runs on the gateway hardware.
func (c *Client) ScanDevices(ctx context.Context) ([]BLEDevice, error) {
	var resp struct {
		Success bool        `json:"success"`
		Devices []BLEDevice `json:"dispositivos"`
		Error   string      `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/hybrid-provisioning/scan", nil, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("provisioning scan failed: %s", resp.Error)
	}
	return resp.Devices, nil
}

// Provision pairs a scanned device with a registered silo.
func (c *Client) Provision(ctx context.Context, siloID, deviceMAC string) error {
	body := map[string]string{
		"siloId":  siloID,
		"macSilo": deviceMAC,
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/hybrid-provisioning/provision", nil, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("provisioning failed: %s", resp.Error)
	}
	return nil
}

// ProvisioningGatewayStatus reports whether the ESP32 provisioning gateway
// is online.
func (c *Client) ProvisioningGatewayStatus(ctx context.Context) (*ProvisioningStatus, error) {
	var status ProvisioningStatus
	if err := c.do(ctx, http.MethodGet, "/api/hybrid-provisioning/status", nil, nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Unpair disconnects a silo's device from the MQTT broker and clears its
// provisioning.
func (c *Client) Unpair(ctx context.Context, siloID string) error {
	body := map[string]string{"siloId": siloID}
	var resp struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/mqtt-provisioning/desintegrar", nil, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("unpairing failed: %s", resp.Error)
	}
	return nil
}
