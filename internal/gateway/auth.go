package gateway

import (
	"context"
	"fmt"
	"net/http"
)

// Verify validates the current bearer token against the gateway and
// returns the profile it belongs to.
func (c *Client) Verify(ctx context.Context) (*User, error) {
	var resp struct {
		Success bool `json:"success"`
		User    User `json:"usuario"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/verificar", nil, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway rejected token verification")
	}
	return &resp.User, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"senha"`
	MFACode  string `json:"mfaCode,omitempty"`
}

// Login submits credentials, optionally with a one-time code. When the
// account has MFA enabled and no code was given, the result has
// RequiresMFA set and the caller must retry with the code.
func (c *Client) Login(ctx context.Context, email, password, mfaCode string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, loginRequest{
		Email:    email,
		Password: password,
		MFACode:  mfaCode,
	}, &result)
	if err != nil {
		return nil, err
	}
	if result.RequiresMFA {
		return &result, nil
	}
	if result.Token == "" {
		return nil, fmt.Errorf("gateway login response contained no token")
	}
	return &result, nil
}

// MFAStatus reports whether multi-factor auth is enabled for the current
// user.
func (c *Client) MFAStatus(ctx context.Context) (bool, error) {
	var resp struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/auth/mfa/status", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.Enabled, nil
}

// MFASetup starts MFA enrollment and returns the QR code and secret to
// load into an authenticator app.
func (c *Client) MFASetup(ctx context.Context) (*MFASetup, error) {
	var resp struct {
		Success bool   `json:"success"`
		QRCode  string `json:"qrCode"`
		Secret  string `json:"secret"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/mfa/setup", nil, nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway refused MFA setup")
	}
	return &MFASetup{QRCode: resp.QRCode, Secret: resp.Secret}, nil
}

// MFAVerify confirms enrollment with a code from the authenticator app.
func (c *Client) MFAVerify(ctx context.Context, code string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/mfa/verify", nil, map[string]string{"code": code}, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("MFA code rejected: %s", resp.Error)
	}
	return nil
}

// MFADisable turns off multi-factor auth for the current user.
func (c *Client) MFADisable(ctx context.Context) error {
	var resp struct {
		Success bool `json:"success"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/auth/mfa/disable", nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("gateway refused to disable MFA")
	}
	return nil
}
