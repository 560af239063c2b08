package gateway

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// NewUser carries the fields for user creation; the password is only ever
// sent, never stored locally.
type NewUser struct {
	Name     string `json:"nome"`
	Email    string `json:"email"`
	Password string `json:"senha"`
	Role     string `json:"funcao,omitempty"`
}

// ListUsers returns all registered users.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var resp struct {
		Success bool   `json:"success"`
		Users   []User `json:"usuarios"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/usuarios", nil, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

// CreateUser registers a new user account.
func (c *Client) CreateUser(ctx context.Context, user NewUser) (*User, error) {
	var resp struct {
		Success bool   `json:"success"`
		User    User   `json:"usuario"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/usuarios", nil, user, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway refused user creation: %s", resp.Error)
	}
	return &resp.User, nil
}

// UpdateUser applies a partial profile update by ID and returns the
// resulting profile.
func (c *Client) UpdateUser(ctx context.Context, id string, user User) (*User, error) {
	var resp struct {
		Success bool   `json:"success"`
		User    User   `json:"usuario"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/usuarios/"+url.PathEscape(id), nil, user, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, fmt.Errorf("gateway refused user update: %s", resp.Error)
	}
	return &resp.User, nil
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/usuarios/"+url.PathEscape(id), nil, nil, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("gateway refused user deletion: %s", resp.Error)
	}
	return nil
}

// ChangePassword sets a new password for a user, validated server-side
// against the current one.
func (c *Client) ChangePassword(ctx context.Context, id, current, updated string) error {
	body := map[string]string{
		"senhaAtual": current,
		"novaSenha":  updated,
	}
	var resp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := c.do(ctx, http.MethodPut, "/api/usuarios/"+url.PathEscape(id)+"/senha", nil, body, &resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("gateway refused password change: %s", resp.Error)
	}
	return nil
}
