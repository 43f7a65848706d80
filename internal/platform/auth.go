package platform

import (
	"context"

	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// Login exchanges credentials for an access token. It never sends the
// current token, so a bad password cannot end an existing session. Cached
// reads of the previous user are dropped on success.
func (c *Client) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	var resp types.LoginResponse
	req := types.LoginRequest{Email: email, Password: password}
	if err := c.api.Post(ctx, "/auth/login", req, &resp, gateway.Anonymous()); err != nil {
		return nil, err
	}
	c.cache.Clear()
	return &resp, nil
}

// Register creates an account. It does not sign the user in.
func (c *Client) Register(ctx context.Context, req types.RegisterRequest) (*types.RegisterResponse, error) {
	var resp types.RegisterResponse
	if err := c.api.Post(ctx, "/auth/register", req, &resp, gateway.Anonymous()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Logout revokes the current token server-side and drops every cached read.
func (c *Client) Logout(ctx context.Context) error {
	defer c.cache.Clear()
	return c.api.Post(ctx, "/auth/logout", nil, nil)
}

// ClearCache drops every cached read, e.g. when the session changes
// without going through Login or Logout.
func (c *Client) ClearCache() {
	c.cache.Clear()
}

// Me returns the authenticated user.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.api.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// MeWithToken fetches the user for a token that is not yet the session's.
func (c *Client) MeWithToken(ctx context.Context, token string) (*types.User, error) {
	var user types.User
	if err := c.api.Get(ctx, "/auth/me", &user, gateway.WithToken(token)); err != nil {
		return nil, err
	}
	return &user, nil
}

// VerifyEmail confirms an email address with the emailed token.
func (c *Client) VerifyEmail(ctx context.Context, token string) (*types.MessageResponse, error) {
	var resp types.MessageResponse
	if err := c.api.Post(ctx, "/auth/verify-email", types.TokenRequest{Token: token}, &resp, gateway.Anonymous()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RequestPasswordReset emails a reset link.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) (*types.MessageResponse, error) {
	var resp types.MessageResponse
	if err := c.api.Post(ctx, "/auth/request-password-reset", types.EmailRequest{Email: email}, &resp, gateway.Anonymous()); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ResetPassword sets a new password using the emailed token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (*types.MessageResponse, error) {
	var resp types.MessageResponse
	req := types.ResetPasswordRequest{Token: token, NewPassword: newPassword}
	if err := c.api.Post(ctx, "/auth/reset-password", req, &resp, gateway.Anonymous()); err != nil {
		return nil, err
	}
	return &resp, nil
}
