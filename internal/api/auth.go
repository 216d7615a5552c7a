package api

import (
	"context"
	"net/http"
)

// User is the authenticated admin identity returned by the auth endpoints.
type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Credentials is the email/password login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         User   `json:"user"`
}

// Login exchanges credentials for a token pair and arms the session.
func (c *Client) Login(ctx context.Context, creds Credentials) (User, error) {
	var resp authResponse
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/login", creds, &resp); err != nil {
		return User{}, err
	}
	if c.session != nil {
		c.session.SetTokens(resp.AccessToken, resp.RefreshToken)
	}
	return resp.User, nil
}

// LoginWithGoogle exchanges a Google ID token for a session.
func (c *Client) LoginWithGoogle(ctx context.Context, idToken string) (User, error) {
	var resp authResponse
	body := map[string]string{"token": idToken}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/google-login", body, &resp); err != nil {
		return User{}, err
	}
	if c.session != nil {
		c.session.SetTokens(resp.AccessToken, resp.RefreshToken)
	}
	return resp.User, nil
}

// Refresh trades the stored refresh token for a fresh access token. The
// session stays armed on success; a rejection tears it down via the usual
// 401 path.
func (c *Client) Refresh(ctx context.Context) error {
	if c.session == nil || c.session.RefreshToken() == "" {
		return &Error{Status: http.StatusUnauthorized, Message: "no refresh token"}
	}
	var resp authResponse
	body := map[string]string{"refreshToken": c.session.RefreshToken()}
	if err := c.sendJSON(ctx, http.MethodPost, "/auth/refresh", body, &resp); err != nil {
		return err
	}
	c.session.SetTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

// Logout tells the server to revoke the tokens, then tears down the local
// session regardless of the server's answer.
func (c *Client) Logout(ctx context.Context) error {
	err := c.sendJSON(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if c.session != nil {
		c.session.Logout()
	}
	return err
}
