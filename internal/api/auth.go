package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/skilltracker/skt/internal/apperr"
	"github.com/skilltracker/skt/internal/models"
)

// Profile is the /users/me response.
type Profile struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Name       string `json:"name"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
}

// DisplayName prefers the explicit name, then given/family, then the email
// local part.
func (p Profile) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.GivenName != "" {
		return strings.TrimSpace(p.GivenName + " " + p.FamilyName)
	}
	if at := strings.IndexByte(p.Email, '@'); at > 0 {
		return p.Email[:at]
	}
	return p.Email
}

// RegisterPayload is the /auth/register request body.
type RegisterPayload struct {
	Email       string      `json:"email" validate:"required,email"`
	Password    string      `json:"password" validate:"required,min=8"`
	GivenName   string      `json:"given_name" validate:"required"`
	FamilyName  string      `json:"family_name"`
	Role        models.Role `json:"role" validate:"required,oneof=employee manager"`
	IsActive    bool        `json:"is_active"`
	IsSuperuser bool        `json:"is_superuser"`
	IsVerified  bool        `json:"is_verified"`
}

// Login exchanges credentials for an access token. The endpoint is
// form-encoded, unlike the rest of the API.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	form := url.Values{
		"username": {email},
		"password": {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/jwt/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", apperr.Wrap(err, apperr.Auth, "could not build request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := c.http.Do(req)
	if err != nil {
		return "", apperr.Wrap(err, apperr.Auth, "could not reach the server")
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return "", apperr.Wrap(err, apperr.Auth, "could not read response")
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := detailMessage(data)
		if msg == "" {
			msg = "login failed"
		}
		c.log.Info("login rejected", zap.Int("status", res.StatusCode))
		return "", &apperr.Error{Kind: apperr.Auth, Status: res.StatusCode, Message: msg}
	}

	var body struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(data, &body); err != nil || body.AccessToken == "" {
		return "", apperr.New(apperr.Auth, "login response missing token")
	}
	return body.AccessToken, nil
}

// Register creates an account. The duplicate-email case is surfaced as a
// distinguished auth error.
func (c *Client) Register(ctx context.Context, p RegisterPayload) error {
	if err := c.validate.Struct(p); err != nil {
		return apperr.Wrap(err, apperr.Validation, "all registration fields are required")
	}
	return c.do(ctx, http.MethodPost, "/auth/register", p, nil)
}

// Me fetches the authenticated user's profile.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var p Profile
	if err := c.do(ctx, http.MethodGet, "/users/me", nil, &p); err != nil {
		return nil, err
	}
	if _, err := models.ParseRole(p.Role); err != nil {
		return nil, apperr.Wrap(err, apperr.Fetch, "profile carries an unknown role")
	}
	return &p, nil
}
