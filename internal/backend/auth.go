// internal/backend/auth.go
package backend

import (
	"context"

	apperrors "jobportal/internal/common/errors"
	apphttp "jobportal/internal/common/http"
	"jobportal/internal/models"
)

// Authenticator exchanges credentials for a user record.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Signup(ctx context.Context, name, email, password string) (*models.User, error)
	Logout(ctx context.Context) error
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	User *models.User `json:"user"`
}

// Login posts credentials to the auth endpoint. A rejection carries the
// backend's message verbatim.
func (c *Client) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp authResponse
	if err := c.http.PostJSON(ctx, PathLogin, loginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, apphttp.WithFallbackMessage(err, "Login failed")
	}
	return userFrom(PathLogin, resp)
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*models.User, error) {
	var resp authResponse
	if err := c.http.PostJSON(ctx, PathSignup, signupRequest{Name: name, Email: email, Password: password}, &resp); err != nil {
		return nil, apphttp.WithFallbackMessage(err, "Signup failed")
	}
	return userFrom(PathSignup, resp)
}

// Logout tells the backend the session ended. Callers treat it as best effort.
func (c *Client) Logout(ctx context.Context) error {
	return c.http.PostJSON(ctx, PathLogout, struct{}{}, nil)
}

func userFrom(endpoint string, resp authResponse) (*models.User, error) {
	if resp.User == nil || resp.User.ID == "" {
		return nil, apperrors.NewDecodeError(endpoint, errMissingUser)
	}
	u := resp.User.Clone()
	if u.SavedJobs == nil {
		u.SavedJobs = []string{}
	}
	if u.AppliedJobs == nil {
		u.AppliedJobs = []string{}
	}
	return u, nil
}
