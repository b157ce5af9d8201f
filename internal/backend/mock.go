// internal/backend/mock.go
package backend

import (
	"context"

	"jobportal/internal/models"
)

// AdminEmail is the address the offline authenticator treats as an admin.
const AdminEmail = "admin@example.com"

// MockAuthenticator accepts any credentials without a network round trip.
// It backs auth.mode=mock for demos and offline use.
type MockAuthenticator struct{}

func (MockAuthenticator) Login(_ context.Context, email, _ string) (*models.User, error) {
	return &models.User{
		ID:          "1",
		Name:        "John Doe",
		Email:       email,
		IsAdmin:     email == AdminEmail,
		SavedJobs:   []string{},
		AppliedJobs: []string{},
	}, nil
}

func (MockAuthenticator) Signup(_ context.Context, name, email, _ string) (*models.User, error) {
	return &models.User{
		ID:          "1",
		Name:        name,
		Email:       email,
		SavedJobs:   []string{},
		AppliedJobs: []string{},
	}, nil
}

func (MockAuthenticator) Logout(context.Context) error { return nil }
