// internal/stores/user-session/models.go
package usersession

import (
	"context"
	"io"

	"jobportal/internal/models"
)

// StorageKey names the persisted session record.
const StorageKey = "auth-storage"

// Snapshot is an immutable copy of the session.
type Snapshot struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// record is the persisted form. It mirrors Snapshot but is never trusted as a
// credential on restore.
type record struct {
	User            *models.User `json:"user"`
	IsAuthenticated bool         `json:"isAuthenticated"`
}

// CVUploader stores a CV file and returns its URL.
type CVUploader interface {
	UploadCV(ctx context.Context, filename string, r io.Reader) (string, error)
}
