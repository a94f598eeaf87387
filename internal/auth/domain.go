package auth

import (
	"time"

	"github.com/fauves/fauves-server/internal/rbac"
)

// User represents a user account as seen by the authentication flows.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         rbac.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
