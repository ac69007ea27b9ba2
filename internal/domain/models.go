// internal/domain/models.go
package domain

import "time"

// PermissionLevel controls which tables a caller may query.
type PermissionLevel int

const (
	// PermissionStandard may query any table.
	PermissionStandard PermissionLevel = 1
	// PermissionRestricted may only query the configured product table.
	PermissionRestricted PermissionLevel = 2
)

// Recognized reports whether the level is one of the two known values.
// Anything else fails closed before any SQL is generated.
func (p PermissionLevel) Recognized() bool {
	return p == PermissionStandard || p == PermissionRestricted
}

// User defines the structure for user data in the metadata DB
type User struct {
	UserId       string          `json:"user_id"`
	Username     string          `json:"username"`
	Email        string          `json:"email"`
	PasswordHash string          `json:"-"` // Keep out of JSON responses
	Permission   PermissionLevel `json:"permission"`
	CreatedAt    time.Time       `json:"created_at"`
}

// Identity is the verified {subject, permission} pair produced by token
// validation. It lives for one request and is never persisted.
type Identity struct {
	UserID     string          `json:"user_id"`
	Username   string          `json:"username"`
	Permission PermissionLevel `json:"permission"`
}
