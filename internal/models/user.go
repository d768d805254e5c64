// Package models holds the domain types shared by the services, the storage
// layer and the HTTP handlers: the user account with its credential state and
// the email notification message.
package models

import "time"

// Role is the access level of an account.
type Role string

const (
	// RoleUser is assigned to every account at registration.
	RoleUser Role = "user"
	// RoleAdmin grants access to the authoring back office.
	RoleAdmin Role = "admin"
)

// User represents a registered account.
//
// VerificationCode and PasswordResetToken hold SHA-256 digests, never the raw
// values sent by email. PasswordResetToken and PasswordResetAt are either both
// set or both nil.
type User struct {
	UUID               string     // Unique identifier
	Pseudo             string     // Display name
	Email              string     // Lower-cased, unique
	PasswordHash       string     // bcrypt hash
	Role               Role       // user or admin
	Verified           bool       // Email address confirmed
	VerificationCode   *string    // Digest of the outstanding verification code
	PasswordResetToken *string    // Digest of the outstanding reset token
	PasswordResetAt    *time.Time // Reset token expiry
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
