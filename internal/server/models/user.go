// Package models defines server-side data models persisted by the repositories.
package models

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is an account. PasswordHash and VerificationToken never leave the
// server; the transport layer builds its own views.
type User struct {
	ID                int64
	Username          string
	Email             string
	PasswordHash      string
	FirstName         *string
	LastName          *string
	Bio               *string
	ProfilePicture    *string
	IsVerified        bool
	VerificationToken *string
	Role              Role
	CreatedAt         time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// UserPatch lists the user fields changed by a partial update. Nil means
// "leave as is".
type UserPatch struct {
	Email             *string
	FirstName         *string
	LastName          *string
	Bio               *string
	ProfilePicture    *string
	IsVerified        *bool
	VerificationToken **string
	Role              *Role
}

// Apply merges p into u.
func (p UserPatch) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = p.FirstName
	}
	if p.LastName != nil {
		u.LastName = p.LastName
	}
	if p.Bio != nil {
		u.Bio = p.Bio
	}
	if p.ProfilePicture != nil {
		u.ProfilePicture = p.ProfilePicture
	}
	if p.IsVerified != nil {
		u.IsVerified = *p.IsVerified
	}
	if p.VerificationToken != nil {
		u.VerificationToken = *p.VerificationToken
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
}
