package domain

import "time"

// AuthProvider records how a user authenticates.
type AuthProvider string

const (
	ProviderLocal  AuthProvider = "local"
	ProviderGoogle AuthProvider = "google"
)

// Metadata is the free-form key/value bag attached to a user.
// It carries transient intents only and is never a system of record.
type Metadata map[string]any

// User represents an account managed by the identity provider.
type User struct {
	UserID                 string       `json:"userID"`
	Email                  string       `json:"email"`
	FullName               string       `json:"fullName"`
	Phone                  string       `json:"phone"`
	PasswordHash           *string      `json:"-"`
	AuthProvider           AuthProvider `json:"authProvider"`
	ProviderUserID         *string      `json:"-"`
	EmailConfirmedAt       *time.Time   `json:"emailConfirmedAt,omitempty"`
	Metadata               Metadata     `json:"metadata"`
	RefreshTokenHash       string       `json:"-"`
	RefreshTokenExpiryTime *time.Time   `json:"-"`
	AuditFields
}

// IsConfirmed reports whether the user has confirmed their email address.
func (u *User) IsConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// GoogleUserInfo is the subset of Google ID token claims we use.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
}
