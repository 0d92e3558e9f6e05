package domain

import "time"

// AuthFlow identifies which flow issued a one-time code.
type AuthFlow string

const (
	FlowSignup    AuthFlow = "signup"
	FlowMagicLink AuthFlow = "magiclink"
	FlowRecovery  AuthFlow = "recovery"
	FlowOAuth     AuthFlow = "oauth"
)

// AuthCode is a single-use code mailed to a user. Only its hash is stored.
type AuthCode struct {
	CodeHash  string
	UserID    string
	Flow      AuthFlow
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

// Session is what a successful sign-in or code exchange returns.
type Session struct {
	AccessToken           string    `json:"accessToken"`
	AccessTokenExpiresAt  time.Time `json:"accessTokenExpiresAt"`
	RefreshToken          string    `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time `json:"refreshTokenExpiresAt"`
	User                  *User     `json:"user"`
	Flow                  AuthFlow  `json:"flow,omitempty"`
}
