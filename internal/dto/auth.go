package dto

import (
	"time"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// --- Auth DTOs ---

// SignUpRequest is the signup form. Exactly one of TenantName or TenantID must be set.
type SignUpRequest struct {
	FullName        string `json:"fullName" binding:"required,min=2,max=100"`
	Phone           string `json:"phone" binding:"omitempty,max=40"`
	Email           string `json:"email" binding:"required,email,max=254"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
	TenantName      string `json:"tenantName"`
	Plan            string `json:"plan"`
	TenantID        string `json:"tenantId" binding:"omitempty,max=64"`
}

// LoginRequest holds email/password credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CallbackTokensRequest carries tokens a legacy implicit-flow callback found in the URL fragment.
type CallbackTokensRequest struct {
	AccessToken  string `json:"accessToken" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
	Type         string `json:"type"`
}

// ExchangeCodeRequest is the body of the Google code exchange.
// State echoes the value from the login URL when the client kept it.
type ExchangeCodeRequest struct {
	Code  string `json:"code" binding:"required"`
	State string `json:"state"`
}

// EmailRequest is used by magic-link and recovery requests.
type EmailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// UpdatePasswordRequest sets a new password for the signed-in user.
type UpdatePasswordRequest struct {
	Password        string `json:"password" binding:"required,min=6,max=72"`
	PasswordConfirm string `json:"passwordConfirm" binding:"required,eqfield=Password"`
}

// RefreshTokenRequest exchanges a refresh token for a new session.
type RefreshTokenRequest struct {
	UserID       string `json:"userID" binding:"required"`
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// MessageResponse is a plain user-facing message.
type MessageResponse struct {
	Message string `json:"message"`
}

// SessionResponse is the session handed to the client.
type SessionResponse struct {
	AccessToken           string       `json:"accessToken"`
	AccessTokenExpiresAt  time.Time    `json:"accessTokenExpiresAt"`
	RefreshToken          string       `json:"refreshToken"`
	RefreshTokenExpiresAt time.Time    `json:"refreshTokenExpiresAt"`
	User                  UserResponse `json:"user"`
}

// AuthResponse is returned by every route that establishes a session.
type AuthResponse struct {
	RedirectTo string                  `json:"redirectTo"`
	Session    SessionResponse         `json:"session"`
	Bootstrap  *domain.BootstrapResult `json:"bootstrap,omitempty"`
	Warning    string                  `json:"warning,omitempty"`
}

// CallbackFailureResponse is a short localized status; it carries no redirect.
type CallbackFailureResponse struct {
	Status string `json:"status"`
}

// GoogleLoginURLResponse carries the consent URL and its CSRF state.
type GoogleLoginURLResponse struct {
	URL   string `json:"url"`
	State string `json:"state"`
}

// ToSessionResponse converts domain.Session to DTO.
func ToSessionResponse(s *domain.Session) SessionResponse {
	resp := SessionResponse{
		AccessToken:           s.AccessToken,
		AccessTokenExpiresAt:  s.AccessTokenExpiresAt,
		RefreshToken:          s.RefreshToken,
		RefreshTokenExpiresAt: s.RefreshTokenExpiresAt,
	}
	if s.User != nil {
		resp.User = ToUserResponse(s.User)
	}
	return resp
}
