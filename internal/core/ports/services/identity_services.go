package services

import (
	"context"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// IdentityReaderSvc reads accounts and their metadata.
type IdentityReaderSvc interface {
	GetUser(ctx context.Context, userID string) (*domain.User, error)

	// UpdateUserMetadata merges patch into the user's metadata and returns the result.
	// Keys mapped to nil are removed; other keys are kept.
	UpdateUserMetadata(ctx context.Context, userID string, patch domain.Metadata) (domain.Metadata, error)
}

// IdentityAuthSvc establishes sessions.
type IdentityAuthSvc interface {
	// SignUp creates the account and mails a confirmation code. No session is returned.
	SignUp(ctx context.Context, email, password string, metadata domain.Metadata) (*domain.User, error)

	SignIn(ctx context.Context, email, password string) (*domain.Session, error)

	// ExchangeCodeForSession consumes a mailed single-use code (signup,
	// magic link or recovery). Session.Flow tells which.
	ExchangeCodeForSession(ctx context.Context, code string) (*domain.Session, error)

	// ExchangeGoogleCode completes the Google OAuth code flow.
	ExchangeGoogleCode(ctx context.Context, code string) (*domain.Session, error)

	// SessionFromTokens validates tokens delivered through a legacy URL fragment.
	SessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error)

	RefreshSession(ctx context.Context, userID, refreshToken string) (*domain.Session, error)
	SignOut(ctx context.Context, userID string) error
}

// IdentityRecoverySvc covers emailed sign-in links and password changes.
type IdentityRecoverySvc interface {
	SendMagicLink(ctx context.Context, email string) error

	// RequestPasswordRecovery mails a recovery code when the account exists.
	// It reports success either way.
	RequestPasswordRecovery(ctx context.Context, email string) error

	UpdatePassword(ctx context.Context, userID, newPassword string) error
}

// IdentityProviderSvc combines all identity operations.
type IdentityProviderSvc interface {
	IdentityReaderSvc
	IdentityAuthSvc
	IdentityRecoverySvc
}
