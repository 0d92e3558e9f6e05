package repositories

import (
	"context"
	"time"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// UserReader defines read operations for user data
type UserReader interface {
	// FindUserByID retrieves a specific user by their ID.
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)

	// FindUserByEmail retrieves a user by their lowercased email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// FindUserByProviderDetails retrieves a user linked to an external provider account.
	FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error)
}

// UserWriter defines write operations for user data
type UserWriter interface {
	// SaveUser persists a new user. A taken email yields apperrors.ErrDuplicate.
	SaveUser(ctx context.Context, user domain.User) error

	// MergeUserMetadata merges patch into the stored metadata. Keys set to nil are removed.
	MergeUserMetadata(ctx context.Context, userID string, patch domain.Metadata) (domain.Metadata, error)

	// MarkEmailConfirmed sets email_confirmed_at if it is not already set.
	MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, userID, passwordHash string, at time.Time) error

	// LinkProvider attaches an external provider identity to an existing user.
	LinkProvider(ctx context.Context, userID string, provider domain.AuthProvider, providerUserID string) error
}

// UserSessionManager defines refresh-token bookkeeping.
type UserSessionManager interface {
	UpdateRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiresAt time.Time) error
	ClearRefreshToken(ctx context.Context, userID string) error
}

// UserRepositoryFacade combines all user-related repository interfaces
type UserRepositoryFacade interface {
	UserReader
	UserWriter
	UserSessionManager
}

// AuthCodeRepository stores single-use codes mailed to users.
type AuthCodeRepository interface {
	SaveAuthCode(ctx context.Context, code domain.AuthCode) error

	// ConsumeAuthCode marks the code used and returns it. Unknown, used or
	// expired codes yield apperrors.ErrInvalidCode.
	ConsumeAuthCode(ctx context.Context, codeHash string, now time.Time) (*domain.AuthCode, error)
}
