package pgsql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxUserRepository struct {
	*BaseRepository
}

func newPgxUserRepository(base *BaseRepository) portsrepo.UserRepositoryFacade {
	return &PgxUserRepository{BaseRepository: base}
}

// Ensure PgxUserRepository implements portsrepo.UserRepositoryFacade
var _ portsrepo.UserRepositoryFacade = (*PgxUserRepository)(nil)

const userColumns = `user_id, email, full_name, phone, password_hash, auth_provider, provider_user_id,
	email_confirmed_at, metadata, refresh_token_hash, refresh_token_expiry_time,
	created_at, created_by, last_updated_at, last_updated_by`

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	var provider string
	err := row.Scan(
		&u.UserID,
		&u.Email,
		&u.FullName,
		&u.Phone,
		&u.PasswordHash,
		&provider,
		&u.ProviderUserID,
		&u.EmailConfirmedAt,
		&u.Metadata,
		&u.RefreshTokenHash,
		&u.RefreshTokenExpiryTime,
		&u.CreatedAt,
		&u.CreatedBy,
		&u.LastUpdatedAt,
		&u.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	u.AuthProvider = domain.AuthProvider(provider)
	if u.Metadata == nil {
		u.Metadata = domain.Metadata{}
	}
	return &u, nil
}

func (r *PgxUserRepository) findOne(ctx context.Context, where string, args ...any) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	u, err := scanUser(r.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		if code, _ := pgErrorCode(err); code == pgInvalidText {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return u, nil
}

func (r *PgxUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return r.findOne(ctx, `user_id = $1`, userID)
}

func (r *PgxUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, `lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *PgxUserRepository) FindUserByProviderDetails(ctx context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	return r.findOne(ctx, `auth_provider = $1 AND provider_user_id = $2`, string(provider), providerUserID)
}

func (r *PgxUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	metadata := user.Metadata
	if metadata == nil {
		metadata = domain.Metadata{}
	}
	encoded, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode user metadata: %w", err)
	}

	query := `
		INSERT INTO users (user_id, email, full_name, phone, password_hash, auth_provider, provider_user_id,
			email_confirmed_at, metadata, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb, $10, $11, $12, $13);
	`
	_, err = r.Pool.Exec(ctx, query,
		user.UserID,
		strings.ToLower(strings.TrimSpace(user.Email)),
		user.FullName,
		user.Phone,
		user.PasswordHash,
		string(user.AuthProvider),
		user.ProviderUserID,
		user.EmailConfirmedAt,
		string(encoded),
		user.CreatedAt,
		user.CreatedBy,
		user.LastUpdatedAt,
		user.LastUpdatedBy,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgUniqueViolation {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to save user: %w", err)
	}
	return nil
}

func (r *PgxUserRepository) MergeUserMetadata(ctx context.Context, userID string, patch domain.Metadata) (domain.Metadata, error) {
	set := make(map[string]any, len(patch))
	remove := []string{}
	for k, v := range patch {
		if v == nil {
			remove = append(remove, k)
			continue
		}
		set[k] = v
	}
	encoded, err := json.Marshal(set)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata patch: %w", err)
	}

	query := `
		UPDATE users
		SET metadata = (metadata - $2::text[]) || $3::jsonb,
			last_updated_at = $4,
			last_updated_by = $5
		WHERE user_id = $1
		RETURNING metadata;
	`
	var merged domain.Metadata
	err = r.Pool.QueryRow(ctx, query, userID, remove, string(encoded), time.Now().UTC(), userID).Scan(&merged)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to merge metadata for user %s: %w", userID, err)
	}
	if merged == nil {
		merged = domain.Metadata{}
	}
	return merged, nil
}

func (r *PgxUserRepository) MarkEmailConfirmed(ctx context.Context, userID string, at time.Time) error {
	query := `
		UPDATE users
		SET email_confirmed_at = COALESCE(email_confirmed_at, $2), last_updated_at = $2
		WHERE user_id = $1;
	`
	return r.execForUser(ctx, "confirm email", query, userID, at)
}

func (r *PgxUserRepository) UpdatePasswordHash(ctx context.Context, userID, passwordHash string, at time.Time) error {
	query := `
		UPDATE users
		SET password_hash = $2, last_updated_at = $3, last_updated_by = $4
		WHERE user_id = $1;
	`
	return r.execForUser(ctx, "update password", query, userID, passwordHash, at, userID)
}

func (r *PgxUserRepository) LinkProvider(ctx context.Context, userID string, provider domain.AuthProvider, providerUserID string) error {
	query := `
		UPDATE users
		SET auth_provider = $2, provider_user_id = $3, last_updated_at = $4
		WHERE user_id = $1;
	`
	err := r.execForUser(ctx, "link provider", query, userID, string(provider), providerUserID, time.Now().UTC())
	if code, _ := pgErrorCode(err); code == pgUniqueViolation {
		return apperrors.ErrDuplicate
	}
	return err
}

func (r *PgxUserRepository) UpdateRefreshToken(ctx context.Context, userID, refreshTokenHash string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token_hash = $2, refresh_token_expiry_time = $3
		WHERE user_id = $1;
	`
	return r.execForUser(ctx, "update refresh token", query, userID, refreshTokenHash, expiresAt)
}

func (r *PgxUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET refresh_token_hash = '', refresh_token_expiry_time = NULL
		WHERE user_id = $1;
	`
	return r.execForUser(ctx, "clear refresh token", query, userID)
}

func (r *PgxUserRepository) execForUser(ctx context.Context, action, query, userID string, args ...any) error {
	cmdTag, err := r.Pool.Exec(ctx, query, append([]any{userID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to %s for user %s: %w", action, userID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
