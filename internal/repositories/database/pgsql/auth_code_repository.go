package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxAuthCodeRepository struct {
	*BaseRepository
}

func newPgxAuthCodeRepository(base *BaseRepository) portsrepo.AuthCodeRepository {
	return &PgxAuthCodeRepository{BaseRepository: base}
}

var _ portsrepo.AuthCodeRepository = (*PgxAuthCodeRepository)(nil)

func (r *PgxAuthCodeRepository) SaveAuthCode(ctx context.Context, code domain.AuthCode) error {
	query := `
		INSERT INTO auth_codes (code_hash, user_id, flow, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query, code.CodeHash, code.UserID, string(code.Flow), code.ExpiresAt, code.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save auth code: %w", err)
	}
	return nil
}

// ConsumeAuthCode flips used_at in the same statement that checks it, so a
// code can be exchanged at most once even under concurrent requests.
func (r *PgxAuthCodeRepository) ConsumeAuthCode(ctx context.Context, codeHash string, now time.Time) (*domain.AuthCode, error) {
	query := `
		UPDATE auth_codes
		SET used_at = $2
		WHERE code_hash = $1 AND used_at IS NULL AND expires_at > $2
		RETURNING code_hash, user_id, flow, expires_at, used_at, created_at;
	`
	var code domain.AuthCode
	var flow string
	err := r.Pool.QueryRow(ctx, query, codeHash, now).Scan(
		&code.CodeHash,
		&code.UserID,
		&flow,
		&code.ExpiresAt,
		&code.UsedAt,
		&code.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrInvalidCode
		}
		return nil, fmt.Errorf("failed to consume auth code: %w", err)
	}
	code.Flow = domain.AuthFlow(flow)
	return &code, nil
}
