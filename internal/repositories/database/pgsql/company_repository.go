package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxCompanyRepository struct {
	*BaseRepository
}

func newPgxCompanyRepository(base *BaseRepository) portsrepo.CompanyRepositoryFacade {
	return &PgxCompanyRepository{BaseRepository: base}
}

// Ensure PgxCompanyRepository implements portsrepo.CompanyRepositoryFacade
var _ portsrepo.CompanyRepositoryFacade = (*PgxCompanyRepository)(nil)

const companyColumns = `c.company_id, c.name, c.plan, c.currency, c.initial_budget, c.owner_id,
	c.created_at, c.created_by, c.last_updated_at, c.last_updated_by, c.version`

func scanCompany(row pgx.Row, extra ...any) (*domain.Company, error) {
	var c domain.Company
	var plan, currency string
	dest := []any{
		&c.CompanyID,
		&c.Name,
		&plan,
		&currency,
		&c.InitialBudget,
		&c.OwnerID,
		&c.CreatedAt,
		&c.CreatedBy,
		&c.LastUpdatedAt,
		&c.LastUpdatedBy,
		&c.Version,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	c.Plan = domain.NormalizePlan(plan)
	c.Currency = domain.NormalizeCurrency(currency)
	return &c, nil
}

func (r *PgxCompanyRepository) findCompany(ctx context.Context, q querier, where string, args ...any) (*domain.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM company c WHERE ` + where
	c, err := scanCompany(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find company: %w", err)
	}
	return c, nil
}

func (r *PgxCompanyRepository) FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error) {
	return r.findCompany(ctx, r.Pool, `c.company_id = $1`, companyID)
}

func (r *PgxCompanyRepository) FindCompanyByOwner(ctx context.Context, userID string) (*domain.Company, error) {
	return r.findCompany(ctx, r.Pool, `c.owner_id = $1`, userID)
}

func (r *PgxCompanyRepository) FindCompanyForUser(ctx context.Context, userID string) (*domain.Company, domain.Role, error) {
	query := `
		SELECT ` + companyColumns + `, m.role
		FROM company_member m
		JOIN company c ON c.company_id = m.company_id
		WHERE m.user_id = $1
		ORDER BY (c.owner_id = m.user_id) DESC, m.joined_at ASC
		LIMIT 1;
	`
	var rawRole string
	c, err := scanCompany(r.Pool.QueryRow(ctx, query, userID), &rawRole)
	if err == nil {
		role, ok := domain.ParseRole(rawRole)
		if !ok {
			role = domain.RoleWorker
		}
		if c.OwnerID == userID {
			role = domain.RoleOwner
		}
		return c, role, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", fmt.Errorf("failed to find company for user %s: %w", userID, err)
	}

	// No membership row: fall back to ownership.
	c, err = r.FindCompanyByOwner(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	return c, domain.RoleOwner, nil
}

func (r *PgxCompanyRepository) ListCompaniesExcept(ctx context.Context, companyID string, limit int) ([]domain.Company, error) {
	if limit <= 0 {
		limit = 200
	}
	query := `SELECT ` + companyColumns + ` FROM company c`
	args := []any{limit}
	if companyID != "" {
		query += ` WHERE c.company_id <> $2`
		args = append(args, companyID)
	}
	query += ` ORDER BY c.name ASC LIMIT $1;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	defer rows.Close()

	companies := []domain.Company{}
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan company row: %w", err)
		}
		companies = append(companies, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating company rows: %w", err)
	}
	return companies, nil
}

// CreateCompanyWithOwner relies on the unique owner_id constraint: a second
// concurrent create for the same owner inserts nothing and reads the winner.
func (r *PgxCompanyRepository) CreateCompanyWithOwner(ctx context.Context, company domain.Company) (*domain.Company, bool, error) {
	var result *domain.Company
	created := false

	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO company (company_id, name, plan, currency, initial_budget, owner_id,
				created_at, created_by, last_updated_at, last_updated_by, version)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1)
			ON CONFLICT (owner_id) DO NOTHING
			RETURNING company_id;
		`
		var insertedID string
		err := tx.QueryRow(ctx, insert,
			company.CompanyID,
			company.Name,
			string(company.Plan),
			string(company.Currency),
			company.InitialBudget,
			company.OwnerID,
			company.CreatedAt,
			company.CreatedBy,
			company.LastUpdatedAt,
			company.LastUpdatedBy,
		).Scan(&insertedID)

		switch {
		case err == nil:
			created = true
			c := company
			c.Version = 1
			result = &c
		case errors.Is(err, pgx.ErrNoRows):
			existing, ferr := r.findCompany(ctx, tx, `c.owner_id = $1`, company.OwnerID)
			if ferr != nil {
				return ferr
			}
			result = existing
		default:
			if code, _ := pgErrorCode(err); code == pgCheckViolation {
				return apperrors.NewAppError(422, "invalid company attributes", err)
			}
			return fmt.Errorf("failed to insert company: %w", err)
		}

		// Owner membership is (re)asserted either way; a company created by an
		// older code path may lack it.
		_, err = upsertMembership(ctx, tx, domain.CompanyMember{
			CompanyID: result.CompanyID,
			UserID:    company.OwnerID,
			Role:      domain.RoleOwner,
			JoinedAt:  company.CreatedAt,
		})
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

func (r *PgxCompanyRepository) UpdateCompany(ctx context.Context, company domain.Company) error {
	query := `
		UPDATE company
		SET name = $1, plan = $2, currency = $3, initial_budget = $4,
			last_updated_at = $5, last_updated_by = $6, version = version + 1
		WHERE company_id = $7 AND version = $8;
	`
	cmdTag, err := r.Pool.Exec(ctx, query,
		company.Name,
		string(company.Plan),
		string(company.Currency),
		company.InitialBudget,
		company.LastUpdatedAt,
		company.LastUpdatedBy,
		company.CompanyID,
		company.Version,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgCheckViolation {
			return apperrors.NewAppError(422, "invalid company attributes", err)
		}
		return fmt.Errorf("failed to update company %s: %w", company.CompanyID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		// Distinguish a missing company from a stale version.
		if _, ferr := r.FindCompanyByID(ctx, company.CompanyID); ferr != nil {
			return ferr
		}
		return apperrors.NewConflictError("company was modified by another request")
	}
	return nil
}

func (r *PgxCompanyRepository) FindMembership(ctx context.Context, companyID, userID string) (*domain.CompanyMember, error) {
	query := `
		SELECT m.company_id, m.user_id, m.role, m.joined_at, u.full_name, u.email
		FROM company_member m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.company_id = $1 AND m.user_id = $2;
	`
	m, err := scanMember(r.Pool.QueryRow(ctx, query, companyID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find membership: %w", err)
	}
	return m, nil
}

func (r *PgxCompanyRepository) UpsertMembership(ctx context.Context, member domain.CompanyMember) (bool, error) {
	return upsertMembership(ctx, r.Pool, member)
}

func upsertMembership(ctx context.Context, q querier, member domain.CompanyMember) (bool, error) {
	query := `
		INSERT INTO company_member (company_id, user_id, role, joined_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (company_id, user_id) DO NOTHING;
	`
	cmdTag, err := q.Exec(ctx, query, member.CompanyID, member.UserID, string(member.Role), member.JoinedAt)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return false, apperrors.NewNotFoundError("company or user not found")
		}
		return false, fmt.Errorf("failed to upsert membership: %w", err)
	}
	return cmdTag.RowsAffected() == 1, nil
}

func (r *PgxCompanyRepository) ListMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error) {
	query := `
		SELECT m.company_id, m.user_id, m.role, m.joined_at, u.full_name, u.email
		FROM company_member m
		JOIN users u ON u.user_id = m.user_id
		WHERE m.company_id = $1
		ORDER BY CASE m.role WHEN 'owner' THEN 0 WHEN 'manager' THEN 1 ELSE 2 END, u.full_name ASC;
	`
	rows, err := r.Pool.Query(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members of company %s: %w", companyID, err)
	}
	defer rows.Close()

	members := []domain.CompanyMember{}
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan member row: %w", err)
		}
		members = append(members, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating member rows: %w", err)
	}
	return members, nil
}

func scanMember(row pgx.Row) (*domain.CompanyMember, error) {
	var m domain.CompanyMember
	var rawRole string
	if err := row.Scan(&m.CompanyID, &m.UserID, &rawRole, &m.JoinedAt, &m.FullName, &m.Email); err != nil {
		return nil, err
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		role = domain.RoleWorker
	}
	m.Role = role
	return &m, nil
}

func (r *PgxCompanyRepository) UpdateMemberRole(ctx context.Context, companyID, userID string, role domain.Role) error {
	query := `UPDATE company_member SET role = $3 WHERE company_id = $1 AND user_id = $2;`
	cmdTag, err := r.Pool.Exec(ctx, query, companyID, userID, string(role))
	if err != nil {
		return fmt.Errorf("failed to update member role: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *PgxCompanyRepository) RemoveMember(ctx context.Context, companyID, userID string) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `DELETE FROM company_member WHERE company_id = $1 AND user_id = $2;`, companyID, userID)
		if err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.ErrNotFound
		}
		// Drop the user from every project of this company as well.
		_, err = tx.Exec(ctx, `
			UPDATE project_members SET status = 'removed'
			WHERE user_id = $1 AND company_id = $2 AND status <> 'removed';
		`, userID, companyID)
		if err != nil {
			return fmt.Errorf("failed to remove member from projects: %w", err)
		}
		return nil
	})
}
