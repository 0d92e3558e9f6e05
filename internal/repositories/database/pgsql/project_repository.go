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

type PgxProjectRepository struct {
	*BaseRepository
}

func newPgxProjectRepository(base *BaseRepository) portsrepo.ProjectRepositoryFacade {
	return &PgxProjectRepository{BaseRepository: base}
}

// Ensure PgxProjectRepository implements portsrepo.ProjectRepositoryFacade
var _ portsrepo.ProjectRepositoryFacade = (*PgxProjectRepository)(nil)

const projectColumns = `p.project_id, p.company_id, p.name, p.location, p.area_m2, p.floor_count,
	p.start_date, p.end_date, p.created_at, p.created_by, p.last_updated_at, p.last_updated_by`

func scanProject(row pgx.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ProjectID,
		&p.CompanyID,
		&p.Name,
		&p.Location,
		&p.AreaM2,
		&p.FloorCount,
		&p.StartDate,
		&p.EndDate,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PgxProjectRepository) SaveProject(ctx context.Context, project domain.Project) error {
	query := `
		INSERT INTO project (project_id, company_id, name, location, area_m2, floor_count,
			start_date, end_date, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12);
	`
	_, err := r.Pool.Exec(ctx, query,
		project.ProjectID,
		project.CompanyID,
		project.Name,
		project.Location,
		project.AreaM2,
		project.FloorCount,
		project.StartDate,
		project.EndDate,
		project.CreatedAt,
		project.CreatedBy,
		project.LastUpdatedAt,
		project.LastUpdatedBy,
	)
	if err != nil {
		if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
			return apperrors.NewNotFoundError("company not found")
		}
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

func (r *PgxProjectRepository) FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p WHERE p.project_id = $1;`
	p, err := scanProject(r.Pool.QueryRow(ctx, query, projectID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project %s: %w", projectID, err)
	}
	return p, nil
}

func (r *PgxProjectRepository) ListProjectsByCompany(ctx context.Context, companyID string) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM project p WHERE p.company_id = $1 ORDER BY p.created_at DESC;`
	return r.listProjects(ctx, query, companyID)
}

func (r *PgxProjectRepository) ListProjectsByActiveMember(ctx context.Context, userID string) ([]domain.Project, error) {
	query := `
		SELECT ` + projectColumns + `
		FROM project p
		JOIN project_members pm ON pm.project_id = p.project_id
		WHERE pm.user_id = $1 AND pm.status = 'active'
		ORDER BY p.created_at DESC;
	`
	return r.listProjects(ctx, query, userID)
}

func (r *PgxProjectRepository) listProjects(ctx context.Context, query string, args ...any) ([]domain.Project, error) {
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating project rows: %w", err)
	}
	return projects, nil
}

func (r *PgxProjectRepository) FindProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	query := `
		SELECT project_id, user_id, company_id, role, status, added_by, joined_at
		FROM project_members
		WHERE project_id = $1 AND user_id = $2;
	`
	var m domain.ProjectMember
	var rawRole, status string
	err := r.Pool.QueryRow(ctx, query, projectID, userID).Scan(
		&m.ProjectID, &m.UserID, &m.CompanyID, &rawRole, &status, &m.AddedBy, &m.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find project member: %w", err)
	}
	role, ok := domain.ParseRole(rawRole)
	if !ok {
		role = domain.RoleWorker
	}
	m.Role = role
	m.Status = domain.ProjectMemberStatus(status)
	return &m, nil
}

const upsertProjectMemberSQL = `
	INSERT INTO project_members (project_id, user_id, company_id, role, status, added_by, joined_at)
	VALUES ($1, $2, $3, $4, 'active', $5, $6)
	ON CONFLICT (project_id, user_id) DO UPDATE
	SET status = 'active', role = EXCLUDED.role, added_by = EXCLUDED.added_by, joined_at = EXCLUDED.joined_at
	WHERE project_members.status <> 'active';
`

// AddProjectMembersBulk counts a row as added when it was inserted or reactivated.
func (r *PgxProjectRepository) AddProjectMembersBulk(ctx context.Context, members []domain.ProjectMember) (int, error) {
	if len(members) == 0 {
		return 0, nil
	}
	added := 0
	err := r.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, m := range members {
			batch.Queue(upsertProjectMemberSQL, m.ProjectID, m.UserID, m.CompanyID, string(m.Role), m.AddedBy, m.JoinedAt)
		}
		br := tx.SendBatch(ctx, batch)
		for range members {
			cmdTag, err := br.Exec()
			if err != nil {
				_ = br.Close()
				if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
					return apperrors.NewAppError(422, "unknown user or project", err)
				}
				return fmt.Errorf("failed to add project member: %w", err)
			}
			added += int(cmdTag.RowsAffected())
		}
		return br.Close()
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}

func (r *PgxProjectRepository) SavePartnerInvites(ctx context.Context, invites []domain.PartnerInvite) error {
	if len(invites) == 0 {
		return nil
	}
	query := `
		INSERT INTO partner_invites (invite_id, project_id, inviting_company_id, invited_company_id,
			token_hash, status, expires_at, invited_by, created_at)
		VALUES ($1, $2, $3, $4, $5, 'pending', $6, $7, $8)
		ON CONFLICT (project_id, invited_company_id) WHERE status = 'pending' DO UPDATE
		SET token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			invited_by = EXCLUDED.invited_by,
			created_at = EXCLUDED.created_at;
	`
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}
		for _, inv := range invites {
			batch.Queue(query, inv.InviteID, inv.ProjectID, inv.InvitingCompanyID, inv.InvitedCompanyID,
				inv.TokenHash, inv.ExpiresAt, inv.InvitedBy, inv.CreatedAt)
		}
		br := tx.SendBatch(ctx, batch)
		for range invites {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				if code, _ := pgErrorCode(err); code == pgForeignKeyViolation {
					return apperrors.NewAppError(422, "unknown company", err)
				}
				return fmt.Errorf("failed to save partner invite: %w", err)
			}
		}
		return br.Close()
	})
}

func (r *PgxProjectRepository) FindInviteByTokenHash(ctx context.Context, tokenHash string) (*domain.PartnerInvite, error) {
	query := `
		SELECT invite_id, project_id, inviting_company_id, invited_company_id, token_hash,
			status, expires_at, invited_by, created_at
		FROM partner_invites
		WHERE token_hash = $1;
	`
	var inv domain.PartnerInvite
	var status string
	err := r.Pool.QueryRow(ctx, query, tokenHash).Scan(
		&inv.InviteID,
		&inv.ProjectID,
		&inv.InvitingCompanyID,
		&inv.InvitedCompanyID,
		&inv.TokenHash,
		&status,
		&inv.ExpiresAt,
		&inv.InvitedBy,
		&inv.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find partner invite: %w", err)
	}
	inv.Status = domain.PartnerInviteStatus(status)
	return &inv, nil
}

func (r *PgxProjectRepository) AcceptPartnerInvite(ctx context.Context, inviteID string, member domain.ProjectMember) error {
	return r.WithTx(ctx, func(tx pgx.Tx) error {
		cmdTag, err := tx.Exec(ctx, `
			UPDATE partner_invites SET status = 'accepted', responded_at = $2
			WHERE invite_id = $1 AND status = 'pending';
		`, inviteID, member.JoinedAt)
		if err != nil {
			return fmt.Errorf("failed to accept partner invite: %w", err)
		}
		if cmdTag.RowsAffected() == 0 {
			return apperrors.NewConflictError("invite is no longer pending")
		}
		_, err = tx.Exec(ctx, upsertProjectMemberSQL,
			member.ProjectID, member.UserID, member.CompanyID, string(member.Role), member.AddedBy, member.JoinedAt)
		if err != nil {
			return fmt.Errorf("failed to add partner to project: %w", err)
		}
		return nil
	})
}

func (r *PgxProjectRepository) UpdateInviteStatus(ctx context.Context, inviteID string, status domain.PartnerInviteStatus, at time.Time) error {
	cmdTag, err := r.Pool.Exec(ctx, `
		UPDATE partner_invites SET status = $2, responded_at = $3
		WHERE invite_id = $1 AND status = 'pending';
	`, inviteID, string(status), at)
	if err != nil {
		return fmt.Errorf("failed to update partner invite: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError("invite is no longer pending")
	}
	return nil
}
