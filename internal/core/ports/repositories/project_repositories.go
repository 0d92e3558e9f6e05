package repositories

import (
	"context"
	"time"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// ProjectReader defines read operations for project data
type ProjectReader interface {
	FindProjectByID(ctx context.Context, projectID string) (*domain.Project, error)
	ListProjectsByCompany(ctx context.Context, companyID string) ([]domain.Project, error)

	// ListProjectsByActiveMember lists projects where userID has an active project membership.
	ListProjectsByActiveMember(ctx context.Context, userID string) ([]domain.Project, error)
}

// ProjectWriter defines write operations for project data
type ProjectWriter interface {
	SaveProject(ctx context.Context, project domain.Project) error
}

// ProjectMembershipManager defines operations on project_members rows.
type ProjectMembershipManager interface {
	FindProjectMember(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error)

	// AddProjectMembersBulk upserts one active row per user in one transaction
	// and returns how many rows were inserted or reactivated.
	AddProjectMembersBulk(ctx context.Context, members []domain.ProjectMember) (int, error)
}

// PartnerInviteManager defines operations on partner_invites rows.
type PartnerInviteManager interface {
	// SavePartnerInvites inserts the invites in one transaction. A pending
	// invite for the same (project, company) is refreshed instead.
	SavePartnerInvites(ctx context.Context, invites []domain.PartnerInvite) error

	FindInviteByTokenHash(ctx context.Context, tokenHash string) (*domain.PartnerInvite, error)

	// AcceptPartnerInvite marks the invite accepted and adds member to the
	// project in one transaction.
	AcceptPartnerInvite(ctx context.Context, inviteID string, member domain.ProjectMember) error

	UpdateInviteStatus(ctx context.Context, inviteID string, status domain.PartnerInviteStatus, at time.Time) error
}

// ProjectRepositoryFacade combines all project-related repository interfaces
type ProjectRepositoryFacade interface {
	ProjectReader
	ProjectWriter
	ProjectMembershipManager
	PartnerInviteManager
}
