package services

import (
	"context"

	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/insaatai/insaat_backend/internal/dto"
)

// ProjectReaderSvc defines read operations for project data
type ProjectReaderSvc interface {
	// ListProjectsForUser returns the projects of the user's company together
	// with projects they are an active member of, de-duplicated and sorted by name.
	ListProjectsForUser(ctx context.Context, userID string) ([]domain.Project, error)

	GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error)
}

// ProjectWriterSvc defines write operations for project data
type ProjectWriterSvc interface {
	CreateProject(ctx context.Context, userID string, req dto.CreateProjectRequest) (*domain.Project, error)
}

// ProjectMembershipSvc defines operations for managing project membership
type ProjectMembershipSvc interface {
	AddProjectMembers(ctx context.Context, userID, projectID string, req dto.AddProjectMembersRequest) (int, error)
}

// PartnerInviteSvc defines operations for inviting partner companies onto projects.
type PartnerInviteSvc interface {
	InvitePartners(ctx context.Context, userID, projectID string, req dto.InvitePartnersRequest) (*dto.InvitePartnersResponse, error)
	AcceptPartnerInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error)
	RejectPartnerInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error)
}

// ProjectSvcFacade combines all project-related service interfaces
type ProjectSvcFacade interface {
	ProjectReaderSvc
	ProjectWriterSvc
	ProjectMembershipSvc
	PartnerInviteSvc
}
