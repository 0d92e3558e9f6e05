package services

import (
	"context"

	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/insaatai/insaat_backend/internal/dto"
)

// CompanyReaderSvc defines read operations for company data
type CompanyReaderSvc interface {
	// GetCompanyForUser returns the user's company and role, or apperrors.ErrNotFound.
	GetCompanyForUser(ctx context.Context, userID string) (*domain.Company, domain.Role, error)

	// ListPartnerCandidates lists companies other than the caller's. The caller
	// must be an owner or manager of a company.
	ListPartnerCandidates(ctx context.Context, userID string) ([]domain.Company, error)
}

// CompanyWriterSvc defines write operations for company data
type CompanyWriterSvc interface {
	// CreateCompany creates a company owned by userID together with the owner
	// membership. When the user already owns one, it is returned with created=false.
	CreateCompany(ctx context.Context, userID string, req dto.CreateCompanyRequest) (company *domain.Company, created bool, err error)

	// JoinCompany adds userID as a worker. joined is false when the user was already a member.
	JoinCompany(ctx context.Context, userID, companyID string) (joined bool, err error)

	UpdateCompany(ctx context.Context, userID string, req dto.UpdateCompanyRequest) (*domain.Company, error)
}

// CompanyMembershipSvc defines operations for managing company membership
type CompanyMembershipSvc interface {
	ListMembers(ctx context.Context, userID string, params dto.ListMembersParams) ([]domain.CompanyMember, error)
	UpdateMemberRole(ctx context.Context, requestingUserID, targetUserID string, role domain.Role) error
	RemoveMember(ctx context.Context, requestingUserID, targetUserID string) error
}

// CompanyAuthorizerSvc defines operations for company authorization
type CompanyAuthorizerSvc interface {
	// AuthorizeUserAction checks that userID holds at least requiredRole in companyID.
	AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.Role) error
}

// CompanySvcFacade combines all company-related service interfaces
type CompanySvcFacade interface {
	CompanyReaderSvc
	CompanyWriterSvc
	CompanyMembershipSvc
	CompanyAuthorizerSvc
}
