package repositories

import (
	"context"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// CompanyReader defines read operations for company data
type CompanyReader interface {
	FindCompanyByID(ctx context.Context, companyID string) (*domain.Company, error)

	// FindCompanyByOwner returns the company whose owner_id is userID.
	FindCompanyByOwner(ctx context.Context, userID string) (*domain.Company, error)

	// FindCompanyForUser resolves the user's company through membership first,
	// then through ownership. It returns the company and the user's role.
	FindCompanyForUser(ctx context.Context, userID string) (*domain.Company, domain.Role, error)

	// ListCompaniesExcept lists every company but companyID, ordered by name.
	ListCompaniesExcept(ctx context.Context, companyID string, limit int) ([]domain.Company, error)
}

// CompanyWriter defines write operations for company data
type CompanyWriter interface {
	// CreateCompanyWithOwner inserts the company and its owner membership in one
	// transaction. If ownerUserID already owns a company, that company is
	// returned with created=false and nothing is written.
	CreateCompanyWithOwner(ctx context.Context, company domain.Company) (result *domain.Company, created bool, err error)

	// UpdateCompany applies an optimistic update keyed on company.Version.
	UpdateCompany(ctx context.Context, company domain.Company) error
}

// CompanyMembershipManager defines operations on company_member rows.
type CompanyMembershipManager interface {
	FindMembership(ctx context.Context, companyID, userID string) (*domain.CompanyMember, error)

	// UpsertMembership inserts the row unless (company_id, user_id) already
	// exists. inserted is false on conflict; the existing row is left untouched.
	UpsertMembership(ctx context.Context, member domain.CompanyMember) (inserted bool, err error)

	ListMembers(ctx context.Context, companyID string) ([]domain.CompanyMember, error)
	UpdateMemberRole(ctx context.Context, companyID, userID string, role domain.Role) error
	RemoveMember(ctx context.Context, companyID, userID string) error
}

// CompanyRepositoryFacade combines all company-related repository interfaces
type CompanyRepositoryFacade interface {
	CompanyReader
	CompanyWriter
	CompanyMembershipManager
}
