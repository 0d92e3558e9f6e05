package dto

import (
	"time"

	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Company DTOs ---

// CreateCompanyRequest defines data for creating a company by hand.
type CreateCompanyRequest struct {
	Name          string           `json:"name" binding:"required,min=2,max=120"`
	Plan          string           `json:"plan"`
	Currency      string           `json:"currency" binding:"omitempty,oneof=TRY USD EUR"`
	InitialBudget *decimal.Decimal `json:"initialBudget"`
}

// JoinCompanyRequest joins an existing company by its id.
type JoinCompanyRequest struct {
	CompanyID string `json:"companyID" binding:"required"`
}

// UpdateCompanyRequest uses pointers to tell omitted fields from zero values.
type UpdateCompanyRequest struct {
	Name          *string          `json:"name" binding:"omitempty,min=2,max=120"`
	Plan          *string          `json:"plan" binding:"omitempty,plan"`
	Currency      *string          `json:"currency" binding:"omitempty,oneof=TRY USD EUR"`
	InitialBudget *decimal.Decimal `json:"initialBudget"`
}

// CompanyResponse defines data returned for a company.
type CompanyResponse struct {
	CompanyID     string          `json:"companyID"`
	Name          string          `json:"name"`
	Plan          domain.Plan     `json:"plan"`
	PlanLabel     string          `json:"planLabel"`
	Currency      domain.Currency `json:"currency"`
	InitialBudget decimal.Decimal `json:"initialBudget"`
	OwnerID       string          `json:"ownerID"`
	CreatedAt     time.Time       `json:"createdAt"`
	LastUpdatedAt time.Time       `json:"lastUpdatedAt"`
}

// ToCompanyResponse converts domain.Company to DTO.
func ToCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		CompanyID:     c.CompanyID,
		Name:          c.Name,
		Plan:          c.Plan,
		PlanLabel:     c.Plan.Label(),
		Currency:      c.Currency,
		InitialBudget: c.InitialBudget,
		OwnerID:       c.OwnerID,
		CreatedAt:     c.CreatedAt,
		LastUpdatedAt: c.LastUpdatedAt,
	}
}

// CreateCompanyResponse reports whether a new company was created.
type CreateCompanyResponse struct {
	Company CompanyResponse `json:"company"`
	Created bool            `json:"created"`
}

// JoinCompanyResponse reports whether a new membership was created.
type JoinCompanyResponse struct {
	CompanyID string `json:"companyID"`
	Joined    bool   `json:"joined"`
}

// PartnerCompanyResponse is the public view of another company.
type PartnerCompanyResponse struct {
	CompanyID string `json:"companyID"`
	Name      string `json:"name"`
}

// ListPartnersResponse wraps partner candidates.
type ListPartnersResponse struct {
	Companies []PartnerCompanyResponse `json:"companies"`
}

// ToListPartnersResponse keeps only the id and name of each company.
func ToListPartnersResponse(cs []domain.Company) ListPartnersResponse {
	list := make([]PartnerCompanyResponse, len(cs))
	for i, c := range cs {
		list[i] = PartnerCompanyResponse{CompanyID: c.CompanyID, Name: c.Name}
	}
	return ListPartnersResponse{Companies: list}
}

// --- Company Membership DTOs ---

// ListMembersParams defines query parameters for listing members.
type ListMembersParams struct {
	ExcludeOwners bool `form:"excludeOwners"`
	ExcludeSelf   bool `form:"excludeSelf"`
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role" binding:"required,tenant_role"`
}

// MemberResponse defines data returned about a company membership.
type MemberResponse struct {
	UserID   string      `json:"userID"`
	FullName string      `json:"fullName"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	JoinedAt time.Time   `json:"joinedAt"`
}

// ListMembersResponse wraps company members.
type ListMembersResponse struct {
	Members []MemberResponse `json:"members"`
}

// ToListMembersResponse converts a slice of domain.CompanyMember to DTO.
func ToListMembersResponse(ms []domain.CompanyMember) ListMembersResponse {
	list := make([]MemberResponse, len(ms))
	for i, m := range ms {
		list[i] = MemberResponse{
			UserID:   m.UserID,
			FullName: m.FullName,
			Email:    m.Email,
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}
	return ListMembersResponse{Members: list}
}
