package dto

import (
	"time"

	"github.com/insaatai/insaat_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Project DTOs ---

// CreateProjectRequest defines data for creating a project in the caller's company.
type CreateProjectRequest struct {
	Name       string           `json:"name" binding:"required,min=2,max=160"`
	Location   string           `json:"location" binding:"omitempty,max=200"`
	AreaM2     *decimal.Decimal `json:"areaM2"`
	FloorCount *int             `json:"floorCount" binding:"omitempty,min=0,max=300"`
	StartDate  *time.Time       `json:"startDate"`
	EndDate    *time.Time       `json:"endDate"`
}

// ProjectResponse defines data returned for a project.
type ProjectResponse struct {
	ProjectID  string           `json:"projectID"`
	CompanyID  string           `json:"companyID"`
	Name       string           `json:"name"`
	Location   string           `json:"location"`
	AreaM2     *decimal.Decimal `json:"areaM2,omitempty"`
	FloorCount *int             `json:"floorCount,omitempty"`
	StartDate  *time.Time       `json:"startDate,omitempty"`
	EndDate    *time.Time       `json:"endDate,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	CreatedBy  string           `json:"createdBy"`
}

// ToProjectResponse converts domain.Project to DTO.
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ProjectID:  p.ProjectID,
		CompanyID:  p.CompanyID,
		Name:       p.Name,
		Location:   p.Location,
		AreaM2:     p.AreaM2,
		FloorCount: p.FloorCount,
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		CreatedAt:  p.CreatedAt,
		CreatedBy:  p.CreatedBy,
	}
}

// ListProjectsResponse wraps a list of projects.
type ListProjectsResponse struct {
	Projects []ProjectResponse `json:"projects"`
}

// ToListProjectsResponse converts a slice of domain.Project to DTO.
func ToListProjectsResponse(ps []domain.Project) ListProjectsResponse {
	list := make([]ProjectResponse, len(ps))
	for i := range ps {
		list[i] = ToProjectResponse(&ps[i])
	}
	return ListProjectsResponse{Projects: list}
}

// AddProjectMembersRequest adds company members to a project.
type AddProjectMembersRequest struct {
	UserIDs []string `json:"userIDs" binding:"required,min=1,max=200,dive,uuid"`
	Role    string   `json:"role" binding:"omitempty,tenant_role"`
}

// AddProjectMembersResponse reports how many memberships were new.
type AddProjectMembersResponse struct {
	Added int `json:"added"`
}

// InvitePartnersRequest invites other companies onto a project.
// ManualIDs is free text; ids may be separated by whitespace, commas or semicolons.
type InvitePartnersRequest struct {
	CompanyIDs []string `json:"companyIDs" binding:"omitempty,max=200"`
	ManualIDs  string   `json:"manualIDs" binding:"omitempty,max=10000"`
	ExpireDays *int     `json:"expireDays" binding:"omitempty,min=1,max=90"`
}

// InvitePartnersResponse lists the companies that were invited.
type InvitePartnersResponse struct {
	Invited   []string  `json:"invited"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// PartnerInviteResponse defines data returned about a partner invite.
type PartnerInviteResponse struct {
	InviteID  string                     `json:"inviteID"`
	ProjectID string                     `json:"projectID"`
	Status    domain.PartnerInviteStatus `json:"status"`
	ExpiresAt time.Time                  `json:"expiresAt"`
}

// ToPartnerInviteResponse converts domain.PartnerInvite to DTO.
func ToPartnerInviteResponse(i *domain.PartnerInvite) PartnerInviteResponse {
	return PartnerInviteResponse{
		InviteID:  i.InviteID,
		ProjectID: i.ProjectID,
		Status:    i.Status,
		ExpiresAt: i.ExpiresAt,
	}
}
