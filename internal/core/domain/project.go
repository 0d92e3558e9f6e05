package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a construction project owned by exactly one company.
type Project struct {
	ProjectID  string           `json:"projectID" db:"project_id"`
	CompanyID  string           `json:"companyID" db:"company_id"`
	Name       string           `json:"name" db:"name"`
	Location   string           `json:"location" db:"location"`
	AreaM2     *decimal.Decimal `json:"areaM2,omitempty" db:"area_m2"`
	FloorCount *int             `json:"floorCount,omitempty" db:"floor_count"`
	StartDate  *time.Time       `json:"startDate,omitempty" db:"start_date"`
	EndDate    *time.Time       `json:"endDate,omitempty" db:"end_date"`
	AuditFields
}

// ProjectMemberStatus tracks whether a project membership is in effect.
type ProjectMemberStatus string

const (
	ProjectMemberActive  ProjectMemberStatus = "active"
	ProjectMemberPending ProjectMemberStatus = "pending"
	ProjectMemberRemoved ProjectMemberStatus = "removed"
)

// ProjectMember is the membership of a User in a Project.
type ProjectMember struct {
	ProjectID string              `json:"projectID" db:"project_id"`
	UserID    string              `json:"userID" db:"user_id"`
	CompanyID string              `json:"companyID" db:"company_id"`
	Role      Role                `json:"role" db:"role"`
	Status    ProjectMemberStatus `json:"status" db:"status"`
	AddedBy   string              `json:"addedBy" db:"added_by"`
	JoinedAt  time.Time           `json:"joinedAt" db:"joined_at"`
}

// PartnerInviteStatus is the lifecycle state of a partner invite.
type PartnerInviteStatus string

const (
	InvitePending  PartnerInviteStatus = "pending"
	InviteAccepted PartnerInviteStatus = "accepted"
	InviteRejected PartnerInviteStatus = "rejected"
	InviteExpired  PartnerInviteStatus = "expired"
)

const (
	DefaultInviteExpireDays = 7
	MaxInviteExpireDays     = 90
)

// PartnerInvite invites another company onto a project.
// TokenHash is the SHA-256 of the token mailed to the partner owner.
type PartnerInvite struct {
	InviteID          string              `json:"inviteID" db:"invite_id"`
	ProjectID         string              `json:"projectID" db:"project_id"`
	InvitingCompanyID string              `json:"invitingCompanyID" db:"inviting_company_id"`
	InvitedCompanyID  string              `json:"invitedCompanyID" db:"invited_company_id"`
	TokenHash         string              `json:"-" db:"token_hash"`
	Status            PartnerInviteStatus `json:"status" db:"status"`
	ExpiresAt         time.Time           `json:"expiresAt" db:"expires_at"`
	InvitedBy         string              `json:"invitedBy" db:"invited_by"`
	CreatedAt         time.Time           `json:"createdAt" db:"created_at"`
}

// IsExpired reports whether the invite can no longer be answered at now.
func (i PartnerInvite) IsExpired(now time.Time) bool {
	return i.Status == InviteExpired || now.After(i.ExpiresAt)
}
