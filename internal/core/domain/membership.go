package domain

import (
	"strings"
	"time"
)

// Role is a user's role within a company or project.
type Role string

const (
	RoleOwner   Role = "owner"
	RoleManager Role = "manager"
	RoleWorker  Role = "worker"
)

// legacyRoles maps every spelling seen in stored data onto the canonical roles.
var legacyRoles = map[string]Role{
	"owner":    RoleOwner,
	"patron":   RoleOwner,
	"manager":  RoleManager,
	"yonetici": RoleManager,
	"yönetici": RoleManager,
	"admin":    RoleManager,
	"worker":   RoleWorker,
	"calisan":  RoleWorker,
	"çalışan":  RoleWorker,
	"member":   RoleWorker,
	"employee": RoleWorker,
}

// ParseRole maps a stored or submitted role string to its canonical Role.
func ParseRole(raw string) (Role, bool) {
	r, ok := legacyRoles[strings.ToLower(strings.TrimSpace(raw))]
	return r, ok
}

// IsValid reports whether r is canonical.
func (r Role) IsValid() bool {
	return r == RoleOwner || r == RoleManager || r == RoleWorker
}

// rank orders roles by privilege so callers can ask "at least manager".
func (r Role) rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleManager:
		return 2
	case RoleWorker:
		return 1
	}
	return 0
}

// AtLeast reports whether r grants at least the privileges of required.
func (r Role) AtLeast(required Role) bool {
	return r.rank() >= required.rank() && r.rank() > 0
}

// CompanyMember is the membership of a User in a Company.
type CompanyMember struct {
	CompanyID string    `json:"companyID" db:"company_id"`
	UserID    string    `json:"userID" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	JoinedAt  time.Time `json:"joinedAt" db:"joined_at"`

	// Populated on list queries.
	FullName string `json:"fullName,omitempty" db:"full_name"`
	Email    string `json:"email,omitempty" db:"email"`
}
