package dto

import (
	"time"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// UserResponse defines the user data returned to clients.
type UserResponse struct {
	UserID           string              `json:"userID"`
	Email            string              `json:"email"`
	FullName         string              `json:"fullName"`
	Phone            string              `json:"phone,omitempty"`
	AuthProvider     domain.AuthProvider `json:"authProvider"`
	EmailConfirmedAt *time.Time          `json:"emailConfirmedAt,omitempty"`
	PendingIntent    domain.IntentKind   `json:"pendingIntent"`
	CreatedAt        time.Time           `json:"createdAt"`
}

// ToUserResponse converts domain.User to DTO.
func ToUserResponse(u *domain.User) UserResponse {
	intent, err := domain.IntentFromMetadata(u.Metadata)
	if err != nil {
		intent = domain.NoIntent()
	}
	return UserResponse{
		UserID:           u.UserID,
		Email:            u.Email,
		FullName:         u.FullName,
		Phone:            u.Phone,
		AuthProvider:     u.AuthProvider,
		EmailConfirmedAt: u.EmailConfirmedAt,
		PendingIntent:    intent.Kind,
		CreatedAt:        u.CreatedAt,
	}
}

// MeResponse describes the signed-in user and their company context.
// NeedsCompany tells the dashboard to offer the create/join remediation.
type MeResponse struct {
	User         UserResponse     `json:"user"`
	Company      *CompanyResponse `json:"company"`
	Role         domain.Role      `json:"role,omitempty"`
	NeedsCompany bool             `json:"needsCompany"`
}
