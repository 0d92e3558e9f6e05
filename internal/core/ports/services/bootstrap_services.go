package services

import (
	"context"

	"github.com/insaatai/insaat_backend/internal/core/domain"
)

// BootstrapSvc performs the pending tenant operation for a freshly authenticated user.
type BootstrapSvc interface {
	// Run never fails: problems are logged and reported through the result's
	// Outcome and Warning so the caller can always continue to the dashboard.
	Run(ctx context.Context, userID string) domain.BootstrapResult
}
