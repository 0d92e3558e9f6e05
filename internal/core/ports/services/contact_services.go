package services

import (
	"context"

	"github.com/insaatai/insaat_backend/internal/dto"
)

// ContactSvc delivers validated contact form submissions.
type ContactSvc interface {
	Submit(ctx context.Context, req dto.ContactRequest) error
}
