package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/platform/telemetry"
	"github.com/insaatai/insaat_backend/internal/utils"
	"golang.org/x/sync/singleflight"
)

// Warnings shown to the user when provisioning did not complete.
const (
	WarningBootstrapFailed = "Şirket kurulumu tamamlanamadı. Panelden tekrar deneyebilirsiniz."
	WarningInvalidInvite   = "Davet kodu geçersiz. Panelden bir şirket oluşturabilir veya tekrar katılmayı deneyebilirsiniz."
)

// EventSink receives product analytics events. *utils.PosthogClientWrapper satisfies it.
type EventSink interface {
	Enqueue(distinctID string, event string, properties map[string]any)
}

// bootstrapService consumes a user's pending intent once per trigger.
type bootstrapService struct {
	BaseService
	identity  portssvc.IdentityReaderSvc
	companies portssvc.CompanyWriterSvc
	events    EventSink
	inflight  singleflight.Group
}

// NewBootstrapService creates the orchestrator. events may be nil.
func NewBootstrapService(identity portssvc.IdentityReaderSvc, companies portssvc.CompanyWriterSvc, events EventSink) portssvc.BootstrapSvc {
	return &bootstrapService{
		identity:  identity,
		companies: companies,
		events:    events,
	}
}

var _ portssvc.BootstrapSvc = (*bootstrapService)(nil)

// Run collapses concurrent triggers for the same user inside this process.
// Across processes the schema's unique constraints keep the work single.
// The shared run is detached from the first caller's cancellation.
func (s *bootstrapService) Run(ctx context.Context, userID string) domain.BootstrapResult {
	runCtx := context.WithoutCancel(ctx)
	v, _, _ := s.inflight.Do(userID, func() (any, error) {
		result := s.run(runCtx, userID)
		s.record(runCtx, userID, result)
		return result, nil
	})
	return v.(domain.BootstrapResult)
}

func (s *bootstrapService) run(ctx context.Context, userID string) domain.BootstrapResult {
	logger := s.GetLogger(ctx).With(slog.String("user_id", userID))

	user, err := s.identity.GetUser(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "Bootstrap could not load user", slog.String("error", err.Error()))
		return domain.BootstrapResult{Intent: domain.IntentNone, Outcome: domain.OutcomeFailed, Warning: WarningBootstrapFailed}
	}

	_, present := user.Metadata[domain.PendingIntentKey]
	intent, err := domain.IntentFromMetadata(user.Metadata)
	if err != nil || (present && intent.IsNone()) {
		logger.WarnContext(ctx, "Discarding unreadable pending intent")
		return s.finish(ctx, userID, domain.BootstrapResult{Intent: domain.IntentNone, Outcome: domain.OutcomeInvalidIntent})
	}

	switch intent.Kind {
	case domain.IntentCreateTenant:
		return s.createTenant(ctx, logger, userID, intent)
	case domain.IntentJoinTenant:
		return s.joinTenant(ctx, logger, userID, intent)
	}
	return domain.BootstrapResult{Intent: domain.IntentNone, Outcome: domain.OutcomeNoIntent}
}

func (s *bootstrapService) createTenant(ctx context.Context, logger *slog.Logger, userID string, intent domain.PendingIntent) domain.BootstrapResult {
	result := domain.BootstrapResult{Intent: intent.Kind}

	company, created, err := s.companies.CreateCompany(ctx, userID, dto.CreateCompanyRequest{
		Name: intent.TenantName,
		Plan: string(intent.Plan),
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			logger.WarnContext(ctx, "Discarding invalid create intent", slog.String("error", err.Error()))
			result.Outcome = domain.OutcomeInvalidIntent
			result.Warning = WarningBootstrapFailed
			return s.finish(ctx, userID, result)
		}
		// Keep the intent so the next trigger retries.
		logger.ErrorContext(ctx, "Bootstrap create failed", slog.String("error", err.Error()))
		result.Outcome = domain.OutcomeFailed
		result.Warning = WarningBootstrapFailed
		return result
	}

	result.CompanyID = company.CompanyID
	if created {
		result.Outcome = domain.OutcomeCreated
	} else {
		result.Outcome = domain.OutcomeAlreadyOwner
	}
	return s.finish(ctx, userID, result)
}

func (s *bootstrapService) joinTenant(ctx context.Context, logger *slog.Logger, userID string, intent domain.PendingIntent) domain.BootstrapResult {
	result := domain.BootstrapResult{Intent: intent.Kind}

	companyID, ok := utils.NormalizeUUID(intent.TenantID)
	if !ok {
		logger.WarnContext(ctx, "Discarding join intent with malformed tenant id")
		result.Outcome = domain.OutcomeInvalidIntent
		result.Warning = WarningInvalidInvite
		return s.finish(ctx, userID, result)
	}

	joined, err := s.companies.JoinCompany(ctx, userID, companyID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
			logger.WarnContext(ctx, "Discarding join intent for unknown company", slog.String("company_id", companyID))
			result.Outcome = domain.OutcomeInvalidIntent
			result.Warning = WarningInvalidInvite
			return s.finish(ctx, userID, result)
		}
		logger.ErrorContext(ctx, "Bootstrap join failed", slog.String("error", err.Error()))
		result.Outcome = domain.OutcomeFailed
		result.Warning = WarningBootstrapFailed
		return result
	}

	result.CompanyID = companyID
	if joined {
		result.Outcome = domain.OutcomeJoined
	} else {
		result.Outcome = domain.OutcomeAlreadyMember
	}
	return s.finish(ctx, userID, result)
}

// finish clears the pending intent. A failed clear is harmless: the next run
// finds the work already done.
func (s *bootstrapService) finish(ctx context.Context, userID string, result domain.BootstrapResult) domain.BootstrapResult {
	if _, err := s.identity.UpdateUserMetadata(ctx, userID, domain.ClearIntentPatch()); err != nil {
		s.LogError(ctx, err, "Failed to clear pending intent", slog.String("user_id", userID))
		return result
	}
	result.IntentCleared = true
	return result
}

func (s *bootstrapService) record(ctx context.Context, userID string, result domain.BootstrapResult) {
	telemetry.BootstrapRunsTotal.WithLabelValues(string(result.Intent), string(result.Outcome)).Inc()
	if result.Outcome != domain.OutcomeNoIntent {
		s.LogInfo(ctx, "Tenant bootstrap finished",
			slog.String("user_id", userID),
			slog.String("intent", string(result.Intent)),
			slog.String("outcome", string(result.Outcome)),
			slog.String("company_id", result.CompanyID),
			slog.Bool("intent_cleared", result.IntentCleared))
	}
	if s.events != nil && result.Outcome != domain.OutcomeNoIntent {
		s.events.Enqueue(userID, "tenant_bootstrap", map[string]any{
			"intent":     string(result.Intent),
			"outcome":    string(result.Outcome),
			"company_id": result.CompanyID,
		})
	}
}
