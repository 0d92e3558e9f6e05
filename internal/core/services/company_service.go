package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/utils"
	"github.com/shopspring/decimal"
)

const partnerCandidateLimit = 200

// companyService implements the CompanySvcFacade interface
type companyService struct {
	BaseService
	companyRepo portsrepo.CompanyRepositoryFacade
	now         func() time.Time
}

// NewCompanyService creates a new company service with the provided dependencies
func NewCompanyService(companyRepo portsrepo.CompanyRepositoryFacade) portssvc.CompanySvcFacade {
	s := &companyService{
		companyRepo: companyRepo,
		now:         func() time.Time { return time.Now().UTC() },
	}
	s.CompanyAuthorizer = s
	return s
}

// Ensure companyService implements the CompanySvcFacade interface
var _ portssvc.CompanySvcFacade = (*companyService)(nil)

func (s *companyService) GetCompanyForUser(ctx context.Context, userID string) (*domain.Company, domain.Role, error) {
	company, role, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to resolve company for user", slog.String("user_id", userID))
		}
		return nil, "", err
	}
	return company, role, nil
}

// ListPartnerCandidates requires an owner or manager.
func (s *companyService) ListPartnerCandidates(ctx context.Context, userID string) ([]domain.Company, error) {
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewForbiddenError("user does not belong to a company")
		}
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, userID, company.CompanyID, domain.RoleManager); err != nil {
		return nil, err
	}
	companies, err := s.companyRepo.ListCompaniesExcept(ctx, company.CompanyID, partnerCandidateLimit)
	if err != nil {
		s.LogError(ctx, err, "Failed to list partner candidates", slog.String("user_id", userID))
		return nil, err
	}
	return companies, nil
}

// CreateCompany is safe to repeat: the owner's existing company comes back with created=false.
func (s *companyService) CreateCompany(ctx context.Context, userID string, req dto.CreateCompanyRequest) (*domain.Company, bool, error) {
	name := strings.TrimSpace(req.Name)
	if !domain.ValidCompanyName(name) {
		return nil, false, apperrors.NewValidationFailedError(domain.ErrIntentNameLength.Error())
	}
	budget := decimal.Zero
	if req.InitialBudget != nil {
		if req.InitialBudget.IsNegative() {
			return nil, false, apperrors.NewValidationFailedError("initial budget cannot be negative")
		}
		budget = req.InitialBudget.Round(2)
	}

	now := s.now()
	company := domain.Company{
		CompanyID:     uuid.NewString(),
		Name:          name,
		Plan:          domain.NormalizePlan(req.Plan),
		Currency:      domain.NormalizeCurrency(req.Currency),
		InitialBudget: budget,
		OwnerID:       userID,
		AuditFields:   domain.NewAuditFields(userID, now),
	}

	result, created, err := s.companyRepo.CreateCompanyWithOwner(ctx, company)
	if err != nil {
		s.LogError(ctx, err, "Failed to create company", slog.String("user_id", userID))
		return nil, false, err
	}
	if created {
		s.LogInfo(ctx, "Company created",
			slog.String("company_id", result.CompanyID),
			slog.String("owner_id", userID),
			slog.String("plan", string(result.Plan)))
	} else {
		s.LogInfo(ctx, "User already owns a company, skipping create",
			slog.String("company_id", result.CompanyID),
			slog.String("owner_id", userID))
	}
	return result, created, nil
}

// JoinCompany is safe to repeat: an existing membership yields joined=false.
func (s *companyService) JoinCompany(ctx context.Context, userID, companyID string) (bool, error) {
	id, ok := utils.NormalizeUUID(companyID)
	if !ok {
		return false, apperrors.NewValidationFailedError("company id is not a valid UUID")
	}
	company, err := s.companyRepo.FindCompanyByID(ctx, id)
	if err != nil {
		return false, err
	}
	if company.OwnerID == userID {
		return false, nil
	}
	if _, err := s.companyRepo.FindMembership(ctx, id, userID); err == nil {
		return false, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return false, err
	}

	inserted, err := s.companyRepo.UpsertMembership(ctx, domain.CompanyMember{
		CompanyID: id,
		UserID:    userID,
		Role:      domain.RoleWorker,
		JoinedAt:  s.now(),
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to add company membership",
			slog.String("company_id", id),
			slog.String("user_id", userID))
		return false, err
	}
	if inserted {
		s.LogInfo(ctx, "User joined company", slog.String("company_id", id), slog.String("user_id", userID))
	}
	return inserted, nil
}

func (s *companyService) UpdateCompany(ctx context.Context, userID string, req dto.UpdateCompanyRequest) (*domain.Company, error) {
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, userID, company.CompanyID, domain.RoleManager); err != nil {
		return nil, err
	}

	updated := *company
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !domain.ValidCompanyName(name) {
			return nil, apperrors.NewValidationFailedError(domain.ErrIntentNameLength.Error())
		}
		updated.Name = name
	}
	if req.Plan != nil {
		updated.Plan = domain.NormalizePlan(*req.Plan)
	}
	if req.Currency != nil {
		updated.Currency = domain.NormalizeCurrency(*req.Currency)
	}
	if req.InitialBudget != nil {
		if req.InitialBudget.IsNegative() {
			return nil, apperrors.NewValidationFailedError("initial budget cannot be negative")
		}
		updated.InitialBudget = req.InitialBudget.Round(2)
	}
	updated.LastUpdatedAt = s.now()
	updated.LastUpdatedBy = userID

	if err := s.companyRepo.UpdateCompany(ctx, updated); err != nil {
		s.LogError(ctx, err, "Failed to update company", slog.String("company_id", company.CompanyID))
		return nil, err
	}
	updated.Version++
	return &updated, nil
}

func (s *companyService) ListMembers(ctx context.Context, userID string, params dto.ListMembersParams) ([]domain.CompanyMember, error) {
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.companyRepo.ListMembers(ctx, company.CompanyID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list company members", slog.String("company_id", company.CompanyID))
		return nil, err
	}

	filtered := make([]domain.CompanyMember, 0, len(members))
	for _, m := range members {
		if params.ExcludeOwners && (m.Role == domain.RoleOwner || m.UserID == company.OwnerID) {
			continue
		}
		if params.ExcludeSelf && m.UserID == userID {
			continue
		}
		filtered = append(filtered, m)
	}
	return filtered, nil
}

func (s *companyService) UpdateMemberRole(ctx context.Context, requestingUserID, targetUserID string, role domain.Role) error {
	company, err := s.ownerCompanyForMemberChange(ctx, requestingUserID, targetUserID)
	if err != nil {
		return err
	}
	if !role.IsValid() {
		return apperrors.NewValidationFailedError("unknown role")
	}
	if role == domain.RoleOwner {
		return apperrors.NewValidationFailedError("ownership cannot be assigned")
	}
	if err := s.companyRepo.UpdateMemberRole(ctx, company.CompanyID, targetUserID, role); err != nil {
		return err
	}
	s.LogInfo(ctx, "Member role updated",
		slog.String("company_id", company.CompanyID),
		slog.String("user_id", targetUserID),
		slog.String("role", string(role)))
	return nil
}

func (s *companyService) RemoveMember(ctx context.Context, requestingUserID, targetUserID string) error {
	company, err := s.ownerCompanyForMemberChange(ctx, requestingUserID, targetUserID)
	if err != nil {
		return err
	}
	if err := s.companyRepo.RemoveMember(ctx, company.CompanyID, targetUserID); err != nil {
		return err
	}
	s.LogInfo(ctx, "Member removed",
		slog.String("company_id", company.CompanyID),
		slog.String("user_id", targetUserID))
	return nil
}

// ownerCompanyForMemberChange resolves the requester's company and checks that
// they own it and are not acting on themselves or the owner.
func (s *companyService) ownerCompanyForMemberChange(ctx context.Context, requestingUserID, targetUserID string) (*domain.Company, error) {
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, requestingUserID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, requestingUserID, company.CompanyID, domain.RoleOwner); err != nil {
		return nil, err
	}
	if targetUserID == requestingUserID {
		return nil, apperrors.NewValidationFailedError("owners cannot change or remove their own membership")
	}
	if targetUserID == company.OwnerID {
		return nil, apperrors.NewForbiddenError("the company owner cannot be changed")
	}
	return company, nil
}

func (s *companyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.Role) error {
	member, err := s.companyRepo.FindMembership(ctx, companyID, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		company, cerr := s.companyRepo.FindCompanyByID(ctx, companyID)
		if cerr == nil && company.OwnerID == userID {
			return nil
		}
		return apperrors.NewForbiddenError("user is not a member of this company")
	}
	if !member.Role.AtLeast(requiredRole) {
		s.LogWarn(ctx, "Insufficient company role",
			slog.String("user_id", userID),
			slog.String("company_id", companyID),
			slog.String("role", string(member.Role)),
			slog.String("required_role", string(requiredRole)))
		return apperrors.NewForbiddenError("insufficient permissions")
	}
	return nil
}
