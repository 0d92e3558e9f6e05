package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/insaatai/insaat_backend/internal/platform/mail"
	"github.com/insaatai/insaat_backend/internal/utils"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// projectService implements the ProjectSvcFacade interface
type projectService struct {
	BaseService
	projectRepo     portsrepo.ProjectRepositoryFacade
	companyRepo     portsrepo.CompanyRepositoryFacade
	identity        portssvc.IdentityReaderSvc
	mailer          mail.Mailer
	mailFrom        string
	frontendBaseURL string
	now             func() time.Time
}

// ProjectServiceOption configures optional collaborators of the project service.
type ProjectServiceOption func(*projectService)

// WithInviteMailer mails partner invites from the given address.
func WithInviteMailer(m mail.Mailer, from, frontendBaseURL string) ProjectServiceOption {
	return func(s *projectService) {
		s.mailer = m
		s.mailFrom = from
		s.frontendBaseURL = frontendBaseURL
	}
}

// WithProjectCompanyAuthorizer sets the authorizer used for role checks.
func WithProjectCompanyAuthorizer(authorizer portssvc.CompanyAuthorizerSvc) ProjectServiceOption {
	return func(s *projectService) {
		s.CompanyAuthorizer = authorizer
	}
}

// NewProjectService creates a new project service with the provided dependencies
func NewProjectService(
	projectRepo portsrepo.ProjectRepositoryFacade,
	companyRepo portsrepo.CompanyRepositoryFacade,
	identity portssvc.IdentityReaderSvc,
	opts ...ProjectServiceOption,
) portssvc.ProjectSvcFacade {
	s := &projectService{
		projectRepo: projectRepo,
		companyRepo: companyRepo,
		identity:    identity,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.ProjectSvcFacade = (*projectService)(nil)

func (s *projectService) ListProjectsForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	var own []domain.Project
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	switch {
	case err == nil:
		own, err = s.projectRepo.ListProjectsByCompany(ctx, company.CompanyID)
		if err != nil {
			s.LogError(ctx, err, "Failed to list company projects", slog.String("company_id", company.CompanyID))
			return nil, err
		}
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}

	shared, err := s.projectRepo.ListProjectsByActiveMember(ctx, userID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list member projects", slog.String("user_id", userID))
		return nil, err
	}
	return MergeProjects(own, shared), nil
}

// MergeProjects unions the lists, drops duplicate ids and sorts by name
// using Turkish collation, then by id.
func MergeProjects(lists ...[]domain.Project) []domain.Project {
	seen := make(map[string]struct{})
	merged := []domain.Project{}
	for _, list := range lists {
		for _, p := range list {
			if _, dup := seen[p.ProjectID]; dup {
				continue
			}
			seen[p.ProjectID] = struct{}{}
			merged = append(merged, p)
		}
	}

	// A Collator is not safe for concurrent use.
	c := collate.New(language.Turkish, collate.IgnoreCase)
	sort.SliceStable(merged, func(i, j int) bool {
		if cmp := c.CompareString(merged[i].Name, merged[j].Name); cmp != 0 {
			return cmp < 0
		}
		return merged[i].ProjectID < merged[j].ProjectID
	})
	return merged
}

func (s *projectService) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	if !utils.IsValidUUID(projectID) {
		return nil, apperrors.ErrNotFound
	}
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeProjectRead(ctx, userID, project); err != nil {
		return nil, err
	}
	return project, nil
}

// authorizeProjectRead allows members of the owning company and active project members.
func (s *projectService) authorizeProjectRead(ctx context.Context, userID string, project *domain.Project) error {
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	if err == nil && company.CompanyID == project.CompanyID {
		return nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	member, err := s.projectRepo.FindProjectMember(ctx, project.ProjectID, userID)
	if err == nil && member.Status == domain.ProjectMemberActive {
		return nil
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	return apperrors.NewForbiddenError("you do not have access to this project")
}

// managedProject loads a project the user may manage: a manager or owner of the owning company.
func (s *projectService) managedProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	if !utils.IsValidUUID(projectID) {
		return nil, apperrors.ErrNotFound
	}
	project, err := s.projectRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, userID, project.CompanyID, domain.RoleManager); err != nil {
		return nil, err
	}
	return project, nil
}

func (s *projectService) CreateProject(ctx context.Context, userID string, req dto.CreateProjectRequest) (*domain.Project, error) {
	company, _, err := s.companyRepo.FindCompanyForUser(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationFailedError("create or join a company before adding projects")
		}
		return nil, err
	}
	if err := s.AuthorizeUser(ctx, userID, company.CompanyID, domain.RoleManager); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 160 {
		return nil, apperrors.NewValidationFailedError("project name must be between 2 and 160 characters")
	}
	if req.AreaM2 != nil && req.AreaM2.IsNegative() {
		return nil, apperrors.NewValidationFailedError("area cannot be negative")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, apperrors.NewValidationFailedError("end date must not be before start date")
	}

	project := domain.Project{
		ProjectID:   uuid.NewString(),
		CompanyID:   company.CompanyID,
		Name:        name,
		Location:    strings.TrimSpace(req.Location),
		AreaM2:      req.AreaM2,
		FloorCount:  req.FloorCount,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AuditFields: domain.NewAuditFields(userID, s.now()),
	}
	if err := s.projectRepo.SaveProject(ctx, project); err != nil {
		s.LogError(ctx, err, "Failed to save project", slog.String("company_id", company.CompanyID))
		return nil, err
	}
	s.LogInfo(ctx, "Project created",
		slog.String("project_id", project.ProjectID),
		slog.String("company_id", company.CompanyID))
	return &project, nil
}

func (s *projectService) AddProjectMembers(ctx context.Context, userID, projectID string, req dto.AddProjectMembersRequest) (int, error) {
	project, err := s.managedProject(ctx, userID, projectID)
	if err != nil {
		return 0, err
	}

	role := domain.RoleWorker
	if req.Role != "" {
		parsed, ok := domain.ParseRole(req.Role)
		if !ok || parsed == domain.RoleOwner {
			return 0, apperrors.NewValidationFailedError("role must be manager or worker")
		}
		role = parsed
	}

	userIDs := utils.MergeIDs(nil, req.UserIDs)
	if len(userIDs) == 0 {
		return 0, apperrors.NewValidationFailedError("no valid user ids given")
	}

	now := s.now()
	members := make([]domain.ProjectMember, 0, len(userIDs))
	var outsiders []string
	for _, id := range userIDs {
		if _, err := s.companyRepo.FindMembership(ctx, project.CompanyID, id); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				outsiders = append(outsiders, id)
				continue
			}
			return 0, err
		}
		members = append(members, domain.ProjectMember{
			ProjectID: project.ProjectID,
			UserID:    id,
			CompanyID: project.CompanyID,
			Role:      role,
			Status:    domain.ProjectMemberActive,
			AddedBy:   userID,
			JoinedAt:  now,
		})
	}
	if len(outsiders) > 0 {
		return 0, apperrors.NewValidationFailedError("not members of the company: " + strings.Join(outsiders, ", "))
	}

	added, err := s.projectRepo.AddProjectMembersBulk(ctx, members)
	if err != nil {
		s.LogError(ctx, err, "Failed to add project members", slog.String("project_id", project.ProjectID))
		return 0, err
	}
	s.LogInfo(ctx, "Project members added",
		slog.String("project_id", project.ProjectID),
		slog.Int("requested", len(members)),
		slog.Int("added", added))
	return added, nil
}

func (s *projectService) InvitePartners(ctx context.Context, userID, projectID string, req dto.InvitePartnersRequest) (*dto.InvitePartnersResponse, error) {
	project, err := s.managedProject(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	candidates := utils.MergeIDs(req.CompanyIDs, utils.ParseIDList(req.ManualIDs))
	companyIDs := make([]string, 0, len(candidates))
	for _, id := range candidates {
		if id != project.CompanyID {
			companyIDs = append(companyIDs, id)
		}
	}
	if len(companyIDs) == 0 {
		return nil, apperrors.NewValidationFailedError("select at least one partner company")
	}

	expireDays := domain.DefaultInviteExpireDays
	if req.ExpireDays != nil {
		expireDays = *req.ExpireDays
	}
	if expireDays < 1 || expireDays > domain.MaxInviteExpireDays {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("expireDays must be between 1 and %d", domain.MaxInviteExpireDays))
	}

	now := s.now()
	expiresAt := now.Add(time.Duration(expireDays) * 24 * time.Hour)
	invites := make([]domain.PartnerInvite, 0, len(companyIDs))
	partners := make([]*domain.Company, 0, len(companyIDs))
	tokens := make([]string, 0, len(companyIDs))
	var unknown []string
	for _, id := range companyIDs {
		partner, err := s.companyRepo.FindCompanyByID(ctx, id)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				unknown = append(unknown, id)
				continue
			}
			return nil, err
		}
		token, err := utils.GenerateSecureRandomString(32)
		if err != nil {
			return nil, err
		}
		invites = append(invites, domain.PartnerInvite{
			InviteID:          uuid.NewString(),
			ProjectID:         project.ProjectID,
			InvitingCompanyID: project.CompanyID,
			InvitedCompanyID:  id,
			TokenHash:         utils.HashToken(token),
			Status:            domain.InvitePending,
			ExpiresAt:         expiresAt,
			InvitedBy:         userID,
			CreatedAt:         now,
		})
		partners = append(partners, partner)
		tokens = append(tokens, token)
	}
	if len(unknown) > 0 {
		return nil, apperrors.NewValidationFailedError("unknown companies: " + strings.Join(unknown, ", "))
	}

	if err := s.projectRepo.SavePartnerInvites(ctx, invites); err != nil {
		s.LogError(ctx, err, "Failed to save partner invites", slog.String("project_id", project.ProjectID))
		return nil, err
	}

	inviterName := ""
	if inviter, err := s.companyRepo.FindCompanyByID(ctx, project.CompanyID); err == nil {
		inviterName = inviter.Name
	}
	for i, partner := range partners {
		if err := s.mailInvite(ctx, project, inviterName, partner, tokens[i], expiresAt); err != nil {
			s.LogError(ctx, err, "Failed to mail partner invite",
				slog.String("project_id", project.ProjectID),
				slog.String("company_id", partner.CompanyID))
		}
	}

	s.LogInfo(ctx, "Partner companies invited",
		slog.String("project_id", project.ProjectID),
		slog.Int("count", len(invites)))
	return &dto.InvitePartnersResponse{Invited: companyIDs, ExpiresAt: expiresAt}, nil
}

func (s *projectService) mailInvite(ctx context.Context, project *domain.Project, inviterName string, partner *domain.Company, token string, expiresAt time.Time) error {
	if s.mailer == nil {
		return nil
	}
	owner, err := s.identity.GetUser(ctx, partner.OwnerID)
	if err != nil {
		return fmt.Errorf("load partner owner: %w", err)
	}
	link := strings.TrimRight(s.frontendBaseURL, "/") + "/invites/" + url.PathEscape(token)
	expires := expiresAt.Format("02.01.2006")
	text := fmt.Sprintf("Merhaba,\n\n%s firması sizi \"%s\" projesine ortak olarak davet etti.\nDavet %s tarihine kadar geçerlidir.\n\n%s\n",
		inviterName, project.Name, expires, link)
	body := fmt.Sprintf(`<p>Merhaba,</p><p>%s firması sizi <strong>%s</strong> projesine ortak olarak davet etti.</p><p>Davet %s tarihine kadar geçerlidir.</p><p><a href="%s">Daveti görüntüle</a></p>`,
		html.EscapeString(inviterName), html.EscapeString(project.Name), expires, html.EscapeString(link))
	return s.mailer.Send(ctx, mail.Message{
		Kind:    "partner_invite",
		From:    s.mailFrom,
		To:      []string{owner.Email},
		Subject: "Proje ortaklık daveti: " + project.Name,
		Text:    text,
		HTML:    body,
	})
}

func (s *projectService) AcceptPartnerInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error) {
	invite, err := s.answerableInvite(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	now := s.now()
	member := domain.ProjectMember{
		ProjectID: invite.ProjectID,
		UserID:    userID,
		CompanyID: invite.InvitedCompanyID,
		Role:      domain.RoleOwner,
		Status:    domain.ProjectMemberActive,
		AddedBy:   invite.InvitedBy,
		JoinedAt:  now,
	}
	if err := s.projectRepo.AcceptPartnerInvite(ctx, invite.InviteID, member); err != nil {
		return nil, err
	}
	invite.Status = domain.InviteAccepted
	s.LogInfo(ctx, "Partner invite accepted",
		slog.String("invite_id", invite.InviteID),
		slog.String("project_id", invite.ProjectID))
	return invite, nil
}

func (s *projectService) RejectPartnerInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error) {
	invite, err := s.answerableInvite(ctx, userID, token)
	if err != nil {
		return nil, err
	}
	if err := s.projectRepo.UpdateInviteStatus(ctx, invite.InviteID, domain.InviteRejected, s.now()); err != nil {
		return nil, err
	}
	invite.Status = domain.InviteRejected
	s.LogInfo(ctx, "Partner invite rejected", slog.String("invite_id", invite.InviteID))
	return invite, nil
}

// answerableInvite loads a pending, unexpired invite addressed to a company the user owns.
func (s *projectService) answerableInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperrors.ErrNotFound
	}
	invite, err := s.projectRepo.FindInviteByTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.FindCompanyByID(ctx, invite.InvitedCompanyID)
	if err != nil {
		return nil, err
	}
	if company.OwnerID != userID {
		return nil, apperrors.NewForbiddenError("only the invited company's owner can answer this invite")
	}

	if invite.Status != domain.InvitePending {
		return nil, apperrors.NewConflictError("invite has already been answered")
	}
	now := s.now()
	if invite.IsExpired(now) {
		if err := s.projectRepo.UpdateInviteStatus(ctx, invite.InviteID, domain.InviteExpired, now); err != nil {
			s.LogError(ctx, err, "Failed to mark invite expired", slog.String("invite_id", invite.InviteID))
		}
		return nil, apperrors.NewConflictError("invite has expired")
	}
	return invite, nil
}
