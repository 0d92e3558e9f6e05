package handlers_test

import (
	"context"
	"errors"

	"github.com/insaatai/insaat_backend/internal/core/domain"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/dto"
	"github.com/stretchr/testify/mock"
)

var errStoreDown = errors.New("store unavailable")

// --- Mock IdentityService ---
type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockIdentityService) UpdateUserMetadata(ctx context.Context, userID string, patch domain.Metadata) (domain.Metadata, error) {
	args := m.Called(ctx, userID, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.Metadata), args.Error(1)
}
func (m *MockIdentityService) SignUp(ctx context.Context, email, password string, metadata domain.Metadata) (*domain.User, error) {
	args := m.Called(ctx, email, password, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockIdentityService) SignIn(ctx context.Context, email, password string) (*domain.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockIdentityService) ExchangeCodeForSession(ctx context.Context, code string) (*domain.Session, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockIdentityService) ExchangeGoogleCode(ctx context.Context, code string) (*domain.Session, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockIdentityService) SessionFromTokens(ctx context.Context, accessToken, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, accessToken, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockIdentityService) RefreshSession(ctx context.Context, userID, refreshToken string) (*domain.Session, error) {
	args := m.Called(ctx, userID, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}
func (m *MockIdentityService) SignOut(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}
func (m *MockIdentityService) SendMagicLink(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *MockIdentityService) RequestPasswordRecovery(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}
func (m *MockIdentityService) UpdatePassword(ctx context.Context, userID, newPassword string) error {
	return m.Called(ctx, userID, newPassword).Error(0)
}

var _ portssvc.IdentityProviderSvc = (*MockIdentityService)(nil)

// --- Mock BootstrapService ---
type MockBootstrapService struct {
	mock.Mock
}

func (m *MockBootstrapService) Run(ctx context.Context, userID string) domain.BootstrapResult {
	return m.Called(ctx, userID).Get(0).(domain.BootstrapResult)
}

var _ portssvc.BootstrapSvc = (*MockBootstrapService)(nil)

// --- Mock CompanyService ---
type MockCompanyService struct {
	mock.Mock
}

func (m *MockCompanyService) GetCompanyForUser(ctx context.Context, userID string) (*domain.Company, domain.Role, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*domain.Company), args.Get(1).(domain.Role), args.Error(2)
}
func (m *MockCompanyService) ListPartnerCandidates(ctx context.Context, userID string) ([]domain.Company, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Company), args.Error(1)
}
func (m *MockCompanyService) CreateCompany(ctx context.Context, userID string, req dto.CreateCompanyRequest) (*domain.Company, bool, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.Company), args.Bool(1), args.Error(2)
}
func (m *MockCompanyService) JoinCompany(ctx context.Context, userID, companyID string) (bool, error) {
	args := m.Called(ctx, userID, companyID)
	return args.Bool(0), args.Error(1)
}
func (m *MockCompanyService) UpdateCompany(ctx context.Context, userID string, req dto.UpdateCompanyRequest) (*domain.Company, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyService) ListMembers(ctx context.Context, userID string, params dto.ListMembersParams) ([]domain.CompanyMember, error) {
	args := m.Called(ctx, userID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompanyMember), args.Error(1)
}
func (m *MockCompanyService) UpdateMemberRole(ctx context.Context, requestingUserID, targetUserID string, role domain.Role) error {
	return m.Called(ctx, requestingUserID, targetUserID, role).Error(0)
}
func (m *MockCompanyService) RemoveMember(ctx context.Context, requestingUserID, targetUserID string) error {
	return m.Called(ctx, requestingUserID, targetUserID).Error(0)
}
func (m *MockCompanyService) AuthorizeUserAction(ctx context.Context, userID, companyID string, requiredRole domain.Role) error {
	return m.Called(ctx, userID, companyID, requiredRole).Error(0)
}

var _ portssvc.CompanySvcFacade = (*MockCompanyService)(nil)

// --- Mock ProjectService ---
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) ListProjectsForUser(ctx context.Context, userID string) ([]domain.Project, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}
func (m *MockProjectService) GetProject(ctx context.Context, userID, projectID string) (*domain.Project, error) {
	args := m.Called(ctx, userID, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
func (m *MockProjectService) CreateProject(ctx context.Context, userID string, req dto.CreateProjectRequest) (*domain.Project, error) {
	args := m.Called(ctx, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
func (m *MockProjectService) AddProjectMembers(ctx context.Context, userID, projectID string, req dto.AddProjectMembersRequest) (int, error) {
	args := m.Called(ctx, userID, projectID, req)
	return args.Int(0), args.Error(1)
}
func (m *MockProjectService) InvitePartners(ctx context.Context, userID, projectID string, req dto.InvitePartnersRequest) (*dto.InvitePartnersResponse, error) {
	args := m.Called(ctx, userID, projectID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.InvitePartnersResponse), args.Error(1)
}
func (m *MockProjectService) AcceptPartnerInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error) {
	args := m.Called(ctx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartnerInvite), args.Error(1)
}
func (m *MockProjectService) RejectPartnerInvite(ctx context.Context, userID, token string) (*domain.PartnerInvite, error) {
	args := m.Called(ctx, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PartnerInvite), args.Error(1)
}

var _ portssvc.ProjectSvcFacade = (*MockProjectService)(nil)

// --- Mock ContactService ---
type MockContactService struct {
	mock.Mock
}

func (m *MockContactService) Submit(ctx context.Context, req dto.ContactRequest) error {
	return m.Called(ctx, req).Error(0)
}

var _ portssvc.ContactSvc = (*MockContactService)(nil)
