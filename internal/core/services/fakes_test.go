package services_test

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/insaatai/insaat_backend/internal/apperrors"
	"github.com/insaatai/insaat_backend/internal/core/domain"
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/platform/mail"
)

// memCompanyRepo is an in-memory CompanyRepositoryFacade with the same
// uniqueness rules as the schema: one company per owner, one membership per
// (company, user).
type memCompanyRepo struct {
	mu        sync.Mutex
	companies map[string]domain.Company
	members   map[string]map[string]domain.CompanyMember
	createErr error
	joinErr   error
}

func newMemCompanyRepo() *memCompanyRepo {
	return &memCompanyRepo{
		companies: map[string]domain.Company{},
		members:   map[string]map[string]domain.CompanyMember{},
	}
}

var _ portsrepo.CompanyRepositoryFacade = (*memCompanyRepo)(nil)

func (r *memCompanyRepo) FindCompanyByID(_ context.Context, companyID string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[companyID]
	if !ok {
		return nil, apperrors.NewNotFoundError("company not found")
	}
	return &c, nil
}

func (r *memCompanyRepo) FindCompanyByOwner(_ context.Context, userID string) (*domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byOwnerLocked(userID)
}

func (r *memCompanyRepo) byOwnerLocked(userID string) (*domain.Company, error) {
	for _, c := range r.companies {
		if c.OwnerID == userID {
			c := c
			return &c, nil
		}
	}
	return nil, apperrors.NewNotFoundError("company not found")
}

func (r *memCompanyRepo) FindCompanyForUser(_ context.Context, userID string) (*domain.Company, domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, err := r.byOwnerLocked(userID); err == nil {
		return c, domain.RoleOwner, nil
	}
	for companyID, ms := range r.members {
		if m, ok := ms[userID]; ok {
			c := r.companies[companyID]
			return &c, m.Role, nil
		}
	}
	return nil, "", apperrors.NewNotFoundError("user has no company")
}

func (r *memCompanyRepo) ListCompaniesExcept(_ context.Context, companyID string, limit int) ([]domain.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Company
	for id, c := range r.companies {
		if id != companyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memCompanyRepo) CreateCompanyWithOwner(_ context.Context, company domain.Company) (*domain.Company, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, false, r.createErr
	}
	if existing, err := r.byOwnerLocked(company.OwnerID); err == nil {
		r.upsertLocked(domain.CompanyMember{CompanyID: existing.CompanyID, UserID: company.OwnerID, Role: domain.RoleOwner})
		return existing, false, nil
	}
	company.Version = 1
	r.companies[company.CompanyID] = company
	r.upsertLocked(domain.CompanyMember{CompanyID: company.CompanyID, UserID: company.OwnerID, Role: domain.RoleOwner, JoinedAt: company.CreatedAt})
	return &company, true, nil
}

func (r *memCompanyRepo) UpdateCompany(_ context.Context, company domain.Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.companies[company.CompanyID]
	if !ok {
		return apperrors.NewNotFoundError("company not found")
	}
	if current.Version != company.Version {
		return apperrors.NewConflictError("company was modified concurrently")
	}
	company.Version++
	r.companies[company.CompanyID] = company
	return nil
}

func (r *memCompanyRepo) FindMembership(_ context.Context, companyID, userID string) (*domain.CompanyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[companyID][userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("membership not found")
	}
	return &m, nil
}

func (r *memCompanyRepo) UpsertMembership(_ context.Context, member domain.CompanyMember) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joinErr != nil {
		return false, r.joinErr
	}
	if _, ok := r.companies[member.CompanyID]; !ok {
		return false, apperrors.NewNotFoundError("company not found")
	}
	return r.upsertLocked(member), nil
}

func (r *memCompanyRepo) upsertLocked(member domain.CompanyMember) bool {
	ms, ok := r.members[member.CompanyID]
	if !ok {
		ms = map[string]domain.CompanyMember{}
		r.members[member.CompanyID] = ms
	}
	if _, exists := ms[member.UserID]; exists {
		return false
	}
	ms[member.UserID] = member
	return true
}

func (r *memCompanyRepo) ListMembers(_ context.Context, companyID string) ([]domain.CompanyMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.CompanyMember
	for _, m := range r.members[companyID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (r *memCompanyRepo) UpdateMemberRole(_ context.Context, companyID, userID string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[companyID][userID]
	if !ok {
		return apperrors.NewNotFoundError("membership not found")
	}
	m.Role = role
	r.members[companyID][userID] = m
	return nil
}

func (r *memCompanyRepo) RemoveMember(_ context.Context, companyID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.members[companyID][userID]; !ok {
		return apperrors.NewNotFoundError("membership not found")
	}
	delete(r.members[companyID], userID)
	return nil
}

func (r *memCompanyRepo) companyCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.companies)
}

func (r *memCompanyRepo) memberCount(companyID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members[companyID])
}

// memIdentity is an in-memory IdentityReaderSvc.
type memIdentity struct {
	mu      sync.Mutex
	users   map[string]domain.User
	getErr  error
	updates int
}

func newMemIdentity() *memIdentity {
	return &memIdentity{users: map[string]domain.User{}}
}

var _ portssvc.IdentityReaderSvc = (*memIdentity)(nil)

func (m *memIdentity) addUser(userID string, metadata domain.Metadata) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if metadata == nil {
		metadata = domain.Metadata{}
	}
	m.users[userID] = domain.User{
		UserID:       userID,
		Email:        userID + "@example.com",
		AuthProvider: domain.ProviderLocal,
		Metadata:     metadata,
		AuditFields:  domain.NewAuditFields(userID, time.Now()),
	}
}

func (m *memIdentity) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	u.Metadata = copyMetadata(u.Metadata)
	return &u, nil
}

func (m *memIdentity) UpdateUserMetadata(ctx context.Context, userID string, patch domain.Metadata) (domain.Metadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("user not found")
	}
	md := copyMetadata(u.Metadata)
	for k, v := range patch {
		if v == nil {
			delete(md, k)
			continue
		}
		md[k] = v
	}
	u.Metadata = md
	m.users[userID] = u
	m.updates++
	return copyMetadata(md), nil
}

func (m *memIdentity) metadata(userID string) domain.Metadata {
	m.mu.Lock()
	defer m.mu.Unlock()
	return copyMetadata(m.users[userID].Metadata)
}

func copyMetadata(md domain.Metadata) domain.Metadata {
	out := make(domain.Metadata, len(md))
	for k, v := range md {
		out[k] = v
	}
	return out
}

// recordingEvents captures analytics events.
type recordingEvents struct {
	mu     sync.Mutex
	events []string
	props  []map[string]any
}

func (e *recordingEvents) Enqueue(_ string, event string, properties map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, event)
	e.props = append(e.props, properties)
}

func (e *recordingEvents) count() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.events)
}

// recordingMailer captures outgoing mail.
type recordingMailer struct {
	mu   sync.Mutex
	sent []mail.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var errStoreDown = errors.New("store unavailable")

// memProjectRepo is an in-memory ProjectRepositoryFacade.
type memProjectRepo struct {
	mu       sync.Mutex
	projects map[string]domain.Project
	members  map[string]map[string]domain.ProjectMember
	invites  map[string]domain.PartnerInvite
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{
		projects: map[string]domain.Project{},
		members:  map[string]map[string]domain.ProjectMember{},
		invites:  map[string]domain.PartnerInvite{},
	}
}

var _ portsrepo.ProjectRepositoryFacade = (*memProjectRepo)(nil)

func (r *memProjectRepo) FindProjectByID(_ context.Context, projectID string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[projectID]
	if !ok {
		return nil, apperrors.NewNotFoundError("project not found")
	}
	return &p, nil
}

func (r *memProjectRepo) ListProjectsByCompany(_ context.Context, companyID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for _, p := range r.projects {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProjectRepo) ListProjectsByActiveMember(_ context.Context, userID string) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for projectID, ms := range r.members {
		if m, ok := ms[userID]; ok && m.Status == domain.ProjectMemberActive {
			out = append(out, r.projects[projectID])
		}
	}
	return out, nil
}

func (r *memProjectRepo) SaveProject(_ context.Context, project domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects[project.ProjectID] = project
	return nil
}

func (r *memProjectRepo) FindProjectMember(_ context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[projectID][userID]
	if !ok {
		return nil, apperrors.NewNotFoundError("project member not found")
	}
	return &m, nil
}

func (r *memProjectRepo) AddProjectMembersBulk(_ context.Context, members []domain.ProjectMember) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	added := 0
	for _, m := range members {
		if r.upsertMemberLocked(m) {
			added++
		}
	}
	return added, nil
}

func (r *memProjectRepo) upsertMemberLocked(m domain.ProjectMember) bool {
	ms, ok := r.members[m.ProjectID]
	if !ok {
		ms = map[string]domain.ProjectMember{}
		r.members[m.ProjectID] = ms
	}
	if existing, ok := ms[m.UserID]; ok && existing.Status == domain.ProjectMemberActive {
		return false
	}
	ms[m.UserID] = m
	return true
}

func (r *memProjectRepo) SavePartnerInvites(_ context.Context, invites []domain.PartnerInvite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range invites {
		for id, existing := range r.invites {
			if existing.Status == domain.InvitePending && existing.ProjectID == inv.ProjectID &&
				existing.InvitedCompanyID == inv.InvitedCompanyID {
				delete(r.invites, id)
			}
		}
		r.invites[inv.InviteID] = inv
	}
	return nil
}

func (r *memProjectRepo) FindInviteByTokenHash(_ context.Context, tokenHash string) (*domain.PartnerInvite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invites {
		if inv.TokenHash == tokenHash {
			return &inv, nil
		}
	}
	return nil, apperrors.NewNotFoundError("invite not found")
}

func (r *memProjectRepo) AcceptPartnerInvite(_ context.Context, inviteID string, member domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[inviteID]
	if !ok || inv.Status != domain.InvitePending {
		return apperrors.NewConflictError("invite is no longer pending")
	}
	inv.Status = domain.InviteAccepted
	r.invites[inviteID] = inv
	r.upsertMemberLocked(member)
	return nil
}

func (r *memProjectRepo) UpdateInviteStatus(_ context.Context, inviteID string, status domain.PartnerInviteStatus, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invites[inviteID]
	if !ok || inv.Status != domain.InvitePending {
		return apperrors.NewConflictError("invite is no longer pending")
	}
	inv.Status = status
	r.invites[inviteID] = inv
	return nil
}

func (r *memProjectRepo) inviteStatus(inviteID string) domain.PartnerInviteStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.invites[inviteID].Status
}

func (r *memProjectRepo) expireAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, inv := range r.invites {
		inv.ExpiresAt = time.Now().Add(-time.Hour)
		r.invites[id] = inv
	}
}

// memUserRepo is an in-memory UserRepositoryFacade.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]domain.User{}}
}

var _ portsrepo.UserRepositoryFacade = (*memUserRepo)(nil)

func (r *memUserRepo) FindUserByID(_ context.Context, userID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	u.Metadata = copyMetadata(u.Metadata)
	return &u, nil
}

func (r *memUserRepo) FindUserByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u.Metadata = copyMetadata(u.Metadata)
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) FindUserByProviderDetails(_ context.Context, provider domain.AuthProvider, providerUserID string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.AuthProvider == provider && u.ProviderUserID != nil && *u.ProviderUserID == providerUserID {
			return &u, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *memUserRepo) SaveUser(_ context.Context, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrDuplicate
		}
	}
	user.Metadata = copyMetadata(user.Metadata)
	r.users[user.UserID] = user
	return nil
}

func (r *memUserRepo) MergeUserMetadata(_ context.Context, userID string, patch domain.Metadata) (domain.Metadata, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	md := copyMetadata(u.Metadata)
	for k, v := range patch {
		if v == nil {
			delete(md, k)
			continue
		}
		md[k] = v
	}
	u.Metadata = md
	r.users[userID] = u
	return copyMetadata(md), nil
}

func (r *memUserRepo) MarkEmailConfirmed(_ context.Context, userID string, at time.Time) error {
	return r.update(userID, func(u *domain.User) {
		if u.EmailConfirmedAt == nil {
			u.EmailConfirmedAt = &at
		}
	})
}

func (r *memUserRepo) UpdatePasswordHash(_ context.Context, userID, passwordHash string, _ time.Time) error {
	return r.update(userID, func(u *domain.User) { u.PasswordHash = &passwordHash })
}

func (r *memUserRepo) LinkProvider(_ context.Context, userID string, provider domain.AuthProvider, providerUserID string) error {
	return r.update(userID, func(u *domain.User) {
		u.AuthProvider = provider
		u.ProviderUserID = &providerUserID
	})
}

func (r *memUserRepo) UpdateRefreshToken(_ context.Context, userID, refreshTokenHash string, expiresAt time.Time) error {
	return r.update(userID, func(u *domain.User) {
		u.RefreshTokenHash = refreshTokenHash
		u.RefreshTokenExpiryTime = &expiresAt
	})
}

func (r *memUserRepo) ClearRefreshToken(_ context.Context, userID string) error {
	return r.update(userID, func(u *domain.User) {
		u.RefreshTokenHash = ""
		u.RefreshTokenExpiryTime = nil
	})
}

func (r *memUserRepo) update(userID string, fn func(u *domain.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return apperrors.ErrNotFound
	}
	fn(&u)
	r.users[userID] = u
	return nil
}

func (r *memUserRepo) stored(userID string) domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[userID]
}

// memAuthCodeRepo is an in-memory AuthCodeRepository with single-use consumption.
type memAuthCodeRepo struct {
	mu    sync.Mutex
	codes map[string]domain.AuthCode
}

func newMemAuthCodeRepo() *memAuthCodeRepo {
	return &memAuthCodeRepo{codes: map[string]domain.AuthCode{}}
}

var _ portsrepo.AuthCodeRepository = (*memAuthCodeRepo)(nil)

func (r *memAuthCodeRepo) SaveAuthCode(_ context.Context, code domain.AuthCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes[code.CodeHash] = code
	return nil
}

func (r *memAuthCodeRepo) ConsumeAuthCode(_ context.Context, codeHash string, now time.Time) (*domain.AuthCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	code, ok := r.codes[codeHash]
	if !ok || code.UsedAt != nil || now.After(code.ExpiresAt) {
		return nil, apperrors.ErrInvalidCode
	}
	code.UsedAt = &now
	r.codes[codeHash] = code
	return &code, nil
}
