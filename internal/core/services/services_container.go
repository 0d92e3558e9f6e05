package services

import (
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	portssvc "github.com/insaatai/insaat_backend/internal/core/ports/services"
	"github.com/insaatai/insaat_backend/internal/platform/config"
	"github.com/insaatai/insaat_backend/internal/platform/mail"
)

// NewServiceContainer creates a new service container with properly initialized dependencies.
// events may be nil when analytics is disabled.
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, mailer mail.Mailer, events EventSink) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Token = NewTokenService(cfg)
	container.GoogleOAuth = NewGoogleOAuthService(cfg)
	container.Identity = NewIdentityService(cfg, repos.UserRepo, repos.AuthCodeRepo, container.Token, container.GoogleOAuth, mailer)

	// The company service is its own authorizer; project checks go through it too.
	container.Company = NewCompanyService(repos.CompanyRepo)
	container.Project = NewProjectService(
		repos.ProjectRepo,
		repos.CompanyRepo,
		container.Identity,
		WithProjectCompanyAuthorizer(container.Company),
		WithInviteMailer(mailer, cfg.MailFromEmail, cfg.FrontendBaseURL),
	)

	container.Bootstrap = NewBootstrapService(container.Identity, container.Company, events)
	container.Contact = NewContactService(mailer, cfg.ContactFromEmail, cfg.ContactToEmail)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CompanySvcFacade    = (*companyService)(nil)
	_ portssvc.ProjectSvcFacade    = (*projectService)(nil)
	_ portssvc.IdentityProviderSvc = (*identityService)(nil)
)
