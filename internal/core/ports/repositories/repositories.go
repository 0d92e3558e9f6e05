package repositories

// RepositoryProvider holds all repository interfaces needed by services.
type RepositoryProvider struct {
	UserRepo     UserRepositoryFacade
	AuthCodeRepo AuthCodeRepository
	CompanyRepo  CompanyRepositoryFacade
	ProjectRepo  ProjectRepositoryFacade
	Health       HealthChecker
}
