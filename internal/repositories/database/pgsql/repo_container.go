package pgsql

import (
	portsrepo "github.com/insaatai/insaat_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	base := &BaseRepository{Pool: dbPool}

	return portsrepo.RepositoryProvider{
		UserRepo:     newPgxUserRepository(base),
		AuthCodeRepo: newPgxAuthCodeRepository(base),
		CompanyRepo:  newPgxCompanyRepository(base),
		ProjectRepo:  newPgxProjectRepository(base),
		Health:       base,
	}
}
