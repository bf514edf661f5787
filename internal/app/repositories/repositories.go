package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	AccountRepository       *AccountRepository
	CompanyUpdateRepository *CompanyUpdateRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		AccountRepository:       NewAccountRepository(db),
		CompanyUpdateRepository: NewCompanyUpdateRepository(db),
	}
}
