package unitofwork

import "context"

// RepositoryFactory hands out units of work. Postgres and the in-memory
// store both implement it.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
