package unitofwork

import "context"

// RepositoryFactory hands out short-lived units of work. The audit consumer
// opens one per message; the request path shares one per container.
type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}
