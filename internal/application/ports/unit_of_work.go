// Package ports - UnitOfWork scopes a database transaction.
package ports

import "context"

// UnitOfWork runs a function inside one database transaction.
//
// Execute begins a transaction, injects it into the context passed to fn,
// commits when fn returns nil and rolls back otherwise (including on panic).
// Repositories called with the inner context operate on that transaction;
// called with any other context they hit the pool directly.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context) error) error
}
