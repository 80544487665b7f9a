// Package repomanager wires a storage backend (PostgreSQL, MongoDB or
// memory) into the repositories the services use.
package repomanager

import (
	"context"

	"github.com/vivekprasad7/hc-youtube-backend/internal/server/repositories/users"
)

// RepositoryManager owns the backend connection and vends repositories.
type RepositoryManager interface {
	// Users returns the users repository bound to the shared connection.
	Users() users.Repository
	// WithinTx runs fn with a users repository whose writes commit or roll
	// back together where the backend supports it.
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error
	// RunMigrations brings the schema (tables or indexes) up to date.
	RunMigrations(ctx context.Context) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
