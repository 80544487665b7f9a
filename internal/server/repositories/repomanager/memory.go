package repomanager

import (
	"context"
	"sync"

	"github.com/vivekprasad7/hc-youtube-backend/internal/server/repositories/users"
)

// MemoryRepositoryManager serves a process-local store.
type MemoryRepositoryManager struct {
	mu   sync.Mutex
	repo *users.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{repo: users.NewMemoryRepository()}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.repo
}

// Store exposes the concrete repository for seeding.
func (m *MemoryRepositoryManager) Store() *users.MemoryRepository {
	return m.repo
}

// WithinTx serializes fn against other WithinTx callers. There is no
// rollback.
func (m *MemoryRepositoryManager) WithinTx(ctx context.Context, fn func(ctx context.Context, repo users.Repository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m.repo)
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *MemoryRepositoryManager) Close(context.Context) error { return nil }
