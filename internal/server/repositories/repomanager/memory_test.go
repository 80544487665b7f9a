package repomanager

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vivekprasad7/hc-youtube-backend/internal/common"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/models"
	"github.com/vivekprasad7/hc-youtube-backend/internal/server/repositories/users"
)

func TestMemoryRepositoryManager_WithinTxSerializesCheckThenInsert(t *testing.T) {
	m := NewMemoryRepositoryManager()
	var _ RepositoryManager = m

	register := func(ctx context.Context, repo users.Repository) error {
		if _, err := repo.FindByUsernameOrEmail(ctx, "alice", "alice@example.com"); err == nil {
			return common.ErrConflict
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		_, err := repo.Create(ctx, &models.User{Username: "alice", Email: "alice@example.com"})
		return err
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.WithinTx(context.Background(), register)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, common.ErrConflict) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, 7, conflicts)

	require.NoError(t, m.RunMigrations(context.Background()))
	require.NoError(t, m.Ping(context.Background()))
	require.NoError(t, m.Close(context.Background()))
}
