package backend

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/config"
	"budgetbook/internal/core"
)

func TestFromAppConfig(t *testing.T) {
	_, err := FromAppConfig(nil)
	require.Error(t, err)

	_, err = FromAppConfig(&config.Config{DataBackend: "sheets"})
	assert.ErrorContains(t, err, "invalid backend type")

	cfg, err := FromAppConfig(&config.Config{
		DataBackend:   config.BackendSQLite,
		SQLiteDBPath:  "x.db",
		ListCacheTTL:  time.Minute,
		ListCacheSize: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, SQLiteBackend, cfg.Type)
	assert.Equal(t, "x.db", cfg.SQLiteDBPath)
	assert.Equal(t, 3, cfg.ListCacheSize)
}

func TestConfig_Validate(t *testing.T) {
	assert.Error(t, Config{Type: "mongo"}.Validate())
	assert.Error(t, Config{Type: SQLiteBackend}.Validate())
	assert.Error(t, Config{Type: MemoryBackend, ListCacheTTL: time.Second}.Validate())
	assert.NoError(t, Config{Type: MemoryBackend}.Validate())
}

func TestCreateBackend(t *testing.T) {
	tests := []struct {
		name   string
		config func(t *testing.T) Config
	}{
		{"memory without cache", func(t *testing.T) Config {
			return Config{Type: MemoryBackend}
		}},
		{"memory with cache", func(t *testing.T) Config {
			return Config{Type: MemoryBackend, ListCacheTTL: time.Minute, ListCacheSize: 8}
		}},
		{"sqlite", func(t *testing.T) Config {
			return Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "b.db")}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := NewFactory(nil).CreateBackend(ctx, tt.config(t))
			require.NoError(t, err)
			defer func() { assert.NoError(t, res.Cleanup()) }()

			require.NoError(t, res.Store.Ping(ctx))

			created, err := res.Services.Goals.Create(ctx, core.Goal{OwnerID: "u1", GoalName: "Trip", TargetAmount: 900, Years: 1})
			require.NoError(t, err)

			goals, err := res.Services.Goals.ListByOwner(ctx, "u1")
			require.NoError(t, err)
			require.Len(t, goals, 1)
			assert.Equal(t, created.ID, goals[0].ID)

			incomes, err := res.Services.Incomes.ListByOwner(ctx, "u1")
			require.NoError(t, err)
			assert.Empty(t, incomes)
		})
	}
}
