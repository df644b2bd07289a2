package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cache"
	"budgetbook/internal/core"
	"budgetbook/internal/services"
	"budgetbook/internal/storage"
	"budgetbook/internal/storage/memory"
)

const cacheCleanupInterval = 5 * time.Minute

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *slog.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *slog.Logger) Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefaultFactory{logger: logger}
}

// CreateBackend opens the document store, connects the optional AMQP
// publisher and wires one record service per kind on top of them.
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(config)
	if err != nil {
		return nil, err
	}

	var publisher services.Publisher
	var amqpClient *amqp.Client
	if config.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(config.AMQPURL, config.AMQPExchange, config.AMQPQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			publisher = amqpClient
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", config.AMQPExchange,
				"queue", config.AMQPQueue)
		}
	}

	caches := cache.NewManager()
	svcs := Services{
		Incomes:  services.NewRecordService[core.Income](storage.NewRepository[core.Income](store), publisher, newListCache[core.Income](config, caches)),
		Expenses: services.NewRecordService[core.Expense](storage.NewRepository[core.Expense](store), publisher, newListCache[core.Expense](config, caches)),
		Goals:    services.NewRecordService[core.Goal](storage.NewRepository[core.Goal](store), publisher, newListCache[core.Goal](config, caches)),
	}
	if config.ListCacheTTL > 0 {
		caches.StartCleanup(cacheCleanupInterval)
	}

	cleanup := func() error {
		caches.Stop()
		var errs []error
		if amqpClient != nil {
			if err := amqpClient.Close(); err != nil {
				errs = append(errs, fmt.Errorf("amqp: %w", err))
			}
		}
		if err := store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
		return errors.Join(errs...)
	}

	f.logger.InfoContext(ctx, "Initialized backend",
		"type", config.Type,
		"amqp_enabled", publisher != nil,
		"list_cache_ttl", config.ListCacheTTL)

	return &BackendResult{
		Store:    store,
		Services: svcs,
		Cleanup:  cleanup,
	}, nil
}

func (f *DefaultFactory) openStore(config Config) (storage.DocumentStore, error) {
	switch config.Type {
	case SQLiteBackend:
		store, err := storage.NewSQLiteStore(config.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		f.logger.Info("Initialized SQLite store", "db_path", config.SQLiteDBPath)
		return store, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory store, records are lost on restart")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func newListCache[T any](config Config, m *cache.Manager) *cache.LRUCache[[]T] {
	if config.ListCacheTTL <= 0 {
		return nil
	}
	c := cache.NewLRUCache[[]T](config.ListCacheSize, config.ListCacheTTL)
	m.Register(c)
	return c
}
