package app

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/comptoirs/internal/clock"
	"github.com/vladislavdragonenkov/comptoirs/internal/domain"
	"github.com/vladislavdragonenkov/comptoirs/internal/metrics"
	"github.com/vladislavdragonenkov/comptoirs/internal/service/line"
	"github.com/vladislavdragonenkov/comptoirs/internal/service/order"
	"github.com/vladislavdragonenkov/comptoirs/internal/storage/memory"
	"github.com/vladislavdragonenkov/comptoirs/internal/storage/postgres"
)

// App — собранное ядро: сервисы заказов и позиций поверх выбранного
// хранилища. Закрывается через Close.
type App struct {
	Orders *order.Service
	Lines  *line.Service

	// UnitOfWork выставлен для инструментов поверх ядра (сидеры, тесты).
	UnitOfWork domain.UnitOfWork

	store *postgres.Store
}

// Build связывает часы, хранилище и сервисы согласно конфигурации.
func Build(ctx context.Context, cfg Config, logger *log.Entry) (*App, error) {
	if logger == nil {
		l := log.New()
		logger = log.NewEntry(l)
	}

	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.System(loc)

	var (
		uow   domain.UnitOfWork
		store *postgres.Store
	)
	switch cfg.StorageDriver {
	case StorageDriverMemory:
		uow = memory.NewStore()
		logger.Info("using in-memory storage")
	case StorageDriverPostgres:
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres storage driver requires a DSN")
		}
		store, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres storage: %w", err)
		}
		if cfg.PostgresAutoMigrate {
			if err := store.EnsureSchema(ctx); err != nil {
				_ = store.Close()
				return nil, fmt.Errorf("apply migrations: %w", err)
			}
		}
		uow = postgres.NewUnitOfWork(store)
		logger.Info("using postgres storage")
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.StorageDriver)
	}

	m := metrics.NewServiceMetrics()

	return &App{
		Orders:     order.NewService(uow, clk, rules, logger.WithField("service", "order"), m),
		Lines:      line.NewService(uow, logger.WithField("service", "line"), m),
		UnitOfWork: uow,
		store:      store,
	}, nil
}

// Close освобождает ресурсы хранилища.
func (a *App) Close() error {
	if a == nil || a.store == nil {
		return nil
	}
	return a.store.Close()
}
