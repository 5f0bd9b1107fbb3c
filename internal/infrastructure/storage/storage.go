// Package storage elige el almacén (PostgreSQL o memoria) según la configuración.
package storage

import (
	"context"
	"fmt"

	"github.com/jhoicas/bitacora/internal/application/ledger"
	"github.com/jhoicas/bitacora/internal/application/reconcile"
	"github.com/jhoicas/bitacora/internal/infrastructure/memory"
	"github.com/jhoicas/bitacora/internal/infrastructure/postgres"
	"github.com/jhoicas/bitacora/pkg/config"
)

// Backend sirve a ambos motores.
type Backend interface {
	ledger.TxRunner
	reconcile.TxRunner
}

// Open abre el almacén configurado. close libera los recursos (pool de conexiones).
func Open(ctx context.Context, cfg *config.Config) (backend Backend, closeFn func(), err error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.ApplySchema(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return postgres.NewTxRunner(pool), pool.Close, nil
	case config.DriverMemory, "":
		store, err := memory.Open(cfg.Storage.SnapshotPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("storage driver no soportado: %q", cfg.Storage.Driver)
	}
}
