package database

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/brightspark/core"
	"github.com/trezcool/brightspark/core/data"
	"github.com/trezcool/brightspark/storage/database/fixtures"
	inmemdb "github.com/trezcool/brightspark/storage/database/inmem"
	sqlxdb "github.com/trezcool/brightspark/storage/database/sqlx"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Backend is the configured Store. DB is nil unless the store is backed by PostgreSQL.
type Backend struct {
	Store data.Store
	DB    *sqlx.DB
}

// OpenBackend opens the store selected by conf.Store.Driver.
// The memory store starts with the demo dataset; the PostgreSQL database is created and migrated if needed.
func OpenBackend(ctx context.Context, conf *core.Config, log core.Logger) (*Backend, error) {
	switch conf.Store.Driver {
	case DriverMemory, "":
		store := inmemdb.Open(inmemdb.WithLatency(conf.Store.Latency))
		if err := store.Seed(ctx, fixtures.All()...); err != nil {
			return nil, errors.Wrap(err, "seeding memory store")
		}
		counts := make(map[string]interface{})
		for _, c := range store.Counts() {
			counts[string(c.Type)] = c.Records
		}
		log.Info("memory store seeded", counts)
		return &Backend{Store: store}, nil

	case DriverPostgres:
		if err := CreateIfNotExist(conf); err != nil {
			return nil, err
		}
		db, err := Open(conf)
		if err != nil {
			return nil, err
		}
		if err = Migrate(db.DB, "up"); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &Backend{Store: sqlxdb.NewStore(db), DB: db}, nil

	default:
		return nil, errors.Errorf("unknown store driver %q", conf.Store.Driver)
	}
}

func (b *Backend) Close() error {
	if b.DB == nil {
		return nil
	}
	return b.DB.Close()
}
