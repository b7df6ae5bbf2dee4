package main

import (
	"context"

	"github.com/gofrs/flock"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/founder-resolve/internal/company"
	"github.com/sells-group/founder-resolve/internal/config"
	"github.com/sells-group/founder-resolve/internal/db"
	"github.com/sells-group/founder-resolve/internal/founder"
	"github.com/sells-group/founder-resolve/internal/importer"
	"github.com/sells-group/founder-resolve/internal/resilience"
)

type migrator interface {
	Migrate(ctx context.Context) error
}

// storeEnv holds the opened stores for one command invocation.
type storeEnv struct {
	Founders  founder.Store
	Companies company.Directory

	migrators []migrator
	closers   []func()
}

func (e *storeEnv) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// Migrate creates the founder tables before the company tables that
// reference them.
func (e *storeEnv) Migrate(ctx context.Context) error {
	for _, m := range e.migrators {
		if err := m.Migrate(ctx); err != nil {
			return err
		}
	}
	return nil
}

// openStores opens the configured backend. With exclusive set, a SQLite
// database is also guarded by an OS file lock so a second process cannot
// import into the same file concurrently.
func openStores(ctx context.Context, c *config.Config, exclusive bool) (*storeEnv, error) {
	env := &storeEnv{}

	switch c.Store.Driver {
	case "sqlite":
		dsn := c.Store.DatabaseURL
		if dsn == "" {
			dsn = "founders.db"
		}
		if exclusive {
			lock := flock.New(dsn + ".lock")
			ok, err := lock.TryLock()
			if err != nil {
				return nil, eris.Wrap(err, "acquire import lock")
			}
			if !ok {
				return nil, eris.Errorf("another import is already running against %s", dsn)
			}
			env.closers = append(env.closers, func() {
				if err := lock.Unlock(); err != nil {
					zap.L().Warn("failed to release import lock", zap.Error(err))
				}
			})
		}

		conn, err := db.OpenSQLite(dsn)
		if err != nil {
			env.Close()
			return nil, err
		}
		env.closers = append(env.closers, func() { _ = conn.Close() })

		fs, cs := founder.NewSQLiteStore(conn), company.NewSQLiteStore(conn)
		env.Founders, env.Companies = fs, cs
		env.migrators = []migrator{fs, cs}

	case "postgres":
		pool, err := db.OpenPostgres(ctx, c.Store.DatabaseURL, db.PoolConfig{
			MaxConns: c.Store.MaxConns,
			MinConns: c.Store.MinConns,
		})
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, pool.Close)

		fs, cs := founder.NewPostgresStore(pool), company.NewPostgresStore(pool)
		env.Founders, env.Companies = fs, cs
		env.migrators = []migrator{fs, cs}

	default:
		return nil, eris.Errorf("unsupported store driver: %s", c.Store.Driver)
	}

	zap.L().Debug("stores opened", zap.String("driver", c.Store.Driver))
	return env, nil
}

// importerOptions maps config onto importer options.
func importerOptions(c *config.Config) importer.Options {
	opts := importer.DefaultOptions()
	opts.NameThreshold = c.Match.NameThreshold
	if c.Batch.ChunkSize > 0 {
		opts.ChunkSize = c.Batch.ChunkSize
	}
	opts.PrimaryLink = c.Batch.PrimaryLink
	if c.Batch.DefaultRole != "" {
		opts.DefaultRole = c.Batch.DefaultRole
	}
	retry := resilience.DefaultRetryConfig()
	retry.MaxAttempts = c.Batch.StoreRetries + 1
	opts.Retry = retry
	return opts
}
