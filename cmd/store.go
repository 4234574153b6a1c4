package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/partsignal/sourcing-cli/internal/history"
)

// initStore opens the configured history store backend and runs migrations.
func initStore(ctx context.Context) (history.Store, error) {
	var st history.Store
	var err error

	switch cfg.Store.Driver {
	case "sqlite", "":
		st, err = history.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		st, err = history.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, eris.Wrap(err, "init store")
	}

	if err := st.Migrate(ctx); err != nil {
		st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}
