package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"

	"github.com/horizon-insight/cordis-etl/internal/db"
	"github.com/horizon-insight/cordis-etl/internal/export"
	"github.com/horizon-insight/cordis-etl/internal/schema"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// storePool opens the configured Postgres pool.
func storePool(ctx context.Context) (db.Pool, error) {
	if cfg.Store.DatabaseURL == "" {
		return nil, eris.New("store: no database_url configured (set store.database_url or CORDIS_STORE_DATABASE_URL)")
	}
	return db.Connect(ctx, cfg.Store.DatabaseURL)
}

// readProcessed loads every contract table present in dir. Missing files are
// skipped; the loader logs what it skips.
func readProcessed(dir string) (map[string]*table.Table, error) {
	c, err := schema.LoadContract()
	if err != nil {
		return nil, err
	}

	tables := map[string]*table.Table{}
	for _, name := range c.TableNames() {
		path := filepath.Join(dir, name+".csv")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}
		t, err := export.ReadCSV(path, ',')
		if err != nil {
			return nil, err
		}
		tables[name] = t
	}
	return tables, nil
}
