package load

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/horizon-insight/cordis-etl/internal/schema"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// SQLiteSink loads exported tables into a local SQLite file. It serves the
// same contract as the Postgres loader for offline and single-machine use.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens a SQLite database at the given path and configures WAL
// mode.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Migrate creates every contract table. All columns are TEXT; the conflict
// keys become the primary key.
func (s *SQLiteSink) Migrate(ctx context.Context) error {
	c, err := schema.LoadContract()
	if err != nil {
		return err
	}
	for _, name := range c.TableNames() {
		if _, err := s.db.ExecContext(ctx, sqliteDDL(name, c[name])); err != nil {
			return eris.Wrapf(err, "sqlite: create table %s", name)
		}
	}
	return nil
}

func sqliteDDL(name string, tc schema.TableContract) string {
	defs := make([]string, 0, len(tc.Columns)+1)
	for _, col := range tc.Columns {
		defs = append(defs, fmt.Sprintf("%q TEXT", col))
	}
	if len(tc.ConflictKeys) > 0 {
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", quoteJoin(tc.ConflictKeys)))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %q (%s)", name, strings.Join(defs, ", "))
}

// LoadAll writes every contract table present in tables, each in a single
// transaction. Returns the total row count written.
func (s *SQLiteSink) LoadAll(ctx context.Context, tables map[string]*table.Table) (int64, error) {
	c, err := schema.LoadContract()
	if err != nil {
		return 0, err
	}

	var total int64
	for _, name := range c.TableNames() {
		t, ok := tables[name]
		if !ok {
			continue
		}
		n, err := s.loadTable(ctx, name, c[name], t)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *SQLiteSink) loadTable(ctx context.Context, name string, tc schema.TableContract, t *table.Table) (int64, error) {
	for _, col := range tc.Columns {
		if !t.Has(col) {
			return 0, eris.Errorf("sqlite: table %s is missing contract column %s", name, col)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: begin tx for %s", name)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteInsert(name, tc))
	if err != nil {
		return 0, eris.Wrapf(err, "sqlite: prepare insert for %s", name)
	}
	defer stmt.Close()

	var total int64
	for i := 0; i < t.Len(); i++ {
		args := make([]any, len(tc.Columns))
		for j, col := range tc.Columns {
			if v := t.Get(i, col); v != "" {
				args[j] = v
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return total, eris.Wrapf(err, "sqlite: insert row %d into %s", i, name)
		}
		total++
	}

	if err := tx.Commit(); err != nil {
		return total, eris.Wrapf(err, "sqlite: commit %s", name)
	}

	zap.L().Info("table loaded", zap.String("table", name), zap.Int64("rows", total))
	return total, nil
}

func sqliteInsert(name string, tc schema.TableContract) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(tc.Columns)), ", ")
	base := fmt.Sprintf("INSERT INTO %q (%s) VALUES (%s)", name, quoteJoin(tc.Columns), placeholders)
	if len(tc.ConflictKeys) == 0 {
		return base
	}

	keySet := make(map[string]bool, len(tc.ConflictKeys))
	for _, k := range tc.ConflictKeys {
		keySet[k] = true
	}
	var sets []string
	for _, col := range tc.Columns {
		if !keySet[col] {
			sets = append(sets, fmt.Sprintf("%q = excluded.%q", col, col))
		}
	}
	if len(sets) == 0 {
		return fmt.Sprintf("%s ON CONFLICT (%s) DO NOTHING", base, quoteJoin(tc.ConflictKeys))
	}
	return fmt.Sprintf("%s ON CONFLICT (%s) DO UPDATE SET %s",
		base, quoteJoin(tc.ConflictKeys), strings.Join(sets, ", "))
}

func quoteJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
	}
	return strings.Join(quoted, ", ")
}
