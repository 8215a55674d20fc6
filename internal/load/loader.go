package load

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/horizon-insight/cordis-etl/internal/db"
	"github.com/horizon-insight/cordis-etl/internal/schema"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

const defaultBatchSize = 200

// Options tunes the loader.
type Options struct {
	BatchSize     int     // rows per upsert batch; 0 = default
	BatchesPerSec float64 // 0 = unthrottled
}

// Loader writes exported tables into the datastore, one contract table at a
// time, in batches.
type Loader struct {
	pool    db.Pool
	batch   int
	limiter *rate.Limiter
}

// NewLoader creates a Loader over the given pool.
func NewLoader(pool db.Pool, opts Options) *Loader {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	var limiter *rate.Limiter
	if opts.BatchesPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.BatchesPerSec), 1)
	}
	return &Loader{pool: pool, batch: batch, limiter: limiter}
}

// LoadAll loads every contract table present in tables, dimensions before the
// join tables that reference them. A failed table does not stop its siblings;
// the error names every table that failed. Returns the total row count
// written.
func (l *Loader) LoadAll(ctx context.Context, tables map[string]*table.Table) (int64, error) {
	c, err := schema.LoadContract()
	if err != nil {
		return 0, err
	}

	var (
		total  int64
		failed []string
	)
	for _, name := range c.TableNames() {
		if err := ctx.Err(); err != nil {
			return total, eris.Wrap(err, "load: cancelled")
		}
		t, ok := tables[name]
		if !ok {
			zap.L().Warn("table not present, skipping", zap.String("table", name))
			continue
		}
		n, err := l.loadTable(ctx, name, c[name], t)
		total += n
		if err != nil {
			zap.L().Error("table load failed", zap.String("table", name), zap.Error(err))
			failed = append(failed, name)
		}
	}
	if len(failed) > 0 {
		return total, eris.Errorf("load: %d tables failed: %s", len(failed), strings.Join(failed, ", "))
	}
	return total, nil
}

func (l *Loader) loadTable(ctx context.Context, name string, tc schema.TableContract, t *table.Table) (int64, error) {
	log := zap.L().With(zap.String("table", name))

	for _, col := range tc.Columns {
		if !t.Has(col) {
			return 0, eris.Errorf("load: table %s is missing contract column %s", name, col)
		}
	}

	target := "cordis." + name
	var total int64
	for start := 0; start < t.Len(); start += l.batch {
		end := start + l.batch
		if end > t.Len() {
			end = t.Len()
		}

		if l.limiter != nil {
			if err := l.limiter.Wait(ctx); err != nil {
				return total, eris.Wrapf(err, "load: wait for batch slot on %s", name)
			}
		}

		batch := make([][]any, 0, end-start)
		for i := start; i < end; i++ {
			row := make([]any, len(tc.Columns))
			for j, col := range tc.Columns {
				if v := t.Get(i, col); v != "" {
					row[j] = v
				}
			}
			batch = append(batch, row)
		}

		var (
			n   int64
			err error
		)
		if len(tc.ConflictKeys) == 0 {
			n, err = db.CopyFrom(ctx, l.pool, target, tc.Columns, batch)
		} else {
			n, err = db.BulkUpsert(ctx, l.pool, db.UpsertConfig{
				Table:        target,
				Columns:      tc.Columns,
				ConflictKeys: tc.ConflictKeys,
			}, batch)
		}
		if err != nil {
			return total, err
		}
		total += n
	}

	log.Info("table loaded", zap.Int64("rows", total))
	return total, nil
}
