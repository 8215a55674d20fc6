package load

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"

	"github.com/horizon-insight/cordis-etl/internal/db"
)

// RunEntry represents a row in cordis.run_log.
type RunEntry struct {
	ID          uuid.UUID      `json:"id"`
	Stage       string         `json:"stage"`
	Status      string         `json:"status"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt *time.Time     `json:"completed_at,omitempty"`
	RowsLoaded  int64          `json:"rows_loaded"`
	Error       string         `json:"error,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// RunResult holds the outcome of a load stage, passed to Complete().
type RunResult struct {
	RowsLoaded int64          `json:"rows_loaded"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// RunLog provides read/write access to the cordis.run_log table.
type RunLog struct {
	pool db.Pool
}

// NewRunLog creates a RunLog backed by the given connection pool.
func NewRunLog(pool db.Pool) *RunLog {
	return &RunLog{pool: pool}
}

// LastSuccess returns the started_at time of the most recent completed run
// for a stage. Returns nil if the stage has never completed.
func (r *RunLog) LastSuccess(ctx context.Context, stage string) (*time.Time, error) {
	var t time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT started_at FROM cordis.run_log
		 WHERE stage = $1 AND status = 'complete'
		 ORDER BY started_at DESC LIMIT 1`,
		stage,
	).Scan(&t)
	if err != nil {
		if err.Error() == "no rows in result set" {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "runlog: last success for %s", stage)
	}
	return &t, nil
}

// Start records the beginning of a load run and returns its ID.
func (r *RunLog) Start(ctx context.Context, stage string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO cordis.run_log (id, stage, status, started_at)
		 VALUES ($1, $2, 'running', now())`,
		id, stage,
	)
	if err != nil {
		return uuid.Nil, eris.Wrapf(err, "runlog: start run for %s", stage)
	}
	return id, nil
}

// Complete marks a run as successfully completed.
func (r *RunLog) Complete(ctx context.Context, runID uuid.UUID, result *RunResult) error {
	var metaJSON []byte
	if result != nil && result.Metadata != nil {
		var err error
		metaJSON, err = json.Marshal(result.Metadata)
		if err != nil {
			return eris.Wrap(err, "runlog: marshal metadata")
		}
	}

	rowsLoaded := int64(0)
	if result != nil {
		rowsLoaded = result.RowsLoaded
	}

	_, err := r.pool.Exec(ctx,
		`UPDATE cordis.run_log
		 SET status = 'complete', completed_at = now(), rows_loaded = $1, metadata = $2
		 WHERE id = $3`,
		rowsLoaded, metaJSON, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: complete run %s", runID)
	}
	return nil
}

// Fail marks a run as failed with an error message.
func (r *RunLog) Fail(ctx context.Context, runID uuid.UUID, errMsg string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE cordis.run_log
		 SET status = 'failed', completed_at = now(), error = $1
		 WHERE id = $2`,
		errMsg, runID,
	)
	if err != nil {
		return eris.Wrapf(err, "runlog: fail run %s", runID)
	}
	return nil
}

// ListAll returns all run log entries ordered by most recent first.
func (r *RunLog) ListAll(ctx context.Context) ([]RunEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, stage, status, started_at, completed_at, rows_loaded, error, metadata
		 FROM cordis.run_log ORDER BY started_at DESC`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "runlog: list runs")
	}
	defer rows.Close()

	var entries []RunEntry
	for rows.Next() {
		var (
			e        RunEntry
			errMsg   *string
			metaJSON []byte
		)
		if err := rows.Scan(&e.ID, &e.Stage, &e.Status, &e.StartedAt, &e.CompletedAt, &e.RowsLoaded, &errMsg, &metaJSON); err != nil {
			return nil, eris.Wrap(err, "runlog: scan run row")
		}
		if errMsg != nil {
			e.Error = *errMsg
		}
		if len(metaJSON) > 0 {
			if err := json.Unmarshal(metaJSON, &e.Metadata); err != nil {
				return nil, eris.Wrap(err, "runlog: decode run metadata")
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
