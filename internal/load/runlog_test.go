package load

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunLog_StartCompleteFail(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rl := NewRunLog(mock)
	ctx := context.Background()

	mock.ExpectExec("INSERT INTO cordis.run_log").
		WithArgs(pgxmock.AnyArg(), "load").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	id, err := rl.Start(ctx, "load")
	require.NoError(t, err)
	require.NotEqual(t, id.String(), "00000000-0000-0000-0000-000000000000")

	mock.ExpectExec("UPDATE cordis.run_log").
		WithArgs(int64(42), pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	err = rl.Complete(ctx, id, &RunResult{RowsLoaded: 42, Metadata: map[string]any{"tables": 13}})
	require.NoError(t, err)

	mock.ExpectExec("UPDATE cordis.run_log").
		WithArgs("boom", id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	err = rl.Fail(ctx, id, "boom")
	require.NoError(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunLog_LastSuccess(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rl := NewRunLog(mock)
	want := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT started_at FROM cordis.run_log").
		WithArgs("load").
		WillReturnRows(pgxmock.NewRows([]string{"started_at"}).AddRow(want))

	got, err := rl.LastSuccess(context.Background(), "load")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Equal(want))
	assert.NoError(t, mock.ExpectationsWereMet())
}
