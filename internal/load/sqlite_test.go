package load

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-insight/cordis-etl/internal/schema"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

func contractFor(t *testing.T, name string) schema.TableContract {
	t.Helper()
	c, err := schema.LoadContract()
	require.NoError(t, err)
	return c[name]
}

func newTestSink(t *testing.T) *SQLiteSink {
	t.Helper()
	s, err := NewSQLiteSink(filepath.Join(t.TempDir(), "cordis.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func TestSQLiteSink_LoadAndUpsert(t *testing.T) {
	s := newTestSink(t)
	ctx := context.Background()

	topics := table.New([]string{"code", "title"})
	require.NoError(t, topics.Append([]string{"T1", "Climate"}))
	require.NoError(t, topics.Append([]string{"T2", "Energy"}))

	n, err := s.LoadAll(ctx, map[string]*table.Table{"topics": topics})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// loading again with a changed title updates in place
	updated := table.New([]string{"code", "title"})
	require.NoError(t, updated.Append([]string{"T1", "Climate Action"}))
	_, err = s.LoadAll(ctx, map[string]*table.Table{"topics": updated})
	require.NoError(t, err)

	var count int
	require.NoError(t, s.db.QueryRow(`SELECT COUNT(*) FROM "topics"`).Scan(&count))
	assert.Equal(t, 2, count)

	var title string
	require.NoError(t, s.db.QueryRow(`SELECT "title" FROM "topics" WHERE "code" = 'T1'`).Scan(&title))
	assert.Equal(t, "Climate Action", title)
}

func TestSQLiteSink_NullCells(t *testing.T) {
	s := newTestSink(t)

	topics := table.New([]string{"code", "title"})
	require.NoError(t, topics.Append([]string{"T1", ""}))

	_, err := s.LoadAll(context.Background(), map[string]*table.Table{"topics": topics})
	require.NoError(t, err)

	var title *string
	require.NoError(t, s.db.QueryRow(`SELECT "title" FROM "topics" WHERE "code" = 'T1'`).Scan(&title))
	assert.Nil(t, title, "empty cells are stored as NULL")
}

func TestSQLiteSink_MissingColumn(t *testing.T) {
	s := newTestSink(t)

	bad := table.New([]string{"code"})
	require.NoError(t, bad.Append([]string{"T1"}))

	_, err := s.LoadAll(context.Background(), map[string]*table.Table{"topics": bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing contract column")
}

func TestSQLiteDDL(t *testing.T) {
	ddl := sqliteDDL("topics", contractFor(t, "topics"))
	assert.Contains(t, ddl, `CREATE TABLE IF NOT EXISTS "topics"`)
	assert.Contains(t, ddl, `PRIMARY KEY ("code")`)

	// web_items has no key, so no primary key clause
	ddl = sqliteDDL("web_items", contractFor(t, "web_items"))
	assert.NotContains(t, ddl, "PRIMARY KEY")
}
