package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-insight/cordis-etl/internal/enrich"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

func mustTable(t *testing.T, cols []string, rows ...[]string) *table.Table {
	t.Helper()
	tb := table.New(cols)
	for _, r := range rows {
		require.NoError(t, tb.Append(r))
	}
	return tb
}

func testDataset(t *testing.T) *enrich.Dataset {
	t.Helper()
	d, err := enrich.NewDataset(enrich.Tables{
		Projects: mustTable(t,
			[]string{"id", "acronym", "status", "title", "start_date", "end_date", "total_cost", "ec_max_contribution"},
			[]string{"55", "ALPHA", "SIGNED", "First", "2020-01-01", "2022-01-01", "2000000", "1000000"},
			[]string{"56", "BETA", "CLOSED", "Second", "", "", "", ""},
		),
		Organizations: mustTable(t,
			[]string{"id", "project_id", "name", "role", "country", "ec_contribution", "active"},
			[]string{"900", "55", "Acme University", "coordinator", "NL", "600000", "true"},
			[]string{"901", "55", "Beta Labs", "participant", "DE", "400000", "true"},
			[]string{"901", "56", "Beta Labs", "coordinator", "DE", "", "false"},
		),
		Topics: mustTable(t,
			[]string{"project_id", "code", "title"},
			[]string{"55", "T1", "Climate"},
			[]string{"56", "T1", "Climate"},
			[]string{"56", "T2", "Energy"},
		),
		SciVoc: mustTable(t,
			[]string{"project_id", "code", "path", "title", "description"},
			[]string{"55", "/23", "/nat/phys/optics", "optics", ""},
		),
	})
	require.NoError(t, err)
	require.NoError(t, d.Enrich())
	return d
}

func TestExport_ProjectsMatchContract(t *testing.T) {
	tables, err := Export(testDataset(t))
	require.NoError(t, err)

	c, err := LoadContract()
	require.NoError(t, err)

	proj := tables["projects"]
	require.NotNil(t, proj)
	assert.Equal(t, c["projects"].Columns, proj.Columns)
	require.Equal(t, 2, proj.Len())

	assert.Equal(t, "55", proj.Get(0, "id"))
	assert.Equal(t, "731", proj.Get(0, "duration_days"))
	assert.Equal(t, "2", proj.Get(0, "duration_years"))
	assert.Equal(t, "500000", proj.Get(0, "ec_contribution_per_year"))
	assert.Equal(t, "2", proj.Get(0, "n_institutions"))
	assert.Equal(t, "Acme University", proj.Get(0, "coordinator_name"))
	assert.Equal(t, `["nat"]`, proj.Get(0, "field_class"))
	assert.Equal(t, `["phys"]`, proj.Get(0, "field"))
	assert.Equal(t, `["optics"]`, proj.Get(0, "sub_field"))
	assert.Equal(t, `["other"]`, proj.Get(0, "niche"))

	// project without dates: derived cells stay empty, lists still default
	assert.Equal(t, "", proj.Get(1, "duration_days"))
	assert.Equal(t, "", proj.Get(1, "ec_contribution_per_year"))
	assert.Equal(t, `["other"]`, proj.Get(1, "field_class"))
}

func TestExport_DimensionAndJoinTables(t *testing.T) {
	tables, err := Export(testDataset(t))
	require.NoError(t, err)

	topics := tables["topics"]
	require.NotNil(t, topics)
	assert.Equal(t, 2, topics.Len(), "dimension deduplicates on code")
	assert.Equal(t, "T1", topics.Get(0, "code"))
	assert.Equal(t, "Climate", topics.Get(0, "title"))

	joins := tables["project_topics"]
	require.NotNil(t, joins)
	assert.Equal(t, []string{"project_id", "topic_code"}, joins.Columns)
	assert.Equal(t, 3, joins.Len())
	assert.Equal(t, "55", joins.Get(0, "project_id"))
	assert.Equal(t, "T1", joins.Get(0, "topic_code"))
}

func TestExport_ProjectOrganizations(t *testing.T) {
	tables, err := Export(testDataset(t))
	require.NoError(t, err)

	orgs := tables["organizations"]
	require.NotNil(t, orgs)
	assert.Equal(t, 2, orgs.Len(), "organization dimension deduplicates on id")

	po := tables["project_organizations"]
	require.NotNil(t, po)
	assert.Equal(t, 3, po.Len(), "participations survive per project")
	assert.Equal(t, "0", po.Get(0, "order_index"))
	assert.Equal(t, "1", po.Get(1, "order_index"))
	assert.Equal(t, "0", po.Get(2, "order_index"), "order restarts per project")
	assert.Equal(t, "600000", po.Get(0, "ec_contribution"))
}

func TestValidate_CleanExportHasNoViolations(t *testing.T) {
	tables, err := Export(testDataset(t))
	require.NoError(t, err)

	// fill the tables this dataset has no source for
	c, err := LoadContract()
	require.NoError(t, err)
	for _, name := range c.TableNames() {
		if _, ok := tables[name]; !ok {
			tables[name] = table.New(c[name].Columns)
		}
	}

	violations, err := Validate(tables)
	require.NoError(t, err)
	assert.Empty(t, violations)
}

func TestValidate_ReportsMissingAndExtra(t *testing.T) {
	c, err := LoadContract()
	require.NoError(t, err)

	tables := map[string]*table.Table{}
	for _, name := range c.TableNames() {
		tables[name] = table.New(c[name].Columns)
	}
	tables["topics"] = table.New([]string{"code", "label"})

	violations, err := Validate(tables)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "topics", violations[0].Table)
	assert.Equal(t, []string{"title"}, violations[0].Missing)
	assert.Equal(t, []string{"label"}, violations[0].Extra)
}

func TestValidate_ReportsAbsentTable(t *testing.T) {
	c, err := LoadContract()
	require.NoError(t, err)

	tables := map[string]*table.Table{}
	for _, name := range c.TableNames() {
		if name == "web_links" {
			continue
		}
		tables[name] = table.New(c[name].Columns)
	}

	violations, err := Validate(tables)
	require.NoError(t, err)
	require.Len(t, violations, 1)
	assert.Equal(t, "web_links", violations[0].Table)
	assert.True(t, violations[0].Absent)
}

func TestContract_ConflictKeys(t *testing.T) {
	c, err := LoadContract()
	require.NoError(t, err)

	assert.Equal(t, []string{"id"}, c["projects"].ConflictKeys)
	assert.Equal(t, []string{"project_id", "topic_code"}, c["project_topics"].ConflictKeys)
	assert.Empty(t, c["web_items"].ConflictKeys, "web items have no key, plain insert")
}
