package enrich

import (
	"strings"

	"github.com/horizon-insight/cordis-etl/internal/clean"
)

// peopleStage aggregates organization participations onto projects: distinct
// institution count, institution name list in file order, and the first
// organization whose role is "coordinator" (case-insensitive). Join keys on
// both sides are normalized to canonical strings before matching; projects
// with no organizations keep zero/NULL values.
func peopleStage(d *Dataset) error {
	orgs := d.Tables.Organizations
	if orgs == nil {
		return nil
	}

	type agg struct {
		names       []string
		seen        map[string]bool
		coordinator *string
	}
	byProject := make(map[string]*agg)

	for i := range orgs.Rows {
		pid := clean.NormalizeKey(orgs.Get(i, "project_id"))
		if pid == "" {
			continue
		}
		a := byProject[pid]
		if a == nil {
			a = &agg{seen: make(map[string]bool)}
			byProject[pid] = a
		}

		name := orgs.Get(i, "name")
		a.names = append(a.names, name)
		a.seen[name] = true

		if a.coordinator == nil && strings.EqualFold(strings.TrimSpace(orgs.Get(i, "role")), "coordinator") {
			n := name
			a.coordinator = &n
		}
	}

	for i := range d.Projects {
		p := &d.Projects[i]
		a, ok := byProject[clean.NormalizeKey(p.ID)]
		if !ok {
			continue
		}
		p.NInstitutions = len(a.seen)
		p.Institutions = a.names
		p.CoordinatorName = a.coordinator
	}
	return nil
}
