package enrich

import (
	"github.com/rotisserie/eris"

	"github.com/horizon-insight/cordis-etl/internal/clean"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Detail is the full per-project view: the enriched row, the related slices
// of every relation table, and a few cross-relation aggregates.
type Detail struct {
	Project       Project
	Organizations *table.Table
	Topics        *table.Table
	LegalBasis    *table.Table
	SciVoc        *table.Table
	Deliverables  *table.Table
	Publications  *table.Table

	NPartners     int
	Countries     map[string]int
	ActivityTypes map[string]int

	// EC contribution spread over outputs; NULL when the divisor is zero.
	ECPerDeliverable *float64
	ECPerPublication *float64
}

// ProjectDetail projects the dataset onto a single project identified by id
// or acronym. It is a pure lookup over the already-built dataset.
func (d *Dataset) ProjectDetail(key string) (*Detail, error) {
	p, ok := d.Lookup(key)
	if !ok {
		for i := range d.Projects {
			if d.Projects[i].Acronym == key {
				p = &d.Projects[i]
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil, eris.Errorf("enrich: unknown project %q", key)
	}

	det := &Detail{
		Project:       *p,
		Organizations: relatedRows(d.Tables.Organizations, p.ID),
		Topics:        relatedRows(d.Tables.Topics, p.ID),
		LegalBasis:    relatedRows(d.Tables.LegalBasis, p.ID),
		SciVoc:        relatedRows(d.Tables.SciVoc, p.ID),
		Deliverables:  relatedRows(d.Tables.Deliverables, p.ID),
		Publications:  relatedRows(d.Tables.Publications, p.ID),
		Countries:     map[string]int{},
		ActivityTypes: map[string]int{},
	}

	if det.Organizations != nil {
		partners := map[string]bool{}
		for i := range det.Organizations.Rows {
			partners[det.Organizations.Get(i, "id")] = true
			if c := det.Organizations.Get(i, "country"); c != "" {
				det.Countries[c]++
			}
			if a := det.Organizations.Get(i, "activity_type"); a != "" {
				det.ActivityTypes[a]++
			}
		}
		det.NPartners = len(partners)
	}

	if p.ECMaxContribution != nil {
		det.ECPerDeliverable = divideByCount(*p.ECMaxContribution, rowCount(det.Deliverables))
		det.ECPerPublication = divideByCount(*p.ECMaxContribution, rowCount(det.Publications))
	}

	return det, nil
}

// relatedRows filters a relation table down to the rows belonging to the
// project, with key normalization on the foreign key side.
func relatedRows(t *table.Table, projectID string) *table.Table {
	if t == nil {
		return nil
	}
	pid := clean.NormalizeKey(projectID)
	return t.Filter(func(i int) bool {
		return clean.NormalizeKey(t.Get(i, "project_id")) == pid
	})
}

func rowCount(t *table.Table) int {
	if t == nil {
		return 0
	}
	return t.Len()
}

func divideByCount(amount float64, n int) *float64 {
	if n == 0 {
		return nil
	}
	v := amount / float64(n)
	return &v
}
