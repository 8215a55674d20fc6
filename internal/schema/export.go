package schema

import (
	"encoding/json"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/clean"
	"github.com/horizon-insight/cordis-etl/internal/enrich"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Export splits the enriched dataset into the contract's dimension, fact, and
// join tables. Every returned table's columns exactly match the contract.
func Export(d *enrich.Dataset) (map[string]*table.Table, error) {
	c, err := LoadContract()
	if err != nil {
		return nil, err
	}

	out := map[string]*table.Table{
		"projects": exportProjects(c["projects"].Columns, d),
	}

	if t := d.Tables.Organizations; t != nil {
		out["organizations"] = dimension(c["organizations"].Columns, t, "id")
		out["project_organizations"] = exportProjectOrganizations(c["project_organizations"].Columns, t)
	}
	if t := d.Tables.Topics; t != nil {
		out["topics"] = dimension(c["topics"].Columns, t, "code")
		out["project_topics"] = joinTable(t, "topic_code")
	}
	if t := d.Tables.LegalBasis; t != nil {
		out["legal_basis"] = dimension(c["legal_basis"].Columns, t, "code")
		out["project_legal_basis"] = joinTable(t, "legal_basis_code")
	}
	if t := d.Tables.SciVoc; t != nil {
		out["sci_voc"] = dimension(c["sci_voc"].Columns, t, "code")
		out["project_sci_voc"] = joinTable(t, "sci_voc_code")
	}
	if t := d.Tables.Deliverables; t != nil {
		out["deliverables"] = passthrough(c["deliverables"].Columns, t, "id")
	}
	if t := d.Tables.Publications; t != nil {
		out["publications"] = passthrough(c["publications"].Columns, t, "id")
	}
	if t := d.Tables.WebItems; t != nil {
		out["web_items"] = passthrough(c["web_items"].Columns, t)
	}
	if t := d.Tables.WebLinks; t != nil {
		out["web_links"] = passthrough(c["web_links"].Columns, t, "id")
	}

	for name, t := range out {
		zap.L().Info("exported table", zap.String("table", name), zap.Int("rows", t.Len()))
	}
	return out, nil
}

func exportProjects(cols []string, d *enrich.Dataset) *table.Table {
	t := table.New(cols)
	for i := range d.Projects {
		p := &d.Projects[i]
		row := []string{
			p.ID,
			p.Acronym,
			p.Status,
			p.Title,
			fmtDate(p.StartDate),
			fmtDate(p.EndDate),
			fmtFloat(p.TotalCost),
			fmtFloat(p.ECMaxContribution),
			p.ECSignatureDate,
			p.FrameworkProgramme,
			p.MasterCall,
			p.SubCall,
			p.FundingScheme,
			p.Nature,
			p.Objective,
			p.ContentUpdateDate,
			p.RCN,
			p.GrantDOI,
			fmtInt(p.DurationDays),
			fmtInt(p.DurationMonths),
			fmtInt(p.DurationYears),
			strconv.Itoa(p.NInstitutions),
			fmtStr(p.CoordinatorName),
			fmtFloat(p.ECContributionPerYear),
			fmtFloat(p.TotalCostPerYear),
			jsonList(p.FieldClass),
			jsonList(p.Field),
			jsonList(p.Subfield),
			jsonList(p.Niche),
		}
		// width is fixed by construction
		_ = t.Append(row)
	}
	return t
}

// exportProjectOrganizations keeps the participation attributes the wide
// organization file carries per (project, organization) pair. order_index is
// the zero-based file order within the project.
func exportProjectOrganizations(cols []string, orgs *table.Table) *table.Table {
	t := table.New(cols)
	perProject := map[string]int{}
	seen := map[[2]string]bool{}
	for i := range orgs.Rows {
		pid := clean.NormalizeKey(orgs.Get(i, "project_id"))
		oid := clean.NormalizeKey(orgs.Get(i, "id"))
		if pid == "" || oid == "" {
			continue
		}
		key := [2]string{pid, oid}
		if seen[key] {
			continue
		}
		seen[key] = true
		_ = t.Append([]string{
			pid,
			oid,
			orgs.Get(i, "role"),
			strconv.Itoa(perProject[pid]),
			orgs.Get(i, "ec_contribution"),
			orgs.Get(i, "net_ec_contribution"),
			orgs.Get(i, "total_cost"),
			orgs.Get(i, "end_of_participation"),
			orgs.Get(i, "active"),
		})
		perProject[pid]++
	}
	return t
}

// dimension selects the contract columns from a relation table and keeps the
// first row per key.
func dimension(cols []string, src *table.Table, key string) *table.Table {
	t := table.New(cols)
	seen := map[string]bool{}
	for i := range src.Rows {
		k := src.Get(i, key)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = src.Get(i, col)
		}
		_ = t.Append(row)
	}
	return t
}

// joinTable builds the (project_id, <codeColumn>) pairs from a relation table,
// deduplicated, in file order.
func joinTable(src *table.Table, codeColumn string) *table.Table {
	t := table.New([]string{"project_id", codeColumn})
	seen := map[[2]string]bool{}
	for i := range src.Rows {
		pid := clean.NormalizeKey(src.Get(i, "project_id"))
		code := src.Get(i, "code")
		if pid == "" || code == "" {
			continue
		}
		key := [2]string{pid, code}
		if seen[key] {
			continue
		}
		seen[key] = true
		_ = t.Append([]string{pid, code})
	}
	return t
}

// passthrough reorders an auxiliary table onto its contract columns, padding
// columns the source never had, optionally deduplicating on the given keys.
func passthrough(cols []string, src *table.Table, dedupeKeys ...string) *table.Table {
	t := table.New(cols)
	for i := range src.Rows {
		row := make([]string, len(cols))
		for j, col := range cols {
			row[j] = src.Get(i, col)
		}
		_ = t.Append(row)
	}
	if len(dedupeKeys) > 0 {
		return t.DropDuplicates(dedupeKeys...)
	}
	return t
}

func fmtDate(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}

func fmtFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func fmtInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func fmtStr(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func jsonList(vals []string) string {
	if vals == nil {
		vals = []string{}
	}
	// string slices always marshal
	b, _ := json.Marshal(vals)
	return string(b)
}
