// Package enrich derives analytical features over the cleaned project table:
// temporal, institutional, financial, and thematic columns, computed as an
// ordered pipeline of whole-table stages.
package enrich

import (
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/horizon-insight/cordis-etl/internal/clean"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Project is one enriched project row. Pointer fields are NULL-able; list
// fields are never nil after enrichment (classification lists default to
// ["other"], topic titles stay empty by design).
type Project struct {
	ID                 string
	Acronym            string
	Status             string
	Title              string
	StartDate          *time.Time
	EndDate            *time.Time
	ECSignatureDate    string
	TotalCost          *float64
	ECMaxContribution  *float64
	FrameworkProgramme string
	MasterCall         string
	SubCall            string
	FundingScheme      string
	Nature             string
	Objective          string
	ContentUpdateDate  string
	RCN                string
	GrantDOI           string

	// temporal stage
	DurationDays   *int
	DurationMonths *int
	DurationYears  *int

	// people stage
	NInstitutions   int
	Institutions    []string
	CoordinatorName *string

	// financial stage
	ECContributionPerYear *float64
	TotalCostPerYear      *float64

	// thematic stage
	SciVocTitles []string
	SciVocPaths  []string
	TopicTitles  []string
	FieldClass   []string
	Field        []string
	Subfield     []string
	Niche        []string
}

// Tables bundles the cleaned per-entity tables the pipeline reads.
type Tables struct {
	Projects      *table.Table
	Organizations *table.Table
	Topics        *table.Table
	LegalBasis    *table.Table
	SciVoc        *table.Table
	Deliverables  *table.Table
	Publications  *table.Table
	WebItems      *table.Table
	WebLinks      *table.Table
}

// Dataset holds the project rows being enriched plus the cleaned relation
// tables. Stage inputs are immutable; each stage only fills its own fields.
type Dataset struct {
	Projects []Project
	Tables   Tables

	index        map[string]int // project id → position in Projects
	temporalDone bool
}

// NewDataset builds typed project rows from the cleaned project table.
func NewDataset(t Tables) (*Dataset, error) {
	if t.Projects == nil {
		return nil, eris.New("enrich: cleaned project table is required")
	}

	d := &Dataset{Tables: t, index: make(map[string]int, t.Projects.Len())}
	for i := range t.Projects.Rows {
		get := func(col string) string { return t.Projects.Get(i, col) }

		p := Project{
			ID:                 clean.NormalizeKey(get("id")),
			Acronym:            get("acronym"),
			Status:             get("status"),
			Title:              get("title"),
			StartDate:          clean.ParseDate(get("start_date")),
			EndDate:            clean.ParseDate(get("end_date")),
			ECSignatureDate:    get("ec_signature_date"),
			TotalCost:          parseFloat(get("total_cost")),
			ECMaxContribution:  parseFloat(get("ec_max_contribution")),
			FrameworkProgramme: get("framework_programme"),
			MasterCall:         get("master_call"),
			SubCall:            get("sub_call"),
			FundingScheme:      get("funding_scheme"),
			Nature:             get("nature"),
			Objective:          get("objective"),
			ContentUpdateDate:  get("content_update_date"),
			RCN:                get("rcn"),
			GrantDOI:           get("grant_doi"),
		}
		if p.ID == "" {
			continue // cleaned input should not carry these, but never index an empty key
		}
		if _, dup := d.index[p.ID]; dup {
			continue
		}
		d.index[p.ID] = len(d.Projects)
		d.Projects = append(d.Projects, p)
	}
	return d, nil
}

// Lookup returns a pointer to the project with the given id, normalizing the
// key the same way the join stages do.
func (d *Dataset) Lookup(id string) (*Project, bool) {
	i, ok := d.index[clean.NormalizeKey(id)]
	if !ok {
		return nil, false
	}
	return &d.Projects[i], true
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
