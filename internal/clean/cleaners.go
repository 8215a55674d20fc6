package clean

import (
	"strings"

	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/table"
)

// shared row/column helpers -------------------------------------------------

// cleanCells trims surrounding whitespace and enclosing quote characters from
// every cell. The reader hands rows through byte for byte, so this is the one
// place raw padding and stray quoting come off before column-level cleaning.
func cleanCells(t *table.Table) {
	for i, row := range t.Rows {
		for j, v := range row {
			t.Rows[i][j] = strings.Trim(strings.TrimSpace(v), `"`)
		}
	}
}

func cleanNumericCols(t *table.Table, allowNegative bool, cols ...string) {
	for _, col := range cols {
		if !t.Has(col) {
			continue
		}
		for i := range t.Rows {
			t.Set(i, col, CleanNumeric(t.Get(i, col), allowNegative))
		}
	}
}

func cleanDateCols(t *table.Table, cols ...string) {
	for _, col := range cols {
		if !t.Has(col) {
			continue
		}
		for i := range t.Rows {
			t.Set(i, col, CleanDate(t.Get(i, col)))
		}
	}
}

func normalizeKeyCols(t *table.Table, cols ...string) {
	for _, col := range cols {
		if !t.Has(col) {
			continue
		}
		for i := range t.Rows {
			t.Set(i, col, NormalizeKey(t.Get(i, col)))
		}
	}
}

// dropEmptyKeys removes rows with a null/empty value in any of the given key
// columns, logging the aggregate drop count per entity.
func dropEmptyKeys(t *table.Table, entity string, keys ...string) *table.Table {
	before := t.Len()
	out := t.Filter(func(i int) bool {
		for _, k := range keys {
			if strings.TrimSpace(t.Get(i, k)) == "" {
				return false
			}
		}
		return true
	})
	if dropped := before - out.Len(); dropped > 0 {
		zap.L().Info("dropped rows with missing key",
			zap.String("entity", entity),
			zap.Strings("keys", keys),
			zap.Int("dropped", dropped),
		)
	}
	return out
}

// fillDefaults replaces empty cells with the entity's fixed default values.
func fillDefaults(t *table.Table, defaults map[string]string) {
	for col, def := range defaults {
		if !t.Has(col) {
			continue
		}
		for i := range t.Rows {
			if strings.TrimSpace(t.Get(i, col)) == "" {
				t.Set(i, col, def)
			}
		}
	}
}

// dropAllEmptyRows removes rows where every cell is blank.
func dropAllEmptyRows(t *table.Table) *table.Table {
	return t.Filter(func(i int) bool {
		for _, v := range t.Rows[i] {
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
		return false
	})
}

func trimCol(t *table.Table, cols ...string) {
	for _, col := range cols {
		if !t.Has(col) {
			continue
		}
		for i := range t.Rows {
			t.Set(i, col, strings.TrimSpace(t.Get(i, col)))
		}
	}
}

// entity cleaners -----------------------------------------------------------

var projectRenames = map[string]string{
	"startdate":          "start_date",
	"enddate":            "end_date",
	"totalcost":          "total_cost",
	"ecmaxcontribution":  "ec_max_contribution",
	"ecsignaturedate":    "ec_signature_date",
	"frameworkprogramme": "framework_programme",
	"mastercall":         "master_call",
	"subcall":            "sub_call",
	"fundingscheme":      "funding_scheme",
	"contentupdatedate":  "content_update_date",
	"grantdoi":           "grant_doi",
}

// Project cleans the raw project table: canonical columns, coerced dates and
// financials, first-wins de-duplication on id.
func Project(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(projectRenames)

	normalizeKeyCols(t, "id")
	cleanDateCols(t, "start_date", "end_date", "ec_signature_date", "content_update_date")
	cleanNumericCols(t, false, "total_cost", "ec_max_contribution")
	trimCol(t, "status", "acronym", "title")

	t = dropEmptyKeys(t, "project", "id")
	return t.DropDuplicates("id")
}

var organizationRenames = map[string]string{
	"organisationid":     "id",
	"projectid":          "project_id",
	"projectacronym":     "project_acronym",
	"vatnumber":          "vat_number",
	"shortname":          "short_name",
	"activitytype":       "activity_type",
	"postcode":           "post_code",
	"nutscode":           "nuts_code",
	"organizationurl":    "organization_url",
	"contactform":        "contact_form",
	"contentupdatedate":  "content_update_date",
	"eccontribution":     "ec_contribution",
	"neteccontribution":  "net_ec_contribution",
	"totalcost":          "total_cost",
	"endofparticipation": "end_of_participation",
}

// organizationDefaults is the fixed default-fill table for organizations.
var organizationDefaults = map[string]string{
	"short_name":          "XX",
	"vat_number":          "XX000000000",
	"sme":                 "XX",
	"activity_type":       "XX",
	"street":              "XX",
	"city":                "XX",
	"country":             "XX",
	"nuts_code":           "XX",
	"geolocation":         "XX",
	"organization_url":    "about:blank",
	"ec_contribution":     "0",
	"net_ec_contribution": "0",
	"total_cost":          "0",
}

// Organization cleans the raw organization (participation) table. Each row is
// one organization's participation in one project, keyed by (project_id, id).
// statusByProject maps cleaned project ids to their status and drives the
// derived active flag: active when the owning project is SIGNED, false when
// the project is unknown.
func Organization(t *table.Table, statusByProject map[string]string) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(organizationRenames)

	t.AddColumn("id", "")
	t.AddColumn("project_id", "")
	normalizeKeyCols(t, "id", "project_id")

	cleanNumericCols(t, false, "ec_contribution", "net_ec_contribution", "total_cost")
	cleanDateCols(t, "content_update_date", "end_of_participation")
	fillDefaults(t, organizationDefaults)
	trimCol(t, "name", "role", "country")

	t.AddColumn("active", "false")
	for i := range t.Rows {
		if statusByProject[t.Get(i, "project_id")] == "SIGNED" {
			t.Set(i, "active", "true")
		}
	}

	t = dropEmptyKeys(t, "organization", "id", "project_id")
	return t.DropDuplicates("project_id", "id")
}

// Topics cleans the topic link table; the topic code is upper-cased.
func Topics(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(map[string]string{"projectid": "project_id", "topic": "code"})

	normalizeKeyCols(t, "project_id")
	if t.Has("code") {
		for i := range t.Rows {
			t.Set(i, "code", strings.ToUpper(strings.TrimSpace(t.Get(i, "code"))))
		}
	}
	trimCol(t, "title")

	t = dropEmptyKeys(t, "topics", "project_id")
	return t.DropDuplicates()
}

// LegalBasis cleans the legal-basis link table; the missing programme-part
// flag defaults to false.
func LegalBasis(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(map[string]string{
		"projectid":           "project_id",
		"legalbasis":          "code",
		"uniqueprogrammepart": "unique_programme_part",
	})

	normalizeKeyCols(t, "project_id")
	t.AddColumn("unique_programme_part", "")
	for i := range t.Rows {
		t.Set(i, "unique_programme_part", CleanBool(t.Get(i, "unique_programme_part"), false))
	}

	t = dropEmptyKeys(t, "legalbasis", "project_id")
	return t.DropDuplicates()
}

var sciVocRenames = map[string]string{
	"projectid":             "project_id",
	"euroscivoccode":        "code",
	"euroscivocpath":        "path",
	"euroscivoctitle":       "title",
	"euroscivocdescription": "description",
}

// SciVoc cleans the scientific-classification table.
func SciVoc(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(sciVocRenames)

	t = dropAllEmptyRows(t)
	normalizeKeyCols(t, "project_id")
	trimCol(t, "path", "title")

	t = dropEmptyKeys(t, "scivoc", "project_id")
	return t.DropDuplicates()
}

var deliverableRenames = map[string]string{
	"deliverableid":     "id",
	"projectid":         "project_id",
	"deliverabletype":   "deliverable_type",
	"contentupdatedate": "content_update_date",
}

// Deliverables cleans the deliverables table. Unknown types become "Other";
// empty descriptions fall back to the row title.
func Deliverables(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(deliverableRenames)

	normalizeKeyCols(t, "id", "project_id")
	cleanDateCols(t, "content_update_date")
	fillDefaults(t, map[string]string{
		"deliverable_type": "Other",
		"url":              "about:blank",
	})
	if t.Has("description") && t.Has("title") {
		for i := range t.Rows {
			if strings.TrimSpace(t.Get(i, "description")) == "" {
				t.Set(i, "description", t.Get(i, "title"))
			}
		}
	}

	t = dropEmptyKeys(t, "deliverables", "id", "project_id")
	return t.DropDuplicates("project_id", "id")
}

var publicationRenames = map[string]string{
	"publicationid":     "id",
	"projectid":         "project_id",
	"ispublishedas":     "is_published_as",
	"journaltitle":      "journal_title",
	"journalnumber":     "journal_number",
	"publishedyear":     "published_year",
	"publishedpages":    "published_pages",
	"contentupdatedate": "content_update_date",
}

// publicationDefaults is the fixed default-fill table for publications.
var publicationDefaults = map[string]string{
	"isbn":            "0000-0000",
	"issn":            "0000-0000",
	"published_pages": "0",
	"journal_number":  "0",
	"doi":             "about:blank",
	"journal_title":   "Miscellaneous",
	"authors":         "sine nomine",
}

// Publications cleans the publications table.
func Publications(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(publicationRenames)

	normalizeKeyCols(t, "id", "project_id")
	cleanNumericCols(t, false, "published_year")
	cleanDateCols(t, "content_update_date")
	fillDefaults(t, publicationDefaults)

	t = dropEmptyKeys(t, "publications", "id", "project_id")
	return t.DropDuplicates("id")
}

// WebItems lightly cleans the web-item table: normalized columns, all-empty
// rows removed.
func WebItems(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(map[string]string{"availablelanguages": "available_languages"})
	return dropAllEmptyRows(t).DropDuplicates()
}

var webLinkRenames = map[string]string{
	"projectid":          "project_id",
	"physurl":            "phys_url",
	"availablelanguages": "available_languages",
	"archiveddate":       "archived_date",
}

// WebLinks lightly cleans the web-link table.
func WebLinks(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	t.RenameColumns(webLinkRenames)

	normalizeKeyCols(t, "id", "project_id")
	cleanDateCols(t, "archived_date")
	return dropAllEmptyRows(t).DropDuplicates()
}

// Summaries lightly cleans the report-summaries table (interim only).
func Summaries(t *table.Table) *table.Table {
	NormalizeHeader(t)
	t = dropBlankColumns(t)
	cleanCells(t)
	return dropAllEmptyRows(t)
}

// StatusIndex builds the project id → status map consumed by Organization.
func StatusIndex(projects *table.Table) map[string]string {
	m := make(map[string]string, projects.Len())
	for i := range projects.Rows {
		m[projects.Get(i, "id")] = projects.Get(i, "status")
	}
	return m
}
