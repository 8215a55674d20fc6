// Package pipeline orchestrates the full preprocess run: robust ingestion,
// cleaning, enrichment, and export of the CORDIS dataset family.
package pipeline

import (
	"github.com/horizon-insight/cordis-etl/internal/clean"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Entity describes one raw CORDIS export file and how to handle it.
type Entity struct {
	Name string // canonical key, also the interim file stem
	File string // raw file name as published

	// RepairColumn is the free-text column most likely to contain embedded
	// delimiters. Rows with too many fields are merged back at this column;
	// entities without one skip irreparable rows instead.
	RepairColumn string

	Clean func(*table.Table) *table.Table
}

// ProjectEntity is the project file itself. It is ingested first because the
// organization cleaner needs the project status index.
var ProjectEntity = Entity{
	Name:         "projects",
	File:         "project.csv",
	RepairColumn: "objective",
	Clean:        clean.Project,
}

// OrganizationFile is the raw organization export; its cleaner takes the
// project status index and is wired explicitly in the preprocess run.
const OrganizationFile = "organization.csv"

// Entities lists the remaining raw files the preprocess run ingests.
func Entities() []Entity {
	return []Entity{
		{Name: "topics", File: "topics.csv", Clean: clean.Topics},
		{Name: "legal_basis", File: "legalBasis.csv", Clean: clean.LegalBasis},
		{Name: "sci_voc", File: "euroSciVoc.csv", Clean: clean.SciVoc},
		{Name: "web_items", File: "webItem.csv", Clean: clean.WebItems},
		{Name: "web_links", File: "webLink.csv", Clean: clean.WebLinks},
		{Name: "deliverables", File: "projectDeliverables.csv", RepairColumn: "description", Clean: clean.Deliverables},
		{Name: "publications", File: "projectPublications.csv", RepairColumn: "title", Clean: clean.Publications},
		{Name: "summaries", File: "reportSummaries.csv", RepairColumn: "summary", Clean: clean.Summaries},
	}
}
