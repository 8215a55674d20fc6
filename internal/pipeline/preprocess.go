package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/horizon-insight/cordis-etl/internal/clean"
	"github.com/horizon-insight/cordis-etl/internal/enrich"
	"github.com/horizon-insight/cordis-etl/internal/export"
	"github.com/horizon-insight/cordis-etl/internal/ingest"
	"github.com/horizon-insight/cordis-etl/internal/schema"
	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Interim files keep the raw exports' delimiter; the processed star schema is
// written as plain comma-delimited text.
const (
	interimDelimiter   = ';'
	processedDelimiter = ','
)

// Options configures one preprocess run.
type Options struct {
	RawDir       string
	InterimDir   string
	ProcessedDir string
	Delimiter    rune   // 0 = sniff per file
	Charset      string // empty = utf-8
}

// Result is the outcome of a preprocess run.
type Result struct {
	Tables     map[string]*table.Table // exported star-schema tables
	Dataset    *enrich.Dataset
	BadRows    map[string][]ingest.BadRow
	Violations []schema.Violation
}

// Run executes the full preprocess: robust ingestion of every raw file,
// per-entity cleaning, enrichment, star-schema export, and contract
// validation. Cleaned interim tables and the final processed tables are
// written as delimited text.
func Run(ctx context.Context, opts Options) (*Result, error) {
	log := zap.L().With(zap.String("component", "pipeline.preprocess"))

	res := &Result{
		Tables:  map[string]*table.Table{},
		BadRows: map[string][]ingest.BadRow{},
	}

	// The project file comes first: the organization cleaner derives the
	// active flag from project status.
	projects, bad, err := readEntity(opts, ProjectEntity.File, ProjectEntity.RepairColumn)
	if err != nil {
		return nil, err
	}
	res.BadRows[ProjectEntity.Name] = bad
	projects = ProjectEntity.Clean(projects)
	statusByProject := clean.StatusIndex(projects)

	orgs, bad, err := readEntity(opts, OrganizationFile, "")
	if err != nil {
		return nil, err
	}
	res.BadRows["organizations"] = bad
	orgs = clean.Organization(orgs, statusByProject)

	// The remaining files are independent of each other.
	var (
		mu      sync.Mutex
		cleaned = map[string]*table.Table{}
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, ent := range Entities() {
		ent := ent
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return eris.Wrapf(err, "pipeline: %s cancelled", ent.Name)
			}
			t, bad, err := readEntity(opts, ent.File, ent.RepairColumn)
			if err != nil {
				return err
			}
			t = ent.Clean(t)
			mu.Lock()
			cleaned[ent.Name] = t
			res.BadRows[ent.Name] = bad
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	interim := map[string]*table.Table{"projects": projects, "organizations": orgs}
	for name, t := range cleaned {
		interim[name] = t
	}
	if opts.InterimDir != "" {
		if err := export.WriteCSVDir(opts.InterimDir, interim, interimDelimiter); err != nil {
			return nil, err
		}
	}

	dataset, err := enrich.NewDataset(enrich.Tables{
		Projects:      projects,
		Organizations: orgs,
		Topics:        cleaned["topics"],
		LegalBasis:    cleaned["legal_basis"],
		SciVoc:        cleaned["sci_voc"],
		Deliverables:  cleaned["deliverables"],
		Publications:  cleaned["publications"],
		WebItems:      cleaned["web_items"],
		WebLinks:      cleaned["web_links"],
	})
	if err != nil {
		return nil, err
	}
	if err := dataset.Enrich(); err != nil {
		return nil, err
	}
	res.Dataset = dataset

	res.Tables, err = schema.Export(dataset)
	if err != nil {
		return nil, err
	}

	res.Violations, err = schema.Validate(res.Tables)
	if err != nil {
		return nil, err
	}

	if opts.ProcessedDir != "" {
		if err := export.WriteCSVDir(opts.ProcessedDir, res.Tables, processedDelimiter); err != nil {
			return nil, err
		}
	}

	log.Info("preprocess complete",
		zap.Int("projects", len(dataset.Projects)),
		zap.Int("tables", len(res.Tables)),
		zap.Int("contract_violations", len(res.Violations)))
	return res, nil
}

// readEntity ingests one raw file, sniffing the delimiter unless one was
// declared. A missing file yields an empty table rather than an error: the
// CORDIS portal does not publish every relation for every framework
// programme.
func readEntity(opts Options, file, repairColumn string) (*table.Table, []ingest.BadRow, error) {
	path := filepath.Join(opts.RawDir, file)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		zap.L().Warn("raw file missing, continuing with empty table", zap.String("file", path))
		return table.New(nil), nil, nil
	}

	delim := opts.Delimiter
	if delim == 0 {
		var err error
		delim, err = ingest.SniffDelimiter(path)
		if err != nil {
			return nil, nil, eris.Wrapf(err, "pipeline: sniff %s", file)
		}
	}

	return ingest.ReadFile(path, ingest.Options{
		Delimiter:    delim,
		RepairColumn: repairColumn,
		Charset:      opts.Charset,
	})
}
