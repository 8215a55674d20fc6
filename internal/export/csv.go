// Package export serializes tables to delimited text and XLSX workbooks.
package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/table"
)

// WriteCSV writes a table to path as delimited text with a header row.
// Parent directories are created as needed.
func WriteCSV(path string, t *table.Table, delimiter rune) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	w.Comma = delimiter

	if err := w.Write(t.Columns); err != nil {
		return eris.Wrapf(err, "export: write header to %s", path)
	}
	for _, row := range t.Rows {
		if err := w.Write(row); err != nil {
			return eris.Wrapf(err, "export: write row to %s", path)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return eris.Wrapf(err, "export: flush %s", path)
	}
	return f.Close()
}

// WriteCSVDir writes every table in the set to dir as <name>.csv.
func WriteCSVDir(dir string, tables map[string]*table.Table, delimiter rune) error {
	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		path := filepath.Join(dir, name+".csv")
		if err := WriteCSV(path, tables[name], delimiter); err != nil {
			return err
		}
		zap.L().Info("wrote table", zap.String("file", path), zap.Int("rows", tables[name].Len()))
	}
	return nil
}

// ReadCSV reads delimited text written by WriteCSV back into a table.
func ReadCSV(path string, delimiter rune) (*table.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.Comma = delimiter
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "export: read %s", path)
	}
	if len(records) == 0 {
		return nil, eris.Errorf("export: %s has no header row", path)
	}

	t := table.New(records[0])
	for _, rec := range records[1:] {
		if err := t.Append(rec); err != nil {
			return nil, eris.Wrapf(err, "export: malformed row in %s", path)
		}
	}
	return t, nil
}
