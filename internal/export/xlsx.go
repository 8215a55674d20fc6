package export

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Sheet names are capped by the XLSX format.
const maxSheetName = 31

// WriteXLSX writes the table set to a single workbook, one sheet per table,
// sheets in name order.
func WriteXLSX(path string, tables map[string]*table.Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return eris.Wrapf(err, "export: create dir for %s", path)
	}

	names := make([]string, 0, len(tables))
	for name := range tables {
		names = append(names, name)
	}
	sort.Strings(names)

	f := xlsx.NewFile()
	for _, name := range names {
		if err := addSheet(f, name, tables[name]); err != nil {
			return err
		}
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save workbook %s", path)
	}
	return nil
}

func addSheet(f *xlsx.File, name string, t *table.Table) error {
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	sheet, err := f.AddSheet(name)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %s", name)
	}

	header := sheet.AddRow()
	for _, col := range t.Columns {
		header.AddCell().SetString(col)
	}
	for _, row := range t.Rows {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	return nil
}
