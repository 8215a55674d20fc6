package schema

import (
	"go.uber.org/zap"

	"github.com/horizon-insight/cordis-etl/internal/table"
)

// Violation describes one table whose shape differs from the contract.
type Violation struct {
	Table   string
	Missing []string // contract columns the table lacks
	Extra   []string // produced columns the contract does not know
	Absent  bool     // the table itself was not produced
}

// Validate compares the produced tables against the contract and reports
// every mismatch. It never blocks the pipeline; callers decide what a
// non-empty report means.
func Validate(tables map[string]*table.Table) ([]Violation, error) {
	c, err := LoadContract()
	if err != nil {
		return nil, err
	}

	var violations []Violation
	for _, name := range c.TableNames() {
		want := c[name].Columns
		got, ok := tables[name]
		if !ok {
			violations = append(violations, Violation{Table: name, Absent: true})
			zap.L().Warn("table missing from export", zap.String("table", name))
			continue
		}

		v := Violation{Table: name}
		for _, col := range want {
			if !got.Has(col) {
				v.Missing = append(v.Missing, col)
			}
		}
		wanted := map[string]bool{}
		for _, col := range want {
			wanted[col] = true
		}
		for _, col := range got.Columns {
			if !wanted[col] {
				v.Extra = append(v.Extra, col)
			}
		}
		if len(v.Missing) > 0 || len(v.Extra) > 0 {
			violations = append(violations, v)
			zap.L().Warn("schema contract violation",
				zap.String("table", name),
				zap.Strings("missing", v.Missing),
				zap.Strings("extra", v.Extra))
		}
	}
	return violations, nil
}
