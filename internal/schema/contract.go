// Package schema splits the enriched wide project table into the fixed set of
// dimension, fact, and join tables the datastore expects, and checks produced
// tables against that contract.
package schema

import (
	_ "embed"
	"sort"
	"sync"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

//go:embed contract.yaml
var contractYAML []byte

// TableContract is the fixed shape of one exported table.
type TableContract struct {
	ConflictKeys []string `yaml:"conflict_keys"`
	Columns      []string `yaml:"columns"`
}

// Contract maps table name to its fixed shape.
type Contract map[string]TableContract

var (
	contractOnce sync.Once
	contract     Contract
	contractErr  error
)

// LoadContract parses the embedded table contract. The result is cached; the
// contract never changes within a process.
func LoadContract() (Contract, error) {
	contractOnce.Do(func() {
		var wrapper struct {
			Tables Contract `yaml:"tables"`
		}
		if err := yaml.Unmarshal(contractYAML, &wrapper); err != nil {
			contractErr = eris.Wrap(err, "schema: parse embedded contract")
			return
		}
		contract = wrapper.Tables
	})
	return contract, contractErr
}

// TableNames returns the contract's table names in a stable order, dimension
// tables before the join tables that reference them.
func (c Contract) TableNames() []string {
	order := map[string]int{
		"projects":              0,
		"organizations":         1,
		"topics":                2,
		"legal_basis":           3,
		"sci_voc":               4,
		"project_organizations": 5,
		"project_topics":        6,
		"project_legal_basis":   7,
		"project_sci_voc":       8,
		"deliverables":          9,
		"publications":          10,
		"web_items":             11,
		"web_links":             12,
	}
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := order[names[i]]
		oj, jok := order[names[j]]
		if iok && jok {
			return oi < oj
		}
		if iok != jok {
			return iok
		}
		return names[i] < names[j]
	})
	return names
}
