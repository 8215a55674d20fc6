package enrich

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Stage is one whole-table enrichment step.
type Stage struct {
	Name string
	Run  func(*Dataset) error
}

// Stages returns the enrichment stages in their required order. Later stages
// read columns earlier stages added, so the order is part of the contract.
func Stages() []Stage {
	return []Stage{
		{Name: "temporal", Run: temporalStage},
		{Name: "people_institutions", Run: peopleStage},
		{Name: "financial", Run: financialStage},
		{Name: "scientific_thematic", Run: thematicStage},
	}
}

// Enrich runs all stages in order, fail-fast: the first stage error aborts
// the run with no rollback (the dataset is rebuilt from cleaned inputs on the
// next run anyway).
func (d *Dataset) Enrich() error {
	log := zap.L().With(zap.String("component", "enrich"))
	for _, s := range Stages() {
		log.Info("running enrichment stage", zap.String("stage", s.Name), zap.Int("projects", len(d.Projects)))
		if err := s.Run(d); err != nil {
			return eris.Wrapf(err, "enrich: stage %s", s.Name)
		}
	}
	return nil
}
