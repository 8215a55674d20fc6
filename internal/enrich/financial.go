package enrich

// financialStage computes per-year financial rates. The divisor is
// duration_years; a NULL or zero divisor yields NULL, never an error or an
// infinity. Runs the temporal stage first if it has not happened yet.
func financialStage(d *Dataset) error {
	if !d.temporalDone {
		if err := temporalStage(d); err != nil {
			return err
		}
	}

	for i := range d.Projects {
		p := &d.Projects[i]
		p.ECContributionPerYear = perYear(p.ECMaxContribution, p.DurationYears)
		p.TotalCostPerYear = perYear(p.TotalCost, p.DurationYears)
	}
	return nil
}

func perYear(amount *float64, years *int) *float64 {
	if amount == nil || years == nil || *years == 0 {
		return nil
	}
	v := *amount / float64(*years)
	return &v
}
