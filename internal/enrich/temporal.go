package enrich

const (
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// temporalStage computes duration_days/months/years from the parsed date
// pair. Missing or unparseable dates leave all three NULL; a negative span
// propagates as-is rather than being special-cased.
func temporalStage(d *Dataset) error {
	for i := range d.Projects {
		p := &d.Projects[i]
		if p.StartDate == nil || p.EndDate == nil {
			p.DurationDays, p.DurationMonths, p.DurationYears = nil, nil, nil
			continue
		}
		days := int(p.EndDate.Sub(*p.StartDate).Hours() / 24)
		months := int(float64(days) / daysPerMonth)
		years := int(float64(days) / daysPerYear)
		p.DurationDays = &days
		p.DurationMonths = &months
		p.DurationYears = &years
	}
	d.temporalDone = true
	return nil
}
