package pricing

// FloorRule keeps small formats from being billed below one reference-size
// sheet with the same options.
type FloorRule struct {
	ReferenceSize string
	LargestSize   string
	// UnitsPerReference is how many items of a size fit on one reference sheet.
	UnitsPerReference map[string]float64
}

func defaultUnitsPerReference() map[string]float64 {
	return map[string]float64{"A3": 0.5, "A4": 1, "A5": 2, "A6": 4, "DL": 3}
}

func decodeFloor(m map[string]any) FloorRule {
	f := section(m, "floor")

	rule := FloorRule{
		ReferenceSize:     "A4",
		LargestSize:       "A3",
		UnitsPerReference: defaultUnitsPerReference(),
	}
	if s, ok := f["referenceSize"].(string); ok && s != "" {
		rule.ReferenceSize = s
	}
	if s, ok := f["largestSize"].(string); ok && s != "" {
		rule.LargestSize = s
	}
	for size, units := range numberMap(f, "unitsPerReference") {
		if units > 0 {
			rule.UnitsPerReference[size] = units
		}
	}
	return rule
}

// Exempt reports whether a size is never floored.
func (r FloorRule) Exempt(size string) bool {
	return size == r.ReferenceSize || size == r.LargestSize
}

// apply raises gross to the one-sheet amount when it is lower.
func (r FloorRule) apply(size string, gross, oneSheet float64) (float64, bool) {
	if r.Exempt(size) || gross >= oneSheet {
		return gross, false
	}
	return oneSheet, true
}
