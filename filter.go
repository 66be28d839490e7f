package dokdo

// Filter keeps the rows whose taxon and target both have at least nsig
// significant associations (adjusted p-value <= alpha). Counts are taken on
// the rows as given, before anything is removed. nsig <= 0 keeps every row.
func Filter(rows []Row, alpha float64, nsig int) []Row {
	if nsig <= 0 {
		return rows
	}
	byTaxon := make(map[string]int)
	byTarget := make(map[string]int)
	for _, r := range rows {
		if r.AdjP <= alpha {
			byTaxon[r.Taxon]++
			byTarget[r.Target]++
		}
	}

	kept := make([]Row, 0, len(rows))
	for _, r := range rows {
		if byTaxon[r.Taxon] >= nsig && byTarget[r.Target] >= nsig {
			kept = append(kept, r)
		}
	}
	return kept
}
