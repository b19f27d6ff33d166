package engine

import (
	"sort"

	"github.com/tkrause/symsync/internal/model"
)

// Partition splits a cleaned working set into records with no active ticker
// (fresh) and records whose symbol is already mapped (existing). The split
// is a pure membership test against the snapshot taken at the start of the
// run; the snapshot is never re-queried mid-run, so every record gets a
// stable decision.
func Partition(cleaned []model.CompanyRecord, activeSymbols map[string]int64) (fresh, existing []model.CompanyRecord) {
	for _, rec := range cleaned {
		if _, ok := activeSymbols[rec.Ticker]; ok {
			existing = append(existing, rec)
		} else {
			fresh = append(fresh, rec)
		}
	}
	return fresh, existing
}

// DetectUnused returns the symbols active in the store but absent from the
// latest cleaned batch: delisting candidates. Read-only; surfacing the
// report is the whole job, retiring a symbol is a separate explicit
// operation. Output is sorted for stable reporting.
func DetectUnused(activeSymbols map[string]int64, batch []model.CompanyRecord) []string {
	present := make(map[string]struct{}, len(batch))
	for _, rec := range batch {
		present[rec.Ticker] = struct{}{}
	}

	var unused []string
	for symbol := range activeSymbols {
		if _, ok := present[symbol]; !ok {
			unused = append(unused, symbol)
		}
	}
	sort.Strings(unused)
	return unused
}
