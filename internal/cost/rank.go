package cost

import (
	"sort"

	"ichinichi/internal/core"
)

// DefaultTopN is the size of the ranking when no limit is given.
const DefaultTopN = 10

// TopItems returns up to n items ordered by CostPerDay, highest first. Equal
// costs keep their input order. n <= 0 means DefaultTopN. The input slice is
// not modified.
func TopItems(items []core.Item, n int) []core.Item {
	if n <= 0 {
		n = DefaultTopN
	}
	ranked := make([]core.Item, len(items))
	copy(ranked, items)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CostPerDay > ranked[j].CostPerDay
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}
