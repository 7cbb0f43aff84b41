package opportunity

import (
	"sort"

	domainopp "github.com/searchlens/gapintel/internal/domain/opportunity"
)

// RankBatch orders opportunities by descending priority and assigns each a
// 1-based rank and a percentile in (0, 1], where the top opportunity gets
// percentile 1.  Ties keep input order.  The slice is sorted in place and
// returned for convenience.
func RankBatch(opps []*domainopp.Opportunity) []*domainopp.Opportunity {
	if len(opps) == 0 {
		return opps
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].PriorityScore > opps[j].PriorityScore
	})

	n := len(opps)
	for i, o := range opps {
		o.Rank = i + 1
		o.Percentile = float64(n-i) / float64(n)
	}
	return opps
}
