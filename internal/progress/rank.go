package progress

import (
	"sort"

	"github.com/samber/lo"
)

// RankMinAttempts gates the difficulty ranking: verbs with fewer attempts
// are statistically too noisy to rank.
const RankMinAttempts = 3

// RankedVerb is a derived difficulty-ranking entry; it is computed on
// demand and never stored.
type RankedVerb struct {
	Verb        string  `json:"verb"`
	Attempts    int     `json:"attempts"`
	Correct     int     `json:"correct"`
	SuccessRate float64 `json:"success_rate"`
}

// Rank orders trackers by ascending success rate, hardest first. Ties break
// by attempts descending, then verb ascending, so repeated calls over the
// same trackers return identical output. A non-positive limit yields no
// results.
func Rank(trackers []Tracker, limit int) []RankedVerb {
	if limit <= 0 {
		return nil
	}

	eligible := lo.Filter(trackers, func(t Tracker, _ int) bool {
		return t.Attempts >= RankMinAttempts
	})
	ranked := lo.Map(eligible, func(t Tracker, _ int) RankedVerb {
		return RankedVerb{
			Verb:        t.Verb,
			Attempts:    t.Attempts,
			Correct:     t.Correct,
			SuccessRate: SuccessRate(t.Correct, t.Attempts),
		}
	})

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].SuccessRate != ranked[j].SuccessRate {
			return ranked[i].SuccessRate < ranked[j].SuccessRate
		}
		if ranked[i].Attempts != ranked[j].Attempts {
			return ranked[i].Attempts > ranked[j].Attempts
		}
		return ranked[i].Verb < ranked[j].Verb
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
