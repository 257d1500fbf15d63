package strategy

import "sort"

const (
	DefaultMinConfluence = 3
	DefaultTopSetups     = 5
)

// Ranked is anything that can be ordered by confluence.
type Ranked interface {
	Rank() (score, probability float64)
}

// SelectConfluence keeps the setups whose raw score is at least min, orders them by
// score then probability, both descending, and returns at most limit of them.
// Equal keys keep their input order. The input slice is not modified.
func SelectConfluence[T Ranked](setups []T, min, limit int) []T {
	out := make([]T, 0, len(setups))
	for _, s := range setups {
		if score, _ := s.Rank(); score >= float64(min) {
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		si, pi := out[i].Rank()
		sj, pj := out[j].Rank()
		if si != sj {
			return si > sj
		}
		return pi > pj
	})

	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
