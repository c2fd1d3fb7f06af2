package advisory

import (
	"math"
	"sort"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
)

// Ranking is the scorer output.
type Ranking struct {
	// Ordered holds every pool record with DistanceToGoal set, ascending by
	// distance; ties keep their input order.
	Ordered []casestudy.CaseRecord

	// Matches is the deduplicated prefix of Ordered, capped at maxMatches.
	Matches []casestudy.CaseRecord

	// TargetGap is max(0, target - Matches[0].ScoreValue), or 0 when empty.
	TargetGap float64
}

// ScoringPool keeps the records with a positive score, in order.
func ScoringPool(records []casestudy.CaseRecord) []casestudy.CaseRecord {
	pool := make([]casestudy.CaseRecord, 0, len(records))
	for _, r := range records {
		if r.Eligible() {
			pool = append(pool, r)
		}
	}
	return pool
}

// Rank scores pool against target and returns at most maxMatches records
// with pairwise distinct identity keys.
func Rank(pool []casestudy.CaseRecord, target float64, maxMatches int) Ranking {
	ordered := make([]casestudy.CaseRecord, len(pool))
	copy(ordered, pool)
	for i := range ordered {
		ordered[i].DistanceToGoal = math.Abs(ordered[i].ScoreValue - target)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].DistanceToGoal < ordered[j].DistanceToGoal
	})

	seen := make(map[casestudy.IdentityKey]struct{}, maxMatches)
	matches := make([]casestudy.CaseRecord, 0, maxMatches)
	for _, r := range ordered {
		if len(matches) >= maxMatches {
			break
		}
		key := r.Identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		matches = append(matches, r)
	}

	rk := Ranking{Ordered: ordered, Matches: matches}
	if len(matches) > 0 {
		rk.TargetGap = math.Max(0, target-matches[0].ScoreValue)
	}
	return rk
}

// Alternatives returns up to limit records from r.Ordered whose action type
// differs from the best match, skipping anything already in r.Matches and
// repeated identity keys.
func Alternatives(r Ranking, limit int) []casestudy.CaseRecord {
	if len(r.Matches) == 0 || limit <= 0 {
		return nil
	}
	best := r.Matches[0]
	seen := make(map[casestudy.IdentityKey]struct{}, len(r.Matches)+limit)
	for _, m := range r.Matches {
		seen[m.Identity()] = struct{}{}
	}

	var alts []casestudy.CaseRecord
	for _, c := range r.Ordered {
		if len(alts) >= limit {
			break
		}
		if c.ActionType == best.ActionType {
			continue
		}
		key := c.Identity()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		alts = append(alts, c)
	}
	return alts
}
