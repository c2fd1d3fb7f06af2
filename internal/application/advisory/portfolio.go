package advisory

import (
	"sort"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
)

// Portfolio is a multi-system selection of measures.
type Portfolio struct {
	Items      []casestudy.CaseRecord
	TotalValue float64
}

// NeedsPortfolio reports whether target is out of reach of a single case.
func NeedsPortfolio(target, bestScore, triggerRatio float64) bool {
	return target > bestScore*triggerRatio
}

// AssemblePortfolio picks the highest-scoring record of each systemName and
// adds them in descending score order until the sum reaches
// target*overshoot or the systems run out.  The cover is greedy, not
// minimal.  When nothing is selected the result is best alone.
func AssemblePortfolio(pool []casestudy.CaseRecord, best casestudy.CaseRecord, target, overshoot float64) Portfolio {
	reps := representatives(pool)
	sort.SliceStable(reps, func(i, j int) bool {
		return reps[i].ScoreValue > reps[j].ScoreValue
	})

	threshold := target * overshoot
	var p Portfolio
	for _, r := range reps {
		if p.TotalValue >= threshold {
			break
		}
		p.Items = append(p.Items, r)
		p.TotalValue += r.ScoreValue
	}

	if len(p.Items) == 0 {
		p.Items = []casestudy.CaseRecord{best}
		p.TotalValue = best.ScoreValue
	}
	return p
}

// representatives returns one record per systemName, in first-seen order,
// keeping the highest score; ties keep the earlier record.
func representatives(pool []casestudy.CaseRecord) []casestudy.CaseRecord {
	index := make(map[string]int)
	var reps []casestudy.CaseRecord
	for _, r := range pool {
		i, ok := index[r.SystemName]
		if !ok {
			index[r.SystemName] = len(reps)
			reps = append(reps, r)
			continue
		}
		if r.ScoreValue > reps[i].ScoreValue {
			reps[i] = r
		}
	}
	return reps
}
