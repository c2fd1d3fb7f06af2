package advisory

import (
	"fmt"
	"math"
	"strconv"

	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
)

const (
	fallbackSystem = "key energy-consuming equipment"
	fallbackAction = "efficiency optimization"
)

// ComposeNarrative renders the deterministic explanation for a result.  It
// references the top item's system/action pair and never fails.
func ComposeNarrative(kind ResultType, items []casestudy.CaseRecord, path casestudy.GoalPath, target, totalValue float64) string {
	if len(items) == 0 {
		return "No comparable case studies are available yet; consider broadening the industry or revisiting the reduction goal."
	}

	top := items[0]
	system := top.SystemName
	if system == "" {
		system = fallbackSystem
	}
	action := top.ActionType
	if action == "" {
		action = fallbackAction
	}
	metric := metricLabel(path)

	if kind == ResultPortfolio && len(items) > 1 {
		return fmt.Sprintf(
			"Start with %s on %s, then combine %d measures across distinct systems for an estimated %s %s reduction against your target of %s.",
			action, system, len(items), formatAmount(totalValue), metric, formatAmount(target),
		)
	}
	return fmt.Sprintf(
		"Prioritize %s on %s: the closest comparable case reduced %s by %s against your target of %s.",
		action, system, metric, formatAmount(top.ScoreValue), formatAmount(target),
	)
}

func metricLabel(path casestudy.GoalPath) string {
	if path == casestudy.GoalPathEnergy {
		return "energy"
	}
	return "carbon"
}

// formatAmount rounds to two decimals and drops trailing zeros.
func formatAmount(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
