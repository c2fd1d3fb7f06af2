package cli

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/netellus-advisor/internal/application/advisory"
	"github.com/turtacn/netellus-advisor/internal/domain/casestudy"
	"github.com/turtacn/netellus-advisor/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/netellus-advisor/pkg/errors"
)

type recommendOptions struct {
	industry string
	goal     string
	goalPath string
	noAI     bool
}

func newRecommendCmd() *cobra.Command {
	opts := &recommendOptions{}

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Recommend a case or a portfolio for an industry and goal",
		Example: `  advisor recommend --industry 鋼鐵業 --goal 1,200
  advisor recommend --industry Steel --goal 80 --goal-path energy -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			goal, err := parseGoalFlag(opts.goal)
			if err != nil {
				return err
			}
			req := advisory.Request{
				Industry:       strings.TrimSpace(opts.industry),
				Goal:           goal,
				GoalPath:       casestudy.ParseGoalPath(opts.goalPath),
				SkipEnrichment: opts.noAI,
			}
			return runWithServices(cmd, func(ctx context.Context, cliCtx *CLIContext, svc Services) error {
				cliCtx.Logger.Debug("requesting recommendation",
					logging.String("industry", req.Industry),
					logging.Float64("goal", req.Goal),
					logging.String("goal_path", string(req.GoalPath)))

				rec, err := svc.Advisory().Recommend(ctx, req)
				if err != nil {
					return err
				}
				return PrintResult(cmd, recommendationView{rec})
			})
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.industry, "industry", "i", "", "industry label (required)")
	f.StringVarP(&opts.goal, "goal", "g", "", "reduction goal; thousands separators are accepted (required)")
	f.StringVar(&opts.goalPath, "goal-path", string(casestudy.GoalPathCarbon), "metric the goal is expressed in: carbon|energy")
	f.BoolVar(&opts.noAI, "no-ai", false, "skip generated pain-point and strategy text")
	_ = cmd.MarkFlagRequired("industry")
	_ = cmd.MarkFlagRequired("goal")
	return cmd
}

func parseGoalFlag(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, errors.New(errors.CodeInvalidGoal, "goal is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, errors.New(errors.CodeInvalidGoal, "goal must be a finite, non-negative number").
			WithDetail("goal=" + s)
	}
	return v, nil
}

// recommendationView renders a Recommendation for each output format.
type recommendationView struct {
	rec *advisory.Recommendation
}

func (v recommendationView) JSONValue() interface{} { return v.rec }

func (v recommendationView) TableHeaders() []string {
	return []string{"#", "SYSTEM", "ACTION", "MEASURE", "SCORE", "DISTANCE"}
}

func (v recommendationView) TableRows() [][]string {
	rows := make([][]string, 0, len(v.rec.Items)+len(v.rec.Alternatives))
	for i, it := range v.rec.Items {
		rows = append(rows, caseRow(strconv.Itoa(i+1), it))
	}
	for i, it := range v.rec.Alternatives {
		rows = append(rows, caseRow(fmt.Sprintf("alt%d", i+1), it))
	}
	return rows
}

func caseRow(rank string, r casestudy.CaseRecord) []string {
	return []string{
		rank,
		truncate(r.SystemName, 24),
		truncate(r.ActionType, 16),
		truncate(r.MeasureName, 32),
		formatValue(r.ScoreValue),
		formatValue(r.DistanceToGoal),
	}
}

func (v recommendationView) String() string {
	rec := v.rec
	var b strings.Builder

	kind := string(rec.Type)
	switch rec.Type {
	case advisory.ResultSingle:
		kind = color.GreenString(kind)
	case advisory.ResultPortfolio:
		kind = color.CyanString(kind)
	default:
		kind = color.YellowString(kind)
	}
	fmt.Fprintf(&b, "Result:   %s", kind)
	if rec.SearchMethod != "" {
		fmt.Fprintf(&b, " (%s match)", rec.SearchMethod)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Industry: %s\nGoal:     %s\n", rec.Industry, formatValue(rec.Goal))
	if rec.TotalValue != nil {
		fmt.Fprintf(&b, "Total:    %s\n", formatValue(*rec.TotalValue))
	}
	if rec.TargetGap != nil {
		fmt.Fprintf(&b, "Gap:      %s\n", formatValue(*rec.TargetGap))
	}
	if rec.Message != "" {
		fmt.Fprintf(&b, "\n%s\n", rec.Message)
	}
	if len(rec.Items) > 0 || len(rec.Alternatives) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatTable(v.TableHeaders(), v.TableRows()))
	}
	if rec.Analysis != "" {
		fmt.Fprintf(&b, "\n%s\n", rec.Analysis)
	}
	if rec.AIAnalysis != "" {
		fmt.Fprintf(&b, "\n%s\n%s\n", color.New(color.Bold).Sprint("Strategy"), rec.AIAnalysis)
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
