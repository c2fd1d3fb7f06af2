// Package casestudy models historical carbon-reduction cases as retrieved
// from the document store and the coercion step that turns loosely typed
// documents into typed records.
package casestudy

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FieldMap is one document as returned by the store: field name to value,
// where a value is a string, a number or a boolean.
type FieldMap map[string]interface{}

// GoalPath selects which metric the user's target is expressed in.
type GoalPath string

const (
	GoalPathCarbon GoalPath = "carbon"
	GoalPathEnergy GoalPath = "energy"
)

// ParseGoalPath maps user input onto a GoalPath.  Anything other than
// "energy" selects the carbon path.
func ParseGoalPath(s string) GoalPath {
	if strings.EqualFold(strings.TrimSpace(s), string(GoalPathEnergy)) {
		return GoalPathEnergy
	}
	return GoalPathCarbon
}

// Schema names the document fields that carry each case attribute.
type Schema struct {
	Industry string
	System   string
	Action   string
	Measure  string
	Carbon   string
	Energy   string
	Problem  string
	Solution string
}

// CaseRecord is a typed case study.  String attributes are empty when the
// source document lacks them.  ScoreValue and DistanceToGoal are derived per
// request and never persisted.
type CaseRecord struct {
	Industry    string  `json:"industry"`
	SystemName  string  `json:"systemName"`
	ActionType  string  `json:"actionType"`
	MeasureName string  `json:"measureName,omitempty"`
	Problem     string  `json:"problem,omitempty"`
	Solution    string  `json:"solution,omitempty"`
	CarbonValue float64 `json:"carbonValue"`
	EnergyValue float64 `json:"energyValue"`

	ScoreValue     float64 `json:"scoreValue"`
	DistanceToGoal float64 `json:"distanceToGoal"`

	AIPainPoint string `json:"aiPainPoint,omitempty"`
	AISolution  string `json:"aiSolution,omitempty"`

	Fields FieldMap `json:"fields,omitempty"`
}

// IdentityKey is the (systemName, actionType, scoreValue) triple under which
// two records count as the same case.
type IdentityKey struct {
	SystemName string
	ActionType string
	ScoreValue float64
}

// Identity returns the record's deduplication key.
func (r CaseRecord) Identity() IdentityKey {
	return IdentityKey{SystemName: r.SystemName, ActionType: r.ActionType, ScoreValue: r.ScoreValue}
}

// Eligible reports whether the record may enter the scoring pool.
func (r CaseRecord) Eligible() bool {
	return r.ScoreValue > 0
}

// Normalizer converts field maps into CaseRecords.  It holds no mutable
// state and is safe for concurrent use.
type Normalizer struct {
	schema           Schema
	energyMultiplier float64
}

// NewNormalizer returns a Normalizer reading attributes through schema and
// scaling energy values by energyMultiplier.
func NewNormalizer(schema Schema, energyMultiplier float64) *Normalizer {
	return &Normalizer{schema: schema, energyMultiplier: energyMultiplier}
}

// Normalize coerces fields into a CaseRecord and selects its score for path.
// It never fails: missing or non-numeric values become 0 and the score is
// clamped to be non-negative.
func (n *Normalizer) Normalize(fields FieldMap, path GoalPath) CaseRecord {
	rec := CaseRecord{
		Industry:    ToText(fields[n.schema.Industry]),
		SystemName:  ToText(fields[n.schema.System]),
		ActionType:  ToText(fields[n.schema.Action]),
		MeasureName: ToText(fields[n.schema.Measure]),
		Problem:     ToText(fields[n.schema.Problem]),
		Solution:    ToText(fields[n.schema.Solution]),
		CarbonValue: ToNumber(fields[n.schema.Carbon]),
		EnergyValue: ToNumber(fields[n.schema.Energy]),
		Fields:      fields,
	}

	if path == GoalPathEnergy {
		rec.ScoreValue = rec.EnergyValue * n.energyMultiplier
	} else {
		rec.ScoreValue = rec.CarbonValue
	}
	if rec.ScoreValue < 0 || math.IsNaN(rec.ScoreValue) || math.IsInf(rec.ScoreValue, 0) {
		rec.ScoreValue = 0
	}
	return rec
}

// NormalizeAll normalizes every field map, preserving order.
func (n *Normalizer) NormalizeAll(docs []FieldMap, path GoalPath) []CaseRecord {
	out := make([]CaseRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, n.Normalize(d, path))
	}
	return out
}

// IndustryOf returns the industry label of a raw document.
func (n *Normalizer) IndustryOf(fields FieldMap) string {
	return ToText(fields[n.schema.Industry])
}

// ToNumber coerces a stored value to a float64.  Numbers pass through,
// numeric strings are parsed after removing thousands separators, and
// anything else (including NaN and infinities) yields 0.
func ToNumber(v interface{}) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(x), ",", "")
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// ToText renders a stored value as a trimmed string.  nil yields "".
func ToText(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}
