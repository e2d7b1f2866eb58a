package scoring

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CategoryResult is one category of the model output.
type CategoryResult struct {
	Score   int    `json:"score" bson:"score"`
	Comment string `json:"comment,omitempty" bson:"comment,omitempty"`
}

// Result is a computed matching score. It is never modified after Evaluate returns it.
type Result struct {
	Categories     map[string]CategoryResult `json:"categories"`
	SummaryComment string                    `json:"summary_comment"`
	FinalScore     float64                   `json:"score"`
	Mode           string                    `json:"mode"`
}

// Scores returns the plain category to score mapping.
func (r *Result) Scores() map[string]int {
	out := make(map[string]int, len(r.Categories))
	for name, c := range r.Categories {
		out[name] = c.Score
	}
	return out
}

// Evaluate reads the raw model payload and computes the final score.
//
// Each category may be a bare number or an object with "score" and optional "comment".
// Scores given as strings or floats are accepted; floats are rounded and every score is
// clamped to [0,100].
func (a *Aggregator) Evaluate(payload map[string]any) (*Result, error) {
	categories, summary, err := ParsePayload(payload)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]int, len(categories))
	for name, c := range categories {
		scores[name] = c.Score
	}

	final, err := a.ComputeFinalScore(scores)
	if err != nil {
		return nil, err
	}

	return &Result{
		Categories:     categories,
		SummaryComment: summary,
		FinalScore:     final,
		Mode:           a.mode.String(),
	}, nil
}

// Apply returns a copy of the payload with the final score stored under FinalScoreKey.
// The input map is left untouched.
func (a *Aggregator) Apply(payload map[string]any) (map[string]any, error) {
	result, err := a.Evaluate(payload)
	if err != nil {
		return nil, err
	}

	out := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		out[k] = v
	}
	out[FinalScoreKey] = result.FinalScore

	return out, nil
}

// ParsePayload splits the raw model payload into category results and the summary comment.
// It does not check categories against a rubric.
func ParsePayload(payload map[string]any) (map[string]CategoryResult, string, error) {
	categories := make(map[string]CategoryResult, len(payload))
	summary := ""

	for key, value := range payload {
		if key == SummaryCommentKey {
			summary = coerceString(value)
			continue
		}
		// A previously applied final score is output, not input.
		if key == FinalScoreKey {
			continue
		}

		var (
			raw     any
			comment string
		)
		switch v := value.(type) {
		case map[string]any:
			raw = v["score"]
			comment = coerceString(v["comment"])
		default:
			raw = v
		}

		score, ok := coerceScore(raw)
		if !ok {
			return nil, "", &InvalidScoreError{Category: key, Value: raw}
		}

		categories[key] = CategoryResult{Score: score, Comment: comment}
	}

	return categories, summary, nil
}

func coerceScore(v any) (int, bool) {
	var f float64
	switch val := v.(type) {
	case int:
		f = float64(val)
	case int32:
		f = float64(val)
	case int64:
		f = float64(val)
	case float64:
		f = val
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}

	score := int(math.Round(f))
	switch {
	case score < MinScore:
		score = MinScore
	case score > MaxScore:
		score = MaxScore
	}

	return score, true
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(bytes)
	}
}
