package scoring

import (
	"fmt"
	"sort"
	"strings"
)

// Mode selects how missing rubric categories are handled.
type Mode int

const (
	// Lenient renormalizes over the categories that are present. A result with
	// missing categories is therefore comparable to a full one only loosely.
	Lenient Mode = iota
	// Strict requires every rubric category to be present.
	Strict
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	default:
		return "lenient"
	}
}

// ParseMode parses "strict" or "lenient". An empty string means lenient.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unsupported scoring mode %q (want strict or lenient)", s)
	}
}

// Aggregator computes final scores against a fixed rubric.
type Aggregator struct {
	rubric Rubric
	mode   Mode
}

// NewAggregator returns an aggregator bound to the rubric and mode.
func NewAggregator(rubric Rubric, mode Mode) *Aggregator {
	return &Aggregator{rubric: rubric, mode: mode}
}

func (a *Aggregator) Mode() Mode { return a.mode }

func (a *Aggregator) Rubric() Rubric { return a.rubric }

// ComputeFinalScore returns the weighted average of the category scores.
//
// The summary comment key is ignored. Any other key outside the rubric fails with
// UnknownCategoryError, a score outside [0, 100] with InvalidScoreError. Without any
// scorable category it fails with EmptyInputError.
// In strict mode absent rubric categories fail with MissingCategoryError; in lenient
// mode the weights of the present categories are renormalized.
func (a *Aggregator) ComputeFinalScore(scores map[string]int) (float64, error) {
	var unknown []string
	for key := range scores {
		if key == SummaryCommentKey {
			continue
		}
		if !a.rubric.Has(Category(key)) {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return 0, &UnknownCategoryError{Category: unknown[0]}
	}

	var (
		weightedSum int
		totalWeight int
		missing     []Category
	)
	for _, c := range a.rubric.order {
		score, ok := scores[string(c)]
		if !ok {
			missing = append(missing, c)
			continue
		}
		if score < MinScore || score > MaxScore {
			return 0, &InvalidScoreError{Category: string(c), Value: score}
		}
		w := a.rubric.weights[c]
		weightedSum += score * w
		totalWeight += w
	}

	if totalWeight == 0 {
		return 0, &EmptyInputError{}
	}

	if a.mode == Strict && len(missing) > 0 {
		return 0, &MissingCategoryError{Categories: missing}
	}

	return float64(weightedSum) / float64(totalWeight), nil
}
