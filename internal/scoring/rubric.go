// Package scoring turns per-category LLM sub-scores into a single match score.
package scoring

import (
	"fmt"
	"math"
	"strings"
)

// Category is one rubric dimension scored 0-100 by the analysis model.
type Category string

const (
	Degree         Category = "degree"
	Experience     Category = "experience"
	TechnicalSkill Category = "technical_skill"
	Responsibility Category = "responsibility"
	Certificate    Category = "certificate"
	SoftSkill      Category = "soft_skill"
)

// SummaryCommentKey holds free text in the model output and never takes part in scoring.
const SummaryCommentKey = "summary_comment"

// FinalScoreKey is the key added to the model output by Apply.
const FinalScoreKey = "score"

// Bounds of a category score.
const (
	MinScore = 0
	MaxScore = 100
)

// basisPoints is the integer resolution of rubric weights (1.0 == 10000).
const basisPoints = 10000

// Categories lists every known category in rubric order.
var Categories = []Category{Degree, Experience, TechnicalSkill, Responsibility, Certificate, SoftSkill}

// Rubric maps categories to weights. It is immutable after construction; the zero
// value is an empty rubric and scores nothing.
type Rubric struct {
	order   []Category
	weights map[Category]int
}

// DefaultRubric returns the standard weighting used for candidate/job matching.
func DefaultRubric() Rubric {
	r, err := NewRubric(map[Category]float64{
		Degree:         0.10,
		Experience:     0.20,
		TechnicalSkill: 0.30,
		Responsibility: 0.25,
		Certificate:    0.10,
		SoftSkill:      0.05,
	})
	if err != nil {
		panic(fmt.Sprintf("default rubric is invalid: %v", err))
	}
	return r
}

// NewRubric validates the weights and builds a rubric. Weights must be non-negative,
// belong to known categories, be expressible in basis points and sum to 1.0.
func NewRubric(weights map[Category]float64) (Rubric, error) {
	if len(weights) == 0 {
		return Rubric{}, fmt.Errorf("rubric must define at least one category")
	}

	known := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		known[c] = true
	}

	r := Rubric{weights: make(map[Category]int, len(weights))}
	total := 0
	for c, w := range weights {
		if !known[c] {
			return Rubric{}, &UnknownCategoryError{Category: string(c)}
		}
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return Rubric{}, fmt.Errorf("invalid weight %v for category %q", w, c)
		}
		bp := int(math.Round(w * basisPoints))
		if math.Abs(float64(bp)-w*basisPoints) > 1e-6 {
			return Rubric{}, fmt.Errorf("weight %v for category %q is finer than 0.0001", w, c)
		}
		r.weights[c] = bp
		total += bp
	}

	if total != basisPoints {
		return Rubric{}, fmt.Errorf("weights sum to %.4f, must sum to 1.0", float64(total)/basisPoints)
	}

	for _, c := range Categories {
		if _, ok := r.weights[c]; ok {
			r.order = append(r.order, c)
		}
	}

	return r, nil
}

// RubricFromConfig builds a rubric from string-keyed weights as found in config files.
// An empty map yields the default rubric.
func RubricFromConfig(weights map[string]float64) (Rubric, error) {
	if len(weights) == 0 {
		return DefaultRubric(), nil
	}

	typed := make(map[Category]float64, len(weights))
	for name, w := range weights {
		typed[Category(strings.ToLower(strings.TrimSpace(name)))] = w
	}

	return NewRubric(typed)
}

// Weight returns the weight of the category and whether it is part of the rubric.
func (r Rubric) Weight(c Category) (float64, bool) {
	bp, ok := r.weights[c]
	if !ok {
		return 0, false
	}
	return float64(bp) / basisPoints, true
}

// Has reports whether the category is part of the rubric.
func (r Rubric) Has(c Category) bool {
	_, ok := r.weights[c]
	return ok
}

// Categories returns the rubric's categories in fixed order.
func (r Rubric) Categories() []Category {
	out := make([]Category, len(r.order))
	copy(out, r.order)
	return out
}
