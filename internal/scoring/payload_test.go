package scoring

import (
	"errors"
	"testing"
)

func TestEvaluateNestedPayload(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"degree":          map[string]any{"score": 80.0, "comment": "BSc CS"},
		"experience":      map[string]any{"score": "70"},
		"technical_skill": map[string]any{"score": 90.0},
		"responsibility":  60.0,
		"certificate":     map[string]any{"score": 100.0},
		"soft_skill":      map[string]any{"score": 50.0},
		"summary_comment": "  Solid backend profile. ",
	}

	result, err := NewAggregator(DefaultRubric(), Strict).Evaluate(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.FinalScore != 76.5 {
		t.Fatalf("expected 76.5, got %v", result.FinalScore)
	}
	if result.SummaryComment != "Solid backend profile." {
		t.Fatalf("unexpected summary comment: %q", result.SummaryComment)
	}
	if result.Categories["degree"].Comment != "BSc CS" {
		t.Fatalf("expected degree comment, got %+v", result.Categories["degree"])
	}
	if result.Mode != "strict" {
		t.Fatalf("unexpected mode: %s", result.Mode)
	}
	if _, ok := result.Categories[SummaryCommentKey]; ok {
		t.Fatalf("summary comment must not be a category")
	}
}

func TestEvaluateClampsAndRounds(t *testing.T) {
	t.Parallel()

	categories, _, err := ParsePayload(map[string]any{
		"degree":     140.0,
		"experience": -3,
		"soft_skill": 49.6,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if categories["degree"].Score != 100 {
		t.Fatalf("expected clamp to 100, got %d", categories["degree"].Score)
	}
	if categories["experience"].Score != 0 {
		t.Fatalf("expected clamp to 0, got %d", categories["experience"].Score)
	}
	if categories["soft_skill"].Score != 50 {
		t.Fatalf("expected rounding to 50, got %d", categories["soft_skill"].Score)
	}
}

func TestEvaluateInvalidScore(t *testing.T) {
	t.Parallel()

	_, err := NewAggregator(DefaultRubric(), Lenient).Evaluate(map[string]any{
		"degree": map[string]any{"score": "excellent"},
	})

	var invalid *InvalidScoreError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidScoreError, got %v", err)
	}
	if invalid.Category != "degree" {
		t.Fatalf("unexpected category: %s", invalid.Category)
	}
}

func TestEvaluatePropagatesAggregatorErrors(t *testing.T) {
	t.Parallel()

	agg := NewAggregator(DefaultRubric(), Lenient)

	_, err := agg.Evaluate(map[string]any{"foo": 50.0})
	var unknown *UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}

	_, err = agg.Evaluate(map[string]any{SummaryCommentKey: "nothing to score"})
	var empty *EmptyInputError
	if !errors.As(err, &empty) {
		t.Fatalf("expected EmptyInputError, got %v", err)
	}
}

func TestApplyAddsScoreWithoutMutatingInput(t *testing.T) {
	t.Parallel()

	payload := map[string]any{
		"technical_skill": map[string]any{"score": 90.0},
		"soft_skill":      map[string]any{"score": 50.0},
		"summary_comment": "ok",
	}

	agg := NewAggregator(DefaultRubric(), Lenient)
	out, err := agg.Apply(payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := payload[FinalScoreKey]; ok {
		t.Fatalf("input payload must not gain a score key")
	}

	score, ok := out[FinalScoreKey].(float64)
	if !ok {
		t.Fatalf("expected float score, got %T", out[FinalScoreKey])
	}
	if score < 84.28 || score > 84.29 {
		t.Fatalf("unexpected score %v", score)
	}
	if out["summary_comment"] != "ok" {
		t.Fatalf("expected other keys to be kept: %v", out)
	}

	// Applying to an already scored payload gives the same answer.
	again, err := agg.Apply(out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again[FinalScoreKey] != out[FinalScoreKey] {
		t.Fatalf("expected stable score, got %v and %v", again[FinalScoreKey], out[FinalScoreKey])
	}
}
