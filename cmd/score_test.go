package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/spigell/cv-matcher/internal/scoring"
)

func TestScore(t *testing.T) {
	t.Parallel()

	agg, err := newAggregator(&ScoringConfig{Mode: "lenient"}, "strict")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Mode() != scoring.Strict {
		t.Fatalf("expected flag to override config mode, got %s", agg.Mode())
	}

	in := strings.NewReader(`{"degree": 80, "experience": 70, "technical_skill": 90,
		"responsibility": 60, "certificate": 100, "soft_skill": 50, "summary_comment": "ok"}`)

	var out bytes.Buffer
	if err := score(in, &out, agg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var result scoring.Result
	if err := json.Unmarshal(out.Bytes(), &result); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if result.FinalScore != 76.5 {
		t.Fatalf("expected 76.5, got %v", result.FinalScore)
	}
}

func TestScoreErrors(t *testing.T) {
	t.Parallel()

	agg, err := newAggregator(nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := score(strings.NewReader("not json"), &bytes.Buffer{}, agg); err == nil {
		t.Fatalf("expected decode error")
	}

	err = score(strings.NewReader(`{"leadership": 10}`), &bytes.Buffer{}, agg)
	var unknown *scoring.UnknownCategoryError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownCategoryError, got %v", err)
	}

	if _, err := newAggregator(&ScoringConfig{Weights: map[string]float64{"degree": 0.5}}, ""); err == nil {
		t.Fatalf("expected weights error")
	}
	if _, err := newAggregator(nil, "fuzzy"); err == nil {
		t.Fatalf("expected mode error")
	}
}
