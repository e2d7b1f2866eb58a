package filtering

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/store"
)

func entry(name, phone string, score float64, notified bool) Entry {
	return Entry{
		Matching:  &store.Matching{CandidateName: name, Score: score, ShortlistNotified: notified},
		Candidate: &store.Candidate{CandidateProfile: ai.CandidateProfile{CandidateName: name, PhoneNumber: phone}},
	}
}

func names(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Matching.CandidateName)
	}
	return out
}

func ranked() []Entry {
	return []Entry{
		entry("a", "1", 95, false),
		entry("b", "", 90, false),
		entry("c", "3", 80, true),
		entry("d", "4", 70, false),
		entry("e", "5", 60, false),
		entry("f", "6", 50, false),
		entry("g", "7", 40, false),
	}
}

func TestRunDefaultPipeline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		cfg    *Config
		expect []string
	}{
		{
			// top five first, then the candidate without phone is skipped, not replaced
			name:   "defaults",
			cfg:    &Config{},
			expect: []string{"a", "c", "d", "e"},
		},
		{
			name:   "top two",
			cfg:    &Config{TopN: 2},
			expect: []string{"a"},
		},
		{
			name:   "minimum score",
			cfg:    &Config{TopN: 10, MinimumScore: 70},
			expect: []string{"a", "c", "d"},
		},
		{
			name:   "skip notified",
			cfg:    &Config{TopN: 3, SkipNotified: true},
			expect: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Run(context.Background(), tt.cfg, Deps{Logger: zap.NewNop()}, Default(), ranked())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			gotNames := names(got)
			if len(gotNames) != len(tt.expect) {
				t.Fatalf("expected %v, got %v", tt.expect, gotNames)
			}
			for i := range tt.expect {
				if gotNames[i] != tt.expect[i] {
					t.Fatalf("expected %v, got %v", tt.expect, gotNames)
				}
			}
		})
	}
}

func TestRunValidationErrors(t *testing.T) {
	t.Parallel()

	if _, err := Run(context.Background(), &Config{TopN: -1}, Deps{}, Default(), ranked()); err == nil {
		t.Fatalf("expected error for negative top n")
	}
	if _, err := Run(context.Background(), &Config{MinimumScore: 101}, Deps{}, Default(), ranked()); err == nil {
		t.Fatalf("expected error for out of range threshold")
	}
}

type failingFilter struct{ toggle }

func (f *failingFilter) Name() string           { return "failing" }
func (f *failingFilter) Validate(*Config) error { return nil }
func (f *failingFilter) Apply(context.Context, Deps, []Entry) ([]Entry, Step, error) {
	return nil, Step{}, errors.New("boom")
}

func TestDisableByNameSkipsFilter(t *testing.T) {
	t.Parallel()

	core, observed := observer.New(zapcore.InfoLevel)

	steps := []Filter{&failingFilter{}, NewTopN()}
	DisableByName(steps, "failing", "not needed")

	got, err := Run(context.Background(), &Config{TopN: 1}, Deps{Logger: zap.New(core)}, steps, ranked())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected one entry, got %d", len(got))
	}

	entries := observed.FilterMessage("filter step").All()
	if len(entries) != 1 {
		t.Fatalf("expected one logged step, got %d", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["name"] != "top_n" || ctx["dropped"] != int64(6) {
		t.Fatalf("unexpected step fields: %v", ctx)
	}

	statuses := Describe(steps)
	if statuses[0].Enabled || statuses[0].Reason != "not needed" || statuses[1].Details["n"] != "1" {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}
}

func TestRunPropagatesApplyError(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), &Config{}, Deps{}, []Filter{&failingFilter{}}, ranked())
	if err == nil || err.Error() != "failing: boom" {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}
