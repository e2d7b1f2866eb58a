package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
)

type stubGenerator struct {
	response    string
	err         error
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestAnalyzeCandidate(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"candidate_name": "Asha Rao",
		"email": "asha@example.com",
		"phone_number": 919876543210,
		"degree": "B.Tech Computer Science",
		"experience": [{"role": "Backend engineer", "years": 4}],
		"technical_skill": ["Go", "MongoDB"]
	}` + "\n```"}

	analyzer := NewAnalyzer(stub, zap.NewNop())

	profile, err := analyzer.AnalyzeCandidate(context.Background(), "  Asha Rao, backend engineer  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.CandidateName != "Asha Rao" {
		t.Fatalf("unexpected name: %q", profile.CandidateName)
	}
	if profile.PhoneNumber != "919876543210" {
		t.Fatalf("expected numeric phone to be kept as digits, got %q", profile.PhoneNumber)
	}
	if len(profile.Degree) != 1 || profile.Degree[0] != "B.Tech Computer Science" {
		t.Fatalf("expected single degree to become a list, got %v", profile.Degree)
	}
	if len(profile.Experience) != 1 || !strings.Contains(profile.Experience[0], "Backend engineer") {
		t.Fatalf("expected nested experience to be flattened, got %v", profile.Experience)
	}
	if len(profile.TechnicalSkill) != 2 {
		t.Fatalf("unexpected skills: %v", profile.TechnicalSkill)
	}
	if stub.lastSystem != candidatePrompt {
		t.Fatalf("expected candidate prompt as system instruction")
	}
	if stub.lastMessage != "Asha Rao, backend engineer" {
		t.Fatalf("unexpected message: %q", stub.lastMessage)
	}
}

func TestAnalyzeJob(t *testing.T) {
	stub := &stubGenerator{response: `{"technical_skill": ["Go"], "experience": ["3+ years"]}`}

	profile, err := NewAnalyzer(stub, nil).AnalyzeJob(context.Background(), "<p>Go developer</p>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(profile.TechnicalSkill) != 1 || profile.TechnicalSkill[0] != "Go" {
		t.Fatalf("unexpected profile: %+v", profile)
	}
	if stub.lastSystem != jobPrompt {
		t.Fatalf("expected job prompt as system instruction")
	}
}

func TestAnalyzeMatching(t *testing.T) {
	stub := &stubGenerator{response: `{"degree": {"score": 80, "comment": "ok"}, "summary_comment": "good"}`}

	payload, err := NewAnalyzer(stub, zap.NewNop()).AnalyzeMatching(context.Background(),
		&ai.JobProfile{TechnicalSkill: []string{"Go"}},
		&ai.CandidateProfile{CandidateName: "Asha"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payload["summary_comment"] != "good" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if !strings.HasPrefix(stub.lastMessage, "Requirement:\n") || !strings.Contains(stub.lastMessage, "\n\nCandidate:\n") {
		t.Fatalf("unexpected message layout: %s", stub.lastMessage)
	}
	if !strings.Contains(stub.lastMessage, `"candidate_name": "Asha"`) {
		t.Fatalf("expected candidate json in message: %s", stub.lastMessage)
	}
}

func TestAnalyzerErrors(t *testing.T) {
	tests := []struct {
		name string
		stub *stubGenerator
		call func(a *Analyzer) error
	}{
		{
			name: "empty cv",
			stub: &stubGenerator{},
			call: func(a *Analyzer) error {
				_, err := a.AnalyzeCandidate(context.Background(), "  ")
				return err
			},
		},
		{
			name: "generator failure",
			stub: &stubGenerator{err: errors.New("boom")},
			call: func(a *Analyzer) error {
				_, err := a.AnalyzeJob(context.Background(), "job")
				return err
			},
		},
		{
			name: "not json",
			stub: &stubGenerator{response: "I cannot help with that"},
			call: func(a *Analyzer) error {
				_, err := a.AnalyzeJob(context.Background(), "job")
				return err
			},
		},
		{
			name: "json array",
			stub: &stubGenerator{response: "[1, 2]"},
			call: func(a *Analyzer) error {
				_, err := a.AnalyzeJob(context.Background(), "job")
				return err
			},
		},
		{
			name: "missing job",
			stub: &stubGenerator{},
			call: func(a *Analyzer) error {
				_, err := a.AnalyzeMatching(context.Background(), nil, &ai.CandidateProfile{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(NewAnalyzer(tt.stub, zap.NewNop())); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\": 1}\n```": `{"a": 1}`,
		"```\n{\"a\": 1}```":       `{"a": 1}`,
		"  {\"a\": 1}  ":           `{"a": 1}`,
	}

	for input, expect := range tests {
		if got := extractJSON(input); got != expect {
			t.Fatalf("%q: expected %q, got %q", input, expect, got)
		}
	}
}
