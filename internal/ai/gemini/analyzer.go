package gemini

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
)

var (
	//go:embed prompts/candidate.md
	candidatePrompt string
	//go:embed prompts/job.md
	jobPrompt string
	//go:embed prompts/matching.md
	matchingPrompt string
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
}

// Analyzer implements ai.Analyzer on top of a Gemini generator.
type Analyzer struct {
	generator contentGenerator
	logger    *zap.Logger
}

var _ ai.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(generator contentGenerator, logger *zap.Logger) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{generator: generator, logger: logger}
}

func (a *Analyzer) AnalyzeCandidate(ctx context.Context, cvText string) (*ai.CandidateProfile, error) {
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return nil, errors.New("cv text is empty")
	}

	data, err := a.generate(ctx, "candidate", candidatePrompt, cvText)
	if err != nil {
		return nil, err
	}

	var profile ai.CandidateProfile
	if err := decode(data, &profile); err != nil {
		return nil, fmt.Errorf("decode candidate profile: %w", err)
	}

	return &profile, nil
}

func (a *Analyzer) AnalyzeJob(ctx context.Context, description string) (*ai.JobProfile, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.New("job description is empty")
	}

	data, err := a.generate(ctx, "job", jobPrompt, description)
	if err != nil {
		return nil, err
	}

	var profile ai.JobProfile
	if err := decode(data, &profile); err != nil {
		return nil, fmt.Errorf("decode job profile: %w", err)
	}

	return &profile, nil
}

func (a *Analyzer) AnalyzeMatching(ctx context.Context, job *ai.JobProfile, candidate *ai.CandidateProfile) (map[string]any, error) {
	if job == nil {
		return nil, errors.New("job profile is required")
	}
	if candidate == nil {
		return nil, errors.New("candidate profile is required")
	}

	jobJSON, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal job profile: %w", err)
	}

	candidateJSON, err := json.MarshalIndent(candidate, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal candidate profile: %w", err)
	}

	message := "Requirement:\n" + string(jobJSON) + "\n\nCandidate:\n" + string(candidateJSON)

	return a.generate(ctx, "matching", matchingPrompt, message)
}

func (a *Analyzer) generate(ctx context.Context, kind, system, message string) (map[string]any, error) {
	if a == nil || a.generator == nil {
		return nil, errors.New("gemini analyzer is not initialized")
	}

	a.logger.Info("start analyse", zap.String("kind", kind))

	raw, err := a.generator.GenerateContent(ctx, system, message)
	if err != nil {
		return nil, fmt.Errorf("analyse %s: %w", kind, err)
	}

	data, err := parseObject(raw)
	if err != nil {
		return nil, fmt.Errorf("analyse %s: %w", kind, err)
	}

	a.logger.Info("done analyse", zap.String("kind", kind), zap.Int("fields", len(data)))

	return data, nil
}

func parseObject(raw string) (map[string]any, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if data == nil {
		return nil, errors.New("gemini response is not a json object")
	}

	return data, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func decode(input map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       stringifyHook,
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

// stringifyHook flattens nested objects into JSON text when a string is expected.
func stringifyHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if to.Kind() != reflect.String {
		return data, nil
	}

	switch from.Kind() {
	case reflect.Map, reflect.Struct:
		encoded, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		return string(encoded), nil
	case reflect.Float64:
		// phone numbers and years come back as numbers
		f := data.(float64)
		if f == float64(int64(f)) {
			return fmt.Sprintf("%d", int64(f)), nil
		}
	}

	return data, nil
}
