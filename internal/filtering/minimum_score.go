package filtering

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

type minimumScoreFilter struct {
	toggle
	threshold float64
}

// NewMinimumScore drops matchings scored below the configured threshold. A zero threshold keeps everything.
func NewMinimumScore() Filter {
	return &minimumScoreFilter{}
}

func (f *minimumScoreFilter) Name() string { return "minimum_score" }

func (f *minimumScoreFilter) Validate(cfg *Config) error {
	f.threshold = 0
	if cfg != nil {
		f.threshold = cfg.MinimumScore
	}
	if f.threshold < 0 || f.threshold > 100 {
		return errors.New("minimum score must be within [0, 100]")
	}
	return nil
}

func (f *minimumScoreFilter) Apply(_ context.Context, deps Deps, entries []Entry) ([]Entry, Step, error) {
	if f.threshold == 0 {
		return entries, Step{Initial: len(entries), Left: len(entries)}, nil
	}

	out, step := keep(entries, func(e Entry) bool { return e.Matching.Score >= f.threshold })
	if step.Dropped > 0 {
		deps.Logger.Debug("dropping low scored candidates",
			zap.Float64("threshold", f.threshold),
			zap.Int("dropped", step.Dropped),
		)
	}
	return out, step, nil
}

func (f *minimumScoreFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"threshold": strconv.FormatFloat(f.threshold, 'f', -1, 64)},
	}
}
