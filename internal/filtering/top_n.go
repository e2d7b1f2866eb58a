package filtering

import (
	"context"
	"errors"
	"strconv"

	"github.com/spigell/cv-matcher/internal/scoring"
)

// DefaultTopN is the shortlist size used when none is configured.
const DefaultTopN = 5

type topNFilter struct {
	toggle
	n int
}

// NewTopN keeps the first N entries. Entries must already be ranked.
func NewTopN() Filter {
	return &topNFilter{}
}

func (f *topNFilter) Name() string { return "top_n" }

func (f *topNFilter) Validate(cfg *Config) error {
	f.n = DefaultTopN
	if cfg != nil && cfg.TopN != 0 {
		f.n = cfg.TopN
	}
	if f.n < 0 {
		return errors.New("top n must be positive")
	}
	return nil
}

func (f *topNFilter) Apply(_ context.Context, _ Deps, entries []Entry) ([]Entry, Step, error) {
	out := scoring.Top(entries, f.n)
	return out, Step{Initial: len(entries), Dropped: len(entries) - len(out), Left: len(out)}, nil
}

func (f *topNFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: map[string]string{"n": strconv.Itoa(f.n)}}
}
