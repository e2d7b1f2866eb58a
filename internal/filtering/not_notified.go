package filtering

import "context"

type notNotifiedFilter struct {
	toggle
	skip bool
}

// NewNotNotified drops candidates already told about the shortlist when SkipNotified is set.
func NewNotNotified() Filter {
	return &notNotifiedFilter{}
}

func (f *notNotifiedFilter) Name() string { return "not_notified" }

func (f *notNotifiedFilter) Validate(cfg *Config) error {
	f.skip = cfg != nil && cfg.SkipNotified
	return nil
}

func (f *notNotifiedFilter) Apply(_ context.Context, _ Deps, entries []Entry) ([]Entry, Step, error) {
	if !f.skip {
		return entries, Step{Initial: len(entries), Left: len(entries)}, nil
	}

	out, step := keep(entries, func(e Entry) bool { return !e.Matching.ShortlistNotified })
	return out, step, nil
}
