package filtering

import (
	"context"
	"strings"
)

type withPhoneFilter struct {
	toggle
}

// NewWithPhone drops candidates that cannot be reached over WhatsApp.
func NewWithPhone() Filter {
	return &withPhoneFilter{}
}

func (f *withPhoneFilter) Name() string { return "with_phone" }

func (f *withPhoneFilter) Validate(*Config) error { return nil }

func (f *withPhoneFilter) Apply(_ context.Context, _ Deps, entries []Entry) ([]Entry, Step, error) {
	out, step := keep(entries, func(e Entry) bool {
		return e.Candidate != nil && strings.TrimSpace(e.Candidate.PhoneNumber) != ""
	})
	return out, step, nil
}
