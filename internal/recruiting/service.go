// Package recruiting implements the candidate, job and matching workflows.
package recruiting

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/queue"
	"github.com/spigell/cv-matcher/internal/scoring"
	"github.com/spigell/cv-matcher/internal/storage"
	"github.com/spigell/cv-matcher/internal/store"
)

const (
	defaultPage     = 1
	defaultPageSize = 10
)

type mediaFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

type publisher interface {
	Publish(ctx context.Context, task queue.Task) error
}

// Deps are the collaborators of a Service. Sender, Media and Queue are optional.
// CountryCode is prepended to local phone numbers and defaults to notify.DefaultCountryCode.
type Deps struct {
	Store       store.Store
	Files       storage.Storage
	Analyzer    ai.Analyzer
	Aggregator  *scoring.Aggregator
	Sender      notify.Sender
	Media       mediaFetcher
	Queue       publisher
	Logger      *zap.Logger
	CountryCode string
}

type Service struct {
	store       store.Store
	files       storage.Storage
	analyzer    ai.Analyzer
	aggregator  *scoring.Aggregator
	sender      notify.Sender
	media       mediaFetcher
	queue       publisher
	countryCode string
	filters     func() []filtering.Filter
	logger      *zap.Logger
	now         func() time.Time
}

func New(deps Deps) *Service {
	s := &Service{
		store:       deps.Store,
		files:       deps.Files,
		analyzer:    deps.Analyzer,
		aggregator:  deps.Aggregator,
		sender:      deps.Sender,
		media:       deps.Media,
		queue:       deps.Queue,
		countryCode: deps.CountryCode,
		filters:     filtering.Default,
		logger:      deps.Logger,
		now:         time.Now,
	}

	if s.aggregator == nil {
		s.aggregator = scoring.NewAggregator(scoring.DefaultRubric(), scoring.Lenient)
	}
	if s.sender == nil {
		s.sender = notify.Disabled{}
	}
	if s.countryCode == "" {
		s.countryCode = notify.DefaultCountryCode
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}

	return s
}

// Mode reports the aggregation mode used for matchings.
func (s *Service) Mode() scoring.Mode {
	return s.aggregator.Mode()
}

// phoneKey is the normalized form candidates are looked up by.
func (s *Service) phoneKey(phone string) string {
	return notify.FormatPhoneNumberWithCode(phone, s.countryCode)
}

func normalizePage(page, size int) (store.Page, error) {
	if page == 0 {
		page = defaultPage
	}
	if size == 0 {
		size = defaultPageSize
	}
	if page < 1 || size < 1 {
		return store.Page{}, invalid("Page number or page size is invalid.")
	}
	return store.Page{Number: page, Size: size}, nil
}

func totalPages(total int64, size int) int {
	return int(math.Ceil(float64(total) / float64(size)))
}
