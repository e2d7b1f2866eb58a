package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is a Store kept in process memory. Listings follow insertion order.
type Memory struct {
	mu         sync.RWMutex
	candidates []*Candidate
	jobs       []*Job
	matchings  []*Matching
	now        func() time.Time
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{now: time.Now}
}

func (m *Memory) InsertCandidate(_ context.Context, c *Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.insertCandidate(c)
	return nil
}

func (m *Memory) InsertCandidates(_ context.Context, cs []*Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range cs {
		m.insertCandidate(c)
	}
	return nil
}

func (m *Memory) insertCandidate(c *Candidate) {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = m.now()
	}
	c.UpdatedAt = c.CreatedAt

	stored := *c
	m.candidates = append(m.candidates, &stored)
}

func (m *Memory) GetCandidate(_ context.Context, id primitive.ObjectID) (*Candidate, error) {
	return m.findCandidate(func(c *Candidate) bool { return c.ID == id }, "candidate "+id.Hex())
}

func (m *Memory) FindCandidateByFileHash(_ context.Context, hash string) (*Candidate, error) {
	return m.findCandidate(func(c *Candidate) bool { return hash != "" && c.FileHash == hash }, "candidate with filehash "+hash)
}

func (m *Memory) FindCandidateByPhone(_ context.Context, phoneKey string) (*Candidate, error) {
	return m.findCandidate(func(c *Candidate) bool { return phoneKey != "" && c.PhoneKey == phoneKey }, "candidate with phone "+phoneKey)
}

func (m *Memory) findCandidate(match func(*Candidate) bool, what string) (*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.candidates {
		if match(c) {
			found := *c
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
}

func (m *Memory) ListCandidates(_ context.Context, page Page) ([]*Candidate, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return paginate(m.candidates, page), int64(len(m.candidates)), nil
}

func (m *Memory) AllCandidates(_ context.Context) ([]*Candidate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return paginate(m.candidates, Page{Number: 1, Size: len(m.candidates)}), nil
}

func (m *Memory) UpdateCandidate(_ context.Context, c *Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, existing := range m.candidates {
		if existing.ID == c.ID {
			c.UpdatedAt = m.now()
			updated := *c
			m.candidates[i] = &updated
			return nil
		}
	}
	return fmt.Errorf("%w: candidate %s", ErrNotFound, c.ID.Hex())
}

func (m *Memory) SetHasResume(_ context.Context, id primitive.ObjectID, hasResume bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.candidates {
		if c.ID == id {
			c.HasResume = hasResume
			c.UpdatedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("%w: candidate %s", ErrNotFound, id.Hex())
}

func (m *Memory) DeleteCandidate(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept, removed := without(m.candidates, func(c *Candidate) bool { return c.ID == id })
	if !removed {
		return fmt.Errorf("%w: candidate %s", ErrNotFound, id.Hex())
	}
	m.candidates = kept
	m.matchings, _ = without(m.matchings, func(x *Matching) bool { return x.CandidateID == id })
	return nil
}

func (m *Memory) InsertJob(_ context.Context, j *Job) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.CreatedAt.IsZero() {
		j.CreatedAt = m.now()
	}

	stored := *j
	m.jobs = append(m.jobs, &stored)
	return nil
}

func (m *Memory) GetJob(_ context.Context, id primitive.ObjectID) (*Job, error) {
	return m.findJob(func(j *Job) bool { return j.ID == id }, "job "+id.Hex())
}

func (m *Memory) GetJobByName(_ context.Context, name string) (*Job, error) {
	return m.findJob(func(j *Job) bool { return j.JobName == name }, "job "+name)
}

func (m *Memory) findJob(match func(*Job) bool, what string) (*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, j := range m.jobs {
		if match(j) {
			found := *j
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, what)
}

func (m *Memory) ListJobs(_ context.Context) ([]*Job, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return paginate(m.jobs, Page{Number: 1, Size: len(m.jobs)}), nil
}

func (m *Memory) DeleteJob(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	kept, removed := without(m.jobs, func(j *Job) bool { return j.ID == id })
	if !removed {
		return fmt.Errorf("%w: job %s", ErrNotFound, id.Hex())
	}
	m.jobs = kept
	m.matchings, _ = without(m.matchings, func(x *Matching) bool { return x.JobID == id })
	return nil
}

func (m *Memory) UpsertMatching(_ context.Context, match *Matching) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	match.UpdatedAt = now

	for i, existing := range m.matchings {
		if existing.CandidateID == match.CandidateID && existing.JobID == match.JobID {
			match.ID = existing.ID
			match.CreatedAt = existing.CreatedAt
			stored := *match
			m.matchings[i] = &stored
			return nil
		}
	}

	if match.ID.IsZero() {
		match.ID = primitive.NewObjectID()
	}
	match.CreatedAt = now

	stored := *match
	m.matchings = append(m.matchings, &stored)
	return nil
}

func (m *Memory) GetMatching(_ context.Context, candidateID, jobID primitive.ObjectID) (*Matching, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, x := range m.matchings {
		if x.CandidateID == candidateID && x.JobID == jobID {
			found := *x
			return &found, nil
		}
	}
	return nil, fmt.Errorf("%w: matching %s/%s", ErrNotFound, candidateID.Hex(), jobID.Hex())
}

func (m *Memory) AllMatchings(_ context.Context) ([]*Matching, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return paginate(m.matchings, Page{Number: 1, Size: len(m.matchings)}), nil
}

func (m *Memory) ListMatchings(_ context.Context, filter MatchingFilter) ([]*Matching, int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	selected := m.matchings
	if !filter.JobID.IsZero() {
		selected = nil
		for _, x := range m.matchings {
			if x.JobID == filter.JobID {
				selected = append(selected, x)
			}
		}
	}

	return paginate(selected, filter.Page), int64(len(selected)), nil
}

func (m *Memory) MatchingsByJob(ctx context.Context, jobID primitive.ObjectID) ([]*Matching, error) {
	m.mu.RLock()
	total := len(m.matchings)
	m.mu.RUnlock()

	matchings, _, err := m.ListMatchings(ctx, MatchingFilter{JobID: jobID, Page: Page{Number: 1, Size: total}})
	return matchings, err
}

func (m *Memory) MarkShortlistNotified(_ context.Context, candidateID, jobID primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, x := range m.matchings {
		if x.CandidateID == candidateID && x.JobID == jobID {
			x.ShortlistNotified = true
			x.UpdatedAt = m.now()
			return nil
		}
	}
	return fmt.Errorf("%w: matching %s/%s", ErrNotFound, candidateID.Hex(), jobID.Hex())
}

func (m *Memory) Close(context.Context) error {
	return nil
}

// paginate returns copies of the items on the requested page.
func paginate[T any](items []*T, page Page) []*T {
	if page.Number < 1 || page.Size < 1 {
		return []*T{}
	}

	start := page.skip()
	if start >= len(items) {
		return []*T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}

	out := make([]*T, 0, end-start)
	for _, item := range items[start:end] {
		copied := *item
		out = append(out, &copied)
	}
	return out
}

func without[T any](items []*T, drop func(*T) bool) ([]*T, bool) {
	kept := items[:0:0]
	removed := false
	for _, item := range items {
		if drop(item) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}
