package recruiting

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/filtering"
	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/scoring"
)

// ShortlistRequest selects the candidates to notify for a job.
type ShortlistRequest struct {
	JobName      string  `json:"job_name"`
	TopN         int     `json:"top_n"`
	MinimumScore float64 `json:"minimum_score"`
	SkipNotified bool    `json:"skip_notified"`
	// DryRun selects the shortlist without sending anything.
	DryRun bool `json:"-"`
}

// Shortlisted is one selected candidate.
type Shortlisted struct {
	CandidateID    string  `json:"candidate_id"`
	CandidateName  string  `json:"candidate_name"`
	CandidateEmail string  `json:"candidate_email"`
	CandidatePhone string  `json:"candidate_phone"`
	Score          float64 `json:"score"`
	Notified       bool    `json:"notified"`
}

// ShortlistResult keeps the sent/failed/total counters at the top level.
type ShortlistResult struct {
	notify.Stats
	Candidates []Shortlisted      `json:"candidates"`
	Filters    []filtering.Status `json:"filters"`
}

// ShortlistNotify ranks the matchings of a job, keeps the top candidates and sends them
// the shortlist message. A matching is flagged as notified only after a successful send.
func (s *Service) ShortlistNotify(ctx context.Context, req ShortlistRequest) (*ShortlistResult, error) {
	name := strings.TrimSpace(req.JobName)
	if name == "" {
		return nil, invalid("job_name is required")
	}

	job, err := s.store.GetJobByName(ctx, name)
	if err != nil {
		return nil, err
	}

	candidates, err := s.store.AllCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	matchings, err := s.store.MatchingsByJob(ctx, job.ID)
	if err != nil {
		return nil, fmt.Errorf("list matchings: %w", err)
	}

	byCandidate := make(map[string]filtering.Entry, len(matchings))
	for _, m := range matchings {
		byCandidate[m.CandidateID.Hex()] = filtering.Entry{Matching: m}
	}

	entries := make([]filtering.Entry, 0, len(matchings))
	for _, c := range candidates {
		e, ok := byCandidate[c.ID.Hex()]
		if !ok {
			continue
		}
		e.Candidate = c
		entries = append(entries, e)
	}

	ranked := scoring.RankDescending(entries, func(e filtering.Entry) float64 { return e.Matching.Score })

	steps := s.filters()
	if req.MinimumScore == 0 {
		filtering.DisableByName(steps, "minimum_score", "no minimum score requested")
	}
	if !req.SkipNotified {
		filtering.DisableByName(steps, "not_notified", "already notified candidates are notified again")
	}

	cfg := &filtering.Config{TopN: req.TopN, MinimumScore: req.MinimumScore, SkipNotified: req.SkipNotified}
	selected, err := filtering.Run(ctx, cfg, filtering.Deps{Logger: s.logger}, steps, ranked)
	if err != nil {
		return nil, invalid("%s", err.Error())
	}

	result := &ShortlistResult{
		Candidates: make([]Shortlisted, 0, len(selected)),
		Filters:    filtering.Describe(steps),
	}
	for _, e := range selected {
		item := Shortlisted{
			CandidateID:    e.Candidate.ID.Hex(),
			CandidateName:  e.Candidate.CandidateName,
			CandidateEmail: e.Candidate.Email,
			CandidatePhone: e.Candidate.PhoneNumber,
			Score:          e.Matching.Score,
		}

		if !req.DryRun {
			msg := notify.Shortlisted(e.Candidate.CandidateName, job.JobName, job.JobDescription)
			_, err := s.sender.Send(ctx, e.Candidate.PhoneNumber, msg)
			if err == nil {
				if markErr := s.store.MarkShortlistNotified(ctx, e.Candidate.ID, job.ID); markErr != nil {
					s.logger.Error("failed to mark shortlist notified", zap.String("candidate_id", item.CandidateID), zap.Error(markErr))
				}
				item.Notified = true
			} else {
				s.logger.Warn("shortlist notification failed", zap.String("candidate_id", item.CandidateID), zap.Error(err))
			}
			result.Record(err)
		}

		result.Candidates = append(result.Candidates, item)
	}

	s.logger.Info("shortlist notifications",
		zap.String("job_name", job.JobName),
		zap.Int("shortlisted", len(result.Candidates)),
		zap.Int("sent", result.Sent),
		zap.Int("failed", result.Failed),
		zap.Bool("dry_run", req.DryRun),
	)

	return result, nil
}
