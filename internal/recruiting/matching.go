package recruiting

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/logger"
	"github.com/spigell/cv-matcher/internal/queue"
	"github.com/spigell/cv-matcher/internal/store"
)

// MatchingPage is one page of the matching listing.
type MatchingPage struct {
	Results   []*store.Matching `json:"results"`
	TotalPage int               `json:"total_page"`
	TotalFile int64             `json:"total_file"`
}

// ProcessMatching scores a candidate against a job and stores the result. Scoring errors
// leave any previous matching untouched.
func (s *Service) ProcessMatching(ctx context.Context, candidateID, jobID string) (*store.Matching, error) {
	cid, err := store.ParseID(candidateID)
	if err != nil {
		return nil, err
	}
	jid, err := store.ParseID(jobID)
	if err != nil {
		return nil, err
	}

	candidate, err := s.store.GetCandidate(ctx, cid)
	if err != nil {
		return nil, err
	}
	job, err := s.store.GetJob(ctx, jid)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(s.logger, logger.MatchingFields(candidateID, jobID)...)
	log.Info("start analyse matching")

	payload, err := s.analyzer.AnalyzeMatching(ctx, &job.JobProfile, &candidate.CandidateProfile)
	if err != nil {
		return nil, fmt.Errorf("analyse matching: %w", err)
	}

	result, err := s.aggregator.Evaluate(payload)
	if err != nil {
		log.Warn("matching payload rejected", zap.Error(err))
		return nil, err
	}

	m := &store.Matching{
		CandidateID:    cid,
		JobID:          jid,
		CandidateName:  candidate.CandidateName,
		JobName:        job.JobName,
		Categories:     result.Categories,
		SummaryComment: result.SummaryComment,
		Score:          result.FinalScore,
		Mode:           result.Mode,
	}
	if err := s.store.UpsertMatching(ctx, m); err != nil {
		return nil, fmt.Errorf("store matching: %w", err)
	}

	log.Info("done analyse matching", zap.Float64("score", m.Score))

	return m, nil
}

// HandleTask processes a queued matching request.
func (s *Service) HandleTask(ctx context.Context, task queue.Task) error {
	_, err := s.ProcessMatching(ctx, task.CandidateID, task.JobID)
	return err
}

// Enqueue publishes one matching task per candidate. No candidate ids means every candidate.
func (s *Service) Enqueue(ctx context.Context, jobID string, candidateIDs []string) (int, error) {
	if s.queue == nil {
		return 0, ErrQueueDisabled
	}

	if _, err := s.GetJob(ctx, jobID); err != nil {
		return 0, err
	}

	if len(candidateIDs) == 0 {
		all, err := s.store.AllCandidates(ctx)
		if err != nil {
			return 0, fmt.Errorf("list candidates: %w", err)
		}
		for _, c := range all {
			candidateIDs = append(candidateIDs, c.ID.Hex())
		}
	}

	for _, id := range candidateIDs {
		if _, err := store.ParseID(id); err != nil {
			return 0, err
		}
	}

	published := 0
	for _, id := range candidateIDs {
		if err := s.queue.Publish(ctx, queue.Task{CandidateID: id, JobID: jobID}); err != nil {
			return published, fmt.Errorf("publish matching task: %w", err)
		}
		published++
	}

	return published, nil
}

func (s *Service) AllMatchings(ctx context.Context) ([]*store.Matching, error) {
	return s.store.AllMatchings(ctx)
}

func (s *Service) ListMatchings(ctx context.Context, page, size int, jobID string) (*MatchingPage, error) {
	p, err := normalizePage(page, size)
	if err != nil {
		return nil, err
	}

	filter := store.MatchingFilter{Page: p}
	if jobID != "" {
		if filter.JobID, err = store.ParseID(jobID); err != nil {
			return nil, err
		}
	}

	results, total, err := s.store.ListMatchings(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list matchings: %w", err)
	}

	return &MatchingPage{Results: results, TotalPage: totalPages(total, p.Size), TotalFile: total}, nil
}

func (s *Service) GetMatching(ctx context.Context, candidateID, jobID string) (*store.Matching, error) {
	cid, err := store.ParseID(candidateID)
	if err != nil {
		return nil, err
	}
	jid, err := store.ParseID(jobID)
	if err != nil {
		return nil, err
	}
	return s.store.GetMatching(ctx, cid, jid)
}
