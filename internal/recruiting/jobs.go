package recruiting

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/cv-matcher/internal/notify"
	"github.com/spigell/cv-matcher/internal/store"
)

// JobInput describes a job to create.
type JobInput struct {
	Name        string `json:"job_name"`
	Description string `json:"job_description"`
	Notify      bool   `json:"notify"`
}

// JobResult is the created job and, when requested, the broadcast outcome.
type JobResult struct {
	Job           *store.Job    `json:"job"`
	Notifications *notify.Stats `json:"notifications,omitempty"`
}

func (s *Service) CreateJob(ctx context.Context, in JobInput) (*JobResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, invalid("job_name is required")
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, invalid("job_description is required")
	}

	_, err := s.store.GetJobByName(ctx, name)
	switch {
	case err == nil:
		return nil, &DuplicateJobError{Name: name}
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	profile, err := s.analyzer.AnalyzeJob(ctx, in.Description)
	if err != nil {
		return nil, fmt.Errorf("analyse job %s: %w", name, err)
	}

	job := &store.Job{
		JobName:        name,
		JobDescription: in.Description,
		JobProfile:     *profile,
		CreatedAt:      s.now(),
	}
	if err := s.store.InsertJob(ctx, job); err != nil {
		return nil, fmt.Errorf("insert job: %w", err)
	}

	s.logger.Info("job created", zap.String("job_id", job.ID.Hex()), zap.String("job_name", name))

	result := &JobResult{Job: job}
	if in.Notify {
		stats, err := s.BroadcastJob(ctx, job)
		if err != nil {
			return nil, err
		}
		result.Notifications = stats
	}

	return result, nil
}

// BroadcastJob sends the new job alert to every candidate with a phone number.
func (s *Service) BroadcastJob(ctx context.Context, job *store.Job) (*notify.Stats, error) {
	candidates, err := s.store.AllCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}

	var stats notify.Stats
	for _, c := range candidates {
		if strings.TrimSpace(c.PhoneNumber) == "" {
			continue
		}

		_, err := s.sender.Send(ctx, c.PhoneNumber, notify.NewJobAlert(job.JobName, job.JobDescription, c.HasResume))
		if err != nil {
			s.logger.Warn("new job alert failed", zap.String("candidate_id", c.ID.Hex()), zap.Error(err))
		}
		stats.Record(err)
	}

	s.logger.Info("new job alert sent",
		zap.String("job_name", job.JobName),
		zap.Int("sent", stats.Sent),
		zap.Int("failed", stats.Failed),
	)

	return &stats, nil
}

func (s *Service) ListJobs(ctx context.Context) ([]*store.Job, error) {
	return s.store.ListJobs(ctx)
}

func (s *Service) GetJob(ctx context.Context, id string) (*store.Job, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return s.store.GetJob(ctx, oid)
}

func (s *Service) DeleteJob(ctx context.Context, id string) error {
	oid, err := store.ParseID(id)
	if err != nil {
		return err
	}
	return s.store.DeleteJob(ctx, oid)
}
