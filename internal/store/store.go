// Package store persists candidates, jobs and matchings.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for identifiers that are not valid object ids.
	ErrInvalidID = errors.New("invalid id")
)

type Store interface {
	InsertCandidate(ctx context.Context, c *Candidate) error
	InsertCandidates(ctx context.Context, cs []*Candidate) error
	GetCandidate(ctx context.Context, id primitive.ObjectID) (*Candidate, error)
	FindCandidateByFileHash(ctx context.Context, hash string) (*Candidate, error)
	FindCandidateByPhone(ctx context.Context, phoneKey string) (*Candidate, error)
	ListCandidates(ctx context.Context, page Page) ([]*Candidate, int64, error)
	AllCandidates(ctx context.Context) ([]*Candidate, error)
	UpdateCandidate(ctx context.Context, c *Candidate) error
	SetHasResume(ctx context.Context, id primitive.ObjectID, hasResume bool) error
	// DeleteCandidate removes the candidate together with its matchings.
	DeleteCandidate(ctx context.Context, id primitive.ObjectID) error

	InsertJob(ctx context.Context, j *Job) error
	GetJob(ctx context.Context, id primitive.ObjectID) (*Job, error)
	GetJobByName(ctx context.Context, name string) (*Job, error)
	ListJobs(ctx context.Context) ([]*Job, error)
	// DeleteJob removes the job together with its matchings.
	DeleteJob(ctx context.Context, id primitive.ObjectID) error

	// UpsertMatching stores m keyed by its candidate and job pair.
	UpsertMatching(ctx context.Context, m *Matching) error
	GetMatching(ctx context.Context, candidateID, jobID primitive.ObjectID) (*Matching, error)
	AllMatchings(ctx context.Context) ([]*Matching, error)
	ListMatchings(ctx context.Context, filter MatchingFilter) ([]*Matching, int64, error)
	MatchingsByJob(ctx context.Context, jobID primitive.ObjectID) ([]*Matching, error)
	MarkShortlistNotified(ctx context.Context, candidateID, jobID primitive.ObjectID) error

	Close(ctx context.Context) error
}

// ParseID converts a hex string into an object id.
func ParseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return oid, nil
}
