package store

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spigell/cv-matcher/internal/ai"
	"github.com/spigell/cv-matcher/internal/scoring"
)

// Candidate is a person in the talent pool, with or without an analysed résumé.
type Candidate struct {
	ID primitive.ObjectID `json:"id" bson:"_id,omitempty"`

	ai.CandidateProfile `bson:",inline"`

	Department string `json:"department" bson:"department"`
	HasResume  bool   `json:"has_resume" bson:"has_resume"`
	CVName     string `json:"cv_name" bson:"cv_name"`
	FileKey    string `json:"file_key,omitempty" bson:"file_key,omitempty"`
	FileHash   string `json:"filehash,omitempty" bson:"filehash,omitempty"`
	// PhoneKey is the normalized phone number used to match inbound messages.
	PhoneKey string `json:"-" bson:"phone_key,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Job is an open position with the requirements extracted from its description.
type Job struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	JobName        string             `json:"job_name" bson:"job_name"`
	JobDescription string             `json:"job_description" bson:"job_description"`

	ai.JobProfile `bson:",inline"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Matching is the scored comparison of one candidate with one job.
type Matching struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	CandidateID primitive.ObjectID `json:"candidate_id" bson:"candidate_id"`
	JobID       primitive.ObjectID `json:"job_id" bson:"job_id"`

	CandidateName string `json:"candidate_name" bson:"candidate_name"`
	JobName       string `json:"job_name" bson:"job_name"`

	Categories     map[string]scoring.CategoryResult `json:"categories" bson:"categories"`
	SummaryComment string                            `json:"summary_comment" bson:"summary_comment"`
	Score          float64                           `json:"score" bson:"score"`
	Mode           string                            `json:"mode" bson:"mode"`

	ShortlistNotified bool `json:"shortlist_notified" bson:"shortlist_notified"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Page addresses a 1-based page of results.
type Page struct {
	Number int
	Size   int
}

func (p Page) skip() int {
	return (p.Number - 1) * p.Size
}

// MatchingFilter narrows a matching listing. A zero JobID lists all jobs.
type MatchingFilter struct {
	JobID primitive.ObjectID
	Page  Page
}
