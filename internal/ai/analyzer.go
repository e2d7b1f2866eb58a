package ai

import "context"

// CandidateProfile is the structured view of a résumé produced by the model.
type CandidateProfile struct {
	CandidateName  string   `json:"candidate_name" bson:"candidate_name" mapstructure:"candidate_name"`
	Email          string   `json:"email" bson:"email" mapstructure:"email"`
	PhoneNumber    string   `json:"phone_number" bson:"phone_number" mapstructure:"phone_number"`
	Comment        string   `json:"comment" bson:"comment" mapstructure:"comment"`
	Degree         []string `json:"degree" bson:"degree" mapstructure:"degree"`
	Experience     []string `json:"experience" bson:"experience" mapstructure:"experience"`
	TechnicalSkill []string `json:"technical_skill" bson:"technical_skill" mapstructure:"technical_skill"`
	Responsibility []string `json:"responsibility" bson:"responsibility" mapstructure:"responsibility"`
	Certificate    []string `json:"certificate" bson:"certificate" mapstructure:"certificate"`
	SoftSkill      []string `json:"soft_skill" bson:"soft_skill" mapstructure:"soft_skill"`
	JobRecommended []string `json:"job_recommended" bson:"job_recommended" mapstructure:"job_recommended"`
}

// JobProfile holds the requirements extracted from a job description.
type JobProfile struct {
	Degree         []string `json:"degree" bson:"degree" mapstructure:"degree"`
	Experience     []string `json:"experience" bson:"experience" mapstructure:"experience"`
	TechnicalSkill []string `json:"technical_skill" bson:"technical_skill" mapstructure:"technical_skill"`
	Responsibility []string `json:"responsibility" bson:"responsibility" mapstructure:"responsibility"`
	Certificate    []string `json:"certificate" bson:"certificate" mapstructure:"certificate"`
	SoftSkill      []string `json:"soft_skill" bson:"soft_skill" mapstructure:"soft_skill"`
}

// Analyzer turns free text into structured profiles and scores a candidate against a job.
// AnalyzeMatching returns the raw per-category payload; the final score is computed by the caller.
type Analyzer interface {
	AnalyzeCandidate(ctx context.Context, cvText string) (*CandidateProfile, error)
	AnalyzeJob(ctx context.Context, description string) (*JobProfile, error)
	AnalyzeMatching(ctx context.Context, job *JobProfile, candidate *CandidateProfile) (map[string]any, error)
}
