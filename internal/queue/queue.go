// Package queue moves matching requests through RabbitMQ.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DefaultName is the durable queue carrying matching tasks.
const DefaultName = "matching"

// Task asks a worker to score one candidate against one job.
type Task struct {
	ID          string `json:"id,omitempty"`
	CandidateID string `json:"candidate_id"`
	JobID       string `json:"job_id"`
}

// Handler processes a task. A returned error is logged and the message is still acknowledged.
type Handler func(ctx context.Context, task Task) error

// Config holds broker settings.
type Config struct {
	URL   string `mapstructure:"url"`
	Queue string `mapstructure:"queue"`
}

func (c Config) name() string {
	if strings.TrimSpace(c.Queue) == "" {
		return DefaultName
	}
	return c.Queue
}

func decodeTask(body []byte) (Task, error) {
	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return Task{}, fmt.Errorf("decode task: %w", err)
	}
	if task.CandidateID == "" || task.JobID == "" {
		return Task{}, errors.New("decode task: candidate_id and job_id are required")
	}
	return task, nil
}
