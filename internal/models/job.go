package models

import (
	"time"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

// Job tracks one import run submitted through the API.
type Job struct {
	ID             string     `json:"id"`
	Status         string     `json:"status"`
	Total          int        `json:"total"`
	Processed      int        `json:"processed"`
	RowCount       int        `json:"row_count"`
	Failures       []Failure  `json:"failures"`
	Batches        []Batch    `json:"batches"`
	MissingColumns []string   `json:"missing_columns,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Error          string     `json:"error,omitempty"`
}

// Progress returns the fraction of URLs processed so far.
func (j *Job) Progress() float64 {
	if j.Total == 0 {
		if j.Status == JobStatusCompleted {
			return 1
		}
		return 0
	}
	return float64(j.Processed) / float64(j.Total)
}

func (j *Job) IsFinished() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
