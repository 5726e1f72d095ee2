package jobs

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/maltedev/shopify-product-importer/internal/models"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrBatchNotFound = errors.New("batch not found")
)

// Store persists import jobs. GetJob and ListJobs return batch metadata
// without the CSV payload; GetBatch returns the payload.
type Store interface {
	CreateJob(ctx context.Context, job *models.Job) error
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListJobs(ctx context.Context, limit int) ([]*models.Job, error)
	UpdateStatus(ctx context.Context, id, status string, jobErr error) error
	UpdateProgress(ctx context.Context, id string, processed int) error
	SaveResult(ctx context.Context, id string, rowCount int, failures []models.Failure, batches []models.Batch) error
	GetBatch(ctx context.Context, id string, index int) (*models.Batch, error)
}

type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*models.Job
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]*models.Job),
	}
}

func (s *MemoryStore) CreateJob(ctx context.Context, job *models.Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.jobs[job.ID] = cloneJob(job, true)
	return nil
}

func (s *MemoryStore) GetJob(ctx context.Context, id string) (*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return cloneJob(job, false), nil
}

// ListJobs returns the newest jobs first.
func (s *MemoryStore) ListJobs(ctx context.Context, limit int) ([]*models.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	jobs := make([]*models.Job, 0, len(s.jobs))
	for _, job := range s.jobs {
		jobs = append(jobs, cloneJob(job, false))
	}

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].CreatedAt.After(jobs[j].CreatedAt)
	})

	if limit > 0 && len(jobs) > limit {
		jobs = jobs[:limit]
	}
	return jobs, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id, status string, jobErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	now := time.Now()
	job.Status = status
	switch status {
	case models.JobStatusRunning:
		job.StartedAt = &now
	case models.JobStatusCompleted, models.JobStatusFailed:
		job.CompletedAt = &now
	}
	if jobErr != nil {
		job.Error = jobErr.Error()
	}

	return nil
}

func (s *MemoryStore) UpdateProgress(ctx context.Context, id string, processed int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}
	job.Processed = processed
	return nil
}

func (s *MemoryStore) SaveResult(ctx context.Context, id string, rowCount int, failures []models.Failure, batches []models.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ErrJobNotFound
	}

	job.RowCount = rowCount
	job.Failures = append([]models.Failure(nil), failures...)
	job.Batches = make([]models.Batch, len(batches))
	for i, b := range batches {
		b.Data = append([]byte(nil), b.Data...)
		job.Batches[i] = b
	}

	return nil
}

func (s *MemoryStore) GetBatch(ctx context.Context, id string, index int) (*models.Batch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}

	for _, b := range job.Batches {
		if b.Index == index {
			b.Data = append([]byte(nil), b.Data...)
			return &b, nil
		}
	}
	return nil, ErrBatchNotFound
}

func cloneJob(job *models.Job, withData bool) *models.Job {
	c := *job
	c.Failures = make([]models.Failure, len(job.Failures))
	copy(c.Failures, job.Failures)
	c.MissingColumns = append([]string(nil), job.MissingColumns...)
	c.Batches = make([]models.Batch, len(job.Batches))
	for i, b := range job.Batches {
		if withData {
			b.Data = append([]byte(nil), b.Data...)
		} else {
			b.Data = nil
		}
		c.Batches[i] = b
	}
	return &c
}
