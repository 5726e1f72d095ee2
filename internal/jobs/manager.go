package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/maltedev/shopify-product-importer/internal/events"
	"github.com/maltedev/shopify-product-importer/internal/importer"
	"github.com/maltedev/shopify-product-importer/internal/input"
	"github.com/maltedev/shopify-product-importer/internal/models"
	"github.com/maltedev/shopify-product-importer/internal/queue"
	"github.com/maltedev/shopify-product-importer/internal/shopify"
	"github.com/maltedev/shopify-product-importer/internal/sink"
)

const listLimit = 100

// Runner runs one import. *importer.Importer implements it.
type Runner interface {
	Run(ctx context.Context, urls []string, progress importer.ProgressFunc) (*models.RunResult, error)
}

type Publisher interface {
	PublishImportCompleted(ctx context.Context, job *models.Job) error
}

type Manager struct {
	store     Store
	queue     queue.Queue
	runner    Runner
	sink      sink.Sink
	publisher Publisher
	batchSize int
	logger    *slog.Logger
}

func NewManager(store Store, q queue.Queue, runner Runner, s sink.Sink, publisher Publisher, batchSize int, logger *slog.Logger) *Manager {
	if batchSize < 1 {
		batchSize = shopify.DefaultBatchSize
	}
	if s == nil {
		s = sink.NopSink{}
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Manager{
		store:     store,
		queue:     q,
		runner:    runner,
		sink:      s,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger.With("component", "job_manager"),
	}
}

// Submit stores a pending job and queues it for the worker. templateColumns
// may be empty; when given, columns the template lacks are recorded on the job.
func (m *Manager) Submit(ctx context.Context, urls []string, templateColumns []string) (*models.Job, error) {
	if len(urls) == 0 {
		return nil, input.ErrNoURLs
	}

	job := &models.Job{
		ID:        uuid.New().String(),
		Status:    models.JobStatusPending,
		Total:     len(urls),
		Failures:  []models.Failure{},
		Batches:   []models.Batch{},
		CreatedAt: time.Now(),
	}

	if len(templateColumns) > 0 {
		report := shopify.CheckTemplate(templateColumns)
		if !report.OK() {
			m.logger.Warn("template does not match import columns",
				"missing", report.Missing,
				"extra", report.Extra)
		}
		job.MissingColumns = report.Missing
	}

	if err := m.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	task := &queue.Task{
		ID:    uuid.New().String(),
		JobID: job.ID,
		URLs:  urls,
	}
	if err := m.queue.Push(task); err != nil {
		if serr := m.store.UpdateStatus(ctx, job.ID, models.JobStatusFailed, err); serr != nil {
			m.logger.Error("failed to mark job as failed", "job_id", job.ID, "error", serr)
		}
		return nil, fmt.Errorf("failed to queue job: %w", err)
	}

	m.logger.Info("job created", "job_id", job.ID, "urls", len(urls))
	return job, nil
}

func (m *Manager) Get(ctx context.Context, jobID string) (*models.Job, error) {
	return m.store.GetJob(ctx, jobID)
}

func (m *Manager) List(ctx context.Context) ([]*models.Job, error) {
	return m.store.ListJobs(ctx, listLimit)
}

// Batch returns batch n of a job including its CSV payload.
func (m *Manager) Batch(ctx context.Context, jobID string, n int) (*models.Batch, error) {
	return m.store.GetBatch(ctx, jobID, n)
}
