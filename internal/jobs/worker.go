package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/maltedev/shopify-product-importer/internal/models"
	"github.com/maltedev/shopify-product-importer/internal/queue"
	"github.com/maltedev/shopify-product-importer/internal/shopify"
)

const finalizeTimeout = 10 * time.Second

// StartWorker processes queued imports one at a time until ctx is done or the
// queue is closed.
func (m *Manager) StartWorker(ctx context.Context) {
	m.logger.Info("job worker started")

	for {
		task, err := m.queue.Pop(ctx)
		if err != nil {
			if errors.Is(err, queue.ErrQueueClosed) || ctx.Err() != nil {
				m.logger.Info("job worker stopping")
				return
			}
			m.logger.Error("failed to take task", "error", err)
			continue
		}

		m.processTask(ctx, task)
	}
}

func (m *Manager) processTask(ctx context.Context, task *queue.Task) {
	jobID := task.JobID
	logger := m.logger.With("job_id", jobID)
	logger.Info("processing job", "urls", len(task.URLs))

	if err := m.store.UpdateStatus(ctx, jobID, models.JobStatusRunning, nil); err != nil {
		logger.Error("failed to update job status", "error", err)
		return
	}

	if err := m.processJob(ctx, jobID, task.URLs); err != nil {
		logger.Error("job failed", "error", err)

		// ctx may already be cancelled at shutdown
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
		defer cancel()
		if err := m.store.UpdateStatus(fctx, jobID, models.JobStatusFailed, err); err != nil {
			logger.Error("failed to mark job as failed", "error", err)
		}
		m.publish(fctx, jobID)
		return
	}

	if err := m.store.UpdateStatus(ctx, jobID, models.JobStatusCompleted, nil); err != nil {
		logger.Error("failed to mark job as completed", "error", err)
		return
	}

	m.publish(ctx, jobID)
	logger.Info("job completed")
}

func (m *Manager) processJob(ctx context.Context, jobID string, urls []string) error {
	result, runErr := m.runner.Run(ctx, urls, func(done, total int) {
		if err := m.store.UpdateProgress(ctx, jobID, done); err != nil {
			m.logger.Warn("failed to update progress", "job_id", jobID, "error", err)
		}
	})
	if result == nil {
		return fmt.Errorf("import returned no result: %w", runErr)
	}

	batches, batchErr := shopify.WriteBatches(result.Rows, m.batchSize)
	if batchErr != nil {
		m.logger.Error("failed to write some batches", "job_id", jobID, "error", batchErr)
	}

	for i := range batches {
		location, err := m.sink.Put(ctx, jobID, batches[i])
		if err != nil {
			m.logger.Error("failed to store batch",
				"job_id", jobID,
				"batch", batches[i].Label,
				"error", err)
			continue
		}
		batches[i].Location = location
	}

	sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalizeTimeout)
	defer cancel()
	if err := m.store.SaveResult(sctx, jobID, len(result.Rows), result.Failures, batches); err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	switch {
	case runErr != nil:
		return runErr
	case len(result.Rows) == 0:
		return shopify.ErrNoRows
	case batchErr != nil:
		return batchErr
	}
	return nil
}

func (m *Manager) publish(ctx context.Context, jobID string) {
	job, err := m.store.GetJob(ctx, jobID)
	if err != nil {
		m.logger.Error("failed to load job for event", "job_id", jobID, "error", err)
		return
	}

	if err := m.publisher.PublishImportCompleted(ctx, job); err != nil {
		m.logger.Error("failed to publish import event", "job_id", jobID, "error", err)
	}
}
