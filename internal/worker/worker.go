// Package worker processes background jobs: refreshing per-instance S3
// submission snapshots after each questionnaire submission.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumina-signage/backend/internal/admin"
	"github.com/lumina-signage/backend/internal/session"
	"github.com/lumina-signage/backend/pkg/queue"
	"github.com/lumina-signage/backend/pkg/storage"
)

// ExportProcessor processes submission export jobs: rebuild the instance's
// full CSV snapshot, upload it to S3, and stamp the triggering session as
// synced.
type ExportProcessor struct {
	adminRepo   *admin.Repository
	sessionRepo *session.Repository
	s3          *storage.S3
	queue       *queue.Queue
	logger      *zap.Logger
}

// NewExportProcessor creates a submission export processor.
func NewExportProcessor(adminRepo *admin.Repository, sessionRepo *session.Repository, s3 *storage.S3, q *queue.Queue, logger *zap.Logger) *ExportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportProcessor{adminRepo: adminRepo, sessionRepo: sessionRepo, s3: s3, queue: q, logger: logger}
}

// Process executes one submission export job.
func (p *ExportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeSubmissionExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.SubmissionExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	rows, err := p.adminRepo.ListSubmissions(ctx, admin.ListFilter{SignageID: payload.SignageID})
	if err != nil {
		return fmt.Errorf("load submissions: %w", err)
	}
	body, err := admin.BuildCSV(rows)
	if err != nil {
		return fmt.Errorf("build csv: %w", err)
	}

	key := storage.ExportKey(payload.SignageID)
	if _, err := p.s3.Upload(ctx, p.s3.ExportsBucket(), key, "text/csv", bytes.NewReader(body), int64(len(body)), false); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}

	if err := p.sessionRepo.MarkSynced(ctx, payload.SessionID); err != nil {
		p.logger.Error("mark synced failed", zap.Error(err), zap.String("session_id", payload.SessionID.String()))
		return fmt.Errorf("mark synced: %w", err)
	}

	p.logger.Info("export snapshot refreshed",
		zap.String("signage_id", payload.SignageID),
		zap.Int("submissions", len(rows)),
		zap.String("s3_key", key))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *ExportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("export worker stopping")
			return
		default:
		}

		job, _, err := p.queue.Dequeue(ctx)
		if err != nil {
			p.logger.Warn("dequeue error", zap.Error(err))
			time.Sleep(queue.RetryBackoff)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			time.Sleep(queue.RetryBackoff)
			continue
		}
	}
}
