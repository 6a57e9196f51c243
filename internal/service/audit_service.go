package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-crm-api/internal/models"
	"github.com/noah-isme/edu-crm-api/pkg/jobs"
)

const auditJobType = "audit_log"

type auditStore interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// AuditConfig sizes the dispatcher.
type AuditConfig struct {
	Workers    int
	Retries    int
	RetryDelay time.Duration
}

// AuditDispatcher writes audit rows in the background so a slow audit table
// never delays a response. Failed writes are retried by the queue.
type AuditDispatcher struct {
	queue  *jobs.Queue
	repo   auditStore
	logger *zap.Logger
}

// NewAuditDispatcher builds a dispatcher; call Start before Record.
func NewAuditDispatcher(repo auditStore, cfg AuditConfig, metrics *MetricsService, logger *zap.Logger) *AuditDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &AuditDispatcher{repo: repo, logger: logger}
	d.queue = jobs.NewQueue("audit", d.handle, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.Workers * 32,
		MaxRetries: cfg.Retries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
		Observer: func(_ jobs.Job, err error) {
			metrics.ObserveAuditJob(err)
		},
	})
	return d
}

// Start launches the workers.
func (d *AuditDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop drains pending audit rows until ctx expires.
func (d *AuditDispatcher) Stop(ctx context.Context) {
	d.queue.Stop(ctx)
}

// Record queues entry for writing.
func (d *AuditDispatcher) Record(entry models.AuditLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	return d.queue.Enqueue(jobs.Job{ID: entry.ID, Type: auditJobType, Payload: entry})
}

func (d *AuditDispatcher) handle(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.AuditLog)
	if !ok {
		d.logger.Error("unexpected audit payload", zap.String("job_id", job.ID), zap.String("type", fmt.Sprintf("%T", job.Payload)))
		return nil
	}
	return d.repo.Create(ctx, &entry)
}
