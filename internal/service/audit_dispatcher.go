package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/pkg/jobs"
)

// AuditDispatcher moves audit inserts off the request path. When the queue cannot take an
// entry it is written synchronously instead so the trail stays complete.
type AuditDispatcher struct {
	store  auditLogger
	queue  *jobs.Queue[*models.AuditLog]
	logger *zap.Logger
}

// NewAuditDispatcher builds a dispatcher writing through store.
func NewAuditDispatcher(store auditLogger, cfg jobs.QueueConfig, logger *zap.Logger) *AuditDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.Logger = logger
	d := &AuditDispatcher{store: store, logger: logger}
	d.queue = jobs.NewQueue[*models.AuditLog]("audit", d.handle, cfg)
	return d
}

// Start launches the background writers.
func (d *AuditDispatcher) Start(ctx context.Context) {
	d.queue.Start(ctx)
}

// Stop flushes buffered entries, bounded by ctx.
func (d *AuditDispatcher) Stop(ctx context.Context) error {
	return d.queue.Stop(ctx)
}

// CreateAuditLog queues log for writing.
func (d *AuditDispatcher) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	err := d.queue.Enqueue(jobs.Job[*models.AuditLog]{ID: log.ID, Payload: log})
	if err == nil {
		return nil
	}
	if errors.Is(err, jobs.ErrQueueFull) {
		d.logger.Warn("audit queue full, writing inline", zap.String("audit_id", log.ID))
	}
	return d.store.CreateAuditLog(context.WithoutCancel(ctx), log)
}

func (d *AuditDispatcher) handle(ctx context.Context, job jobs.Job[*models.AuditLog]) error {
	return d.store.CreateAuditLog(ctx, job.Payload)
}
