package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/pkg/jobs"
)

func TestAuditDispatcherFlushesOnStop(t *testing.T) {
	store := &auditStub{}
	d := NewAuditDispatcher(store, jobs.QueueConfig{Workers: 2}, nil)
	d.Start(context.Background())

	for i := 0; i < 5; i++ {
		require.NoError(t, d.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionClaimSubmit}))
	}
	require.NoError(t, d.Stop(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.logs, 5)
	for _, log := range store.logs {
		assert.NotEmpty(t, log.ID)
	}
}

func TestAuditDispatcherWritesInlineWhenStopped(t *testing.T) {
	store := &auditStub{}
	d := NewAuditDispatcher(store, jobs.QueueConfig{}, nil)

	require.NoError(t, d.CreateAuditLog(context.Background(), &models.AuditLog{Action: models.AuditActionClaimDelete}))
	store.mu.Lock()
	assert.Len(t, store.logs, 1)
	store.mu.Unlock()
}

func TestAuditDispatcherFeedsClaimService(t *testing.T) {
	store := &auditStub{}
	d := NewAuditDispatcher(store, jobs.QueueConfig{RetryDelay: time.Millisecond}, nil)
	d.Start(context.Background())

	svc := NewClaimService(newClaimStoreStub(), NewClaimValidator(nil, nil), nil, d, nil, nil)
	_, err := svc.Submit(context.Background(), lecturer("lec-1", "center-a"), teachingRequest())
	require.NoError(t, err)
	require.NoError(t, d.Stop(context.Background()))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.logs, 1)
	assert.Equal(t, models.AuditActionClaimSubmit, store.logs[0].Action)
}
