package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
)

type claimStore interface {
	Create(ctx context.Context, claim *models.Claim) error
	GetByID(ctx context.Context, id string) (*models.Claim, error)
	List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error)
	Count(ctx context.Context, filter models.ClaimFilter) (int, error)
	Transition(ctx context.Context, params repository.TransitionParams) error
	Delete(ctx context.Context, id string) error
}

type auditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

// ClaimService runs the claim lifecycle: submission, scoped reads, processing and the
// administrative delete.
type ClaimService struct {
	repo      claimStore
	validator *ClaimValidator
	authz     *AuthorizationResolver
	audit     auditLogger
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewClaimService wires the claim workflow.
func NewClaimService(
	repo claimStore,
	validator *ClaimValidator,
	authz *AuthorizationResolver,
	audit auditLogger,
	metrics *MetricsService,
	logger *zap.Logger,
) *ClaimService {
	if validator == nil {
		validator = NewClaimValidator(nil, nil)
	}
	if authz == nil {
		authz = NewAuthorizationResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClaimService{
		repo:      repo,
		validator: validator,
		authz:     authz,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Submit validates and stores a new PENDING claim for a lecturer. An empty center defaults to
// the lecturer's home center; any other center is forbidden.
func (s *ClaimService) Submit(ctx context.Context, actor *models.Actor, req dto.SubmitClaimRequest) (*models.Claim, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if actor.Role != models.RoleLecturer {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only lecturers can submit claims")
	}
	if actor.HomeCenterID == nil {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "lecturer has no home center")
	}
	centerID := *actor.HomeCenterID
	if req.CenterID != "" && req.CenterID != centerID {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrForbidden, "claims must be filed against the home center"), "centerId")
	}

	claim, err := s.validator.Build(ctx, actor.ID, centerID, req)
	if err != nil {
		return nil, err
	}
	claim.SubmittedAt = s.now()

	if err := s.repo.Create(ctx, claim); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create claim")
	}
	s.metrics.ClaimSubmitted(claim.Type)
	s.emitAudit(ctx, actor, models.AuditActionClaimSubmit, claim.ID, claim)
	return claim, nil
}

// Get returns the claim when the actor may view it.
func (s *ClaimService) Get(ctx context.Context, actor *models.Actor, id string) (*models.Claim, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	claim, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanView(actor, claim) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "claim is outside your scope")
	}
	return claim, nil
}

// List returns the claims visible to the actor matching the query, newest first.
func (s *ClaimService) List(ctx context.Context, actor *models.Actor, query dto.ClaimQuery) ([]models.Claim, *models.Pagination, error) {
	if actor == nil {
		return nil, nil, appErrors.ErrUnauthorized
	}
	page, size := normalizePage(query.Page, query.PageSize)
	filter := models.ClaimFilter{
		Status: query.Status,
		Type:   query.Type,
	}
	if query.CenterID != "" {
		filter.CenterIDs = []string{query.CenterID}
	}
	if query.Year != 0 || query.Month != 0 {
		from, until, ok := PeriodWindow(query.Year, query.Month)
		if !ok {
			return []models.Claim{}, &models.Pagination{Page: page, PageSize: size}, nil
		}
		filter.SubmittedFrom = &from
		filter.SubmittedUntil = &until
	}

	if !s.authz.Narrow(actor, &filter) {
		return []models.Claim{}, &models.Pagination{Page: page, PageSize: size}, nil
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count claims")
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	if (page-1)*size >= total {
		return []models.Claim{}, pagination, nil
	}

	filter.Limit = size
	filter.Offset = (page - 1) * size
	claims, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list claims")
	}
	return s.authz.FilterVisible(actor, claims), pagination, nil
}

// Process moves a PENDING claim to APPROVED or REJECTED. The write is conditional on the claim
// still being PENDING, so concurrent processors get exactly one winner.
func (s *ClaimService) Process(ctx context.Context, actor *models.Actor, id string, req dto.ProcessClaimRequest) (*models.Claim, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	claim, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.authz.CanProcess(actor, claim) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot process this claim")
	}
	if !req.Status.Terminal() {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "status must be APPROVED or REJECTED"), "status")
	}
	if !models.CanTransition(claim.Status, req.Status) {
		s.metrics.ProcessConflict()
		return nil, appErrors.ErrAlreadyProcessed
	}

	processedAt := s.now()
	err = s.repo.Transition(ctx, repository.TransitionParams{
		ID:            claim.ID,
		Status:        req.Status,
		ProcessedByID: actor.ID,
		ProcessedAt:   processedAt,
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, s.lostTransition(ctx, id)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to process claim")
	}

	previous := claim.Status
	processedBy := actor.ID
	claim.Status = req.Status
	claim.ProcessedByID = &processedBy
	claim.ProcessedAt = &processedAt
	s.metrics.ClaimProcessed(req.Status)
	s.logger.Info("claim processed",
		zap.String("claim_id", claim.ID),
		zap.String("status", string(req.Status)),
		zap.String("processed_by", actor.ID),
	)
	s.emitAudit(ctx, actor, models.AuditActionClaimProcess, claim.ID, map[string]interface{}{
		"from": previous,
		"to":   req.Status,
	})
	return claim, nil
}

// lostTransition explains a conditional update that matched nothing.
func (s *ClaimService) lostTransition(ctx context.Context, id string) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	s.metrics.ProcessConflict()
	return appErrors.ErrAlreadyProcessed
}

// Delete removes a claim regardless of status. Only REGISTRY may do this.
func (s *ClaimService) Delete(ctx context.Context, actor *models.Actor, id string) error {
	if actor == nil {
		return appErrors.ErrUnauthorized
	}
	if !s.authz.CanDelete(actor) {
		return appErrors.Clone(appErrors.ErrForbidden, "only registry can delete claims")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "claim not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete claim")
	}
	s.emitAudit(ctx, actor, models.AuditActionClaimDelete, id, nil)
	return nil
}

func (s *ClaimService) load(ctx context.Context, id string) (*models.Claim, error) {
	claim, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "claim not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claim")
	}
	return claim, nil
}

func (s *ClaimService) emitAudit(ctx context.Context, actor *models.Actor, action models.AuditAction, claimID string, payload interface{}) {
	if s.audit == nil {
		return
	}
	var newValues []byte
	if payload != nil {
		newValues, _ = json.Marshal(payload)
	}
	log := &models.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		Resource:   models.AuditResourceClaim,
		ResourceID: &claimID,
		NewValues:  newValues,
		IPAddress:  "system",
		UserAgent:  "claim-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record claim audit", zap.String("action", string(action)), zap.Error(err))
	}
}

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return page, size
}
