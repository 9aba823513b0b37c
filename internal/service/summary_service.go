package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
)

type claimLister interface {
	List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error)
}

type centerReader interface {
	List(ctx context.Context) ([]models.Center, error)
	ListByIDs(ctx context.Context, ids []string) ([]models.Center, error)
}

// SummaryService answers the monthly reporting queries. Results are computed from the current
// claim set on every call.
type SummaryService struct {
	claims  claimLister
	centers centerReader
	authz   *AuthorizationResolver
	logger  *zap.Logger
}

// NewSummaryService constructs a SummaryService.
func NewSummaryService(claims claimLister, centers centerReader, authz *AuthorizationResolver, logger *zap.Logger) *SummaryService {
	if authz == nil {
		authz = NewAuthorizationResolver()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SummaryService{claims: claims, centers: centers, authz: authz, logger: logger}
}

// Lecturer returns one lecturer's monthly summary restricted to what the actor can see.
func (s *SummaryService) Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery) (*models.Summary, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if query.ClaimType != nil && !query.ClaimType.Valid() {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unsupported claim type"), "claimType")
	}
	empty := SummarizeLecturer(query.LecturerID, query.Year, query.Month, query.ClaimType, nil)

	from, until, ok := PeriodWindow(query.Year, query.Month)
	if !ok || query.LecturerID == "" {
		return &empty, nil
	}
	filter := models.ClaimFilter{
		SubmittedByID:  query.LecturerID,
		SubmittedFrom:  &from,
		SubmittedUntil: &until,
	}
	if !s.authz.Narrow(actor, &filter) {
		return &empty, nil
	}
	claims, err := s.claims.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claims for summary")
	}
	summary := SummarizeLecturer(query.LecturerID, query.Year, query.Month, query.ClaimType, s.authz.FilterVisible(actor, claims))
	return &summary, nil
}

// Centers returns the grouped monthly summary over the actor's visible centers. A center filter
// outside a restricted scope is forbidden.
func (s *SummaryService) Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery) ([]models.CenterSummary, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	centers, err := s.scopedCenters(ctx, actor, query.CenterID)
	if err != nil {
		return nil, err
	}
	if len(centers) == 0 {
		return []models.CenterSummary{}, nil
	}

	from, until, ok := PeriodWindow(query.Year, query.Month)
	if !ok {
		return SummarizeCenters(centers, query.Year, query.Month, nil), nil
	}
	ids := make([]string, len(centers))
	for i, center := range centers {
		ids[i] = center.ID
	}
	filter := models.ClaimFilter{
		CenterIDs:      ids,
		Status:         []models.ClaimStatus{models.ClaimStatusApproved},
		SubmittedFrom:  &from,
		SubmittedUntil: &until,
	}
	if !s.authz.Narrow(actor, &filter) {
		return SummarizeCenters(centers, query.Year, query.Month, nil), nil
	}
	claims, err := s.claims.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load claims for summary")
	}
	return SummarizeCenters(centers, query.Year, query.Month, s.authz.FilterVisible(actor, claims)), nil
}

func (s *SummaryService) scopedCenters(ctx context.Context, actor *models.Actor, centerID string) ([]models.Center, error) {
	ids, unrestricted := s.authz.VisibleCenters(actor)
	if centerID != "" {
		if !unrestricted && !containsString(ids, centerID) {
			return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrForbidden, "center is outside your scope"), "centerId")
		}
		ids = []string{centerID}
		unrestricted = false
	}

	var (
		centers []models.Center
		err     error
	)
	switch {
	case unrestricted:
		centers, err = s.centers.List(ctx)
	case len(ids) == 0:
		return []models.Center{}, nil
	default:
		centers, err = s.centers.ListByIDs(ctx, ids)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load centers")
	}
	return centers, nil
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
