package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/repository"
)

func strPtr(v string) *string { return &v }

func floatPtr(v float64) *float64 { return &v }

// claimStoreStub keeps claims in memory. Transition is a compare-and-swap under the mutex so
// concurrent processors race the same way they would against the conditional UPDATE.
type claimStoreStub struct {
	mu        sync.Mutex
	claims    map[string]*models.Claim
	seq       int
	createErr error
	listErr   error
	filters   []models.ClaimFilter
}

func newClaimStoreStub(claims ...models.Claim) *claimStoreStub {
	s := &claimStoreStub{claims: map[string]*models.Claim{}}
	for i := range claims {
		c := claims[i]
		s.claims[c.ID] = &c
	}
	return s
}

func (s *claimStoreStub) Create(ctx context.Context, claim *models.Claim) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return s.createErr
	}
	s.seq++
	if claim.ID == "" {
		claim.ID = fmt.Sprintf("claim-%d", s.seq)
	}
	stored := *claim
	s.claims[claim.ID] = &stored
	return nil
}

func (s *claimStoreStub) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *c
	return &copied, nil
}

func (s *claimStoreStub) List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = append(s.filters, filter)
	if s.listErr != nil {
		return nil, s.listErr
	}
	result := s.matching(filter)
	if filter.Limit > 0 {
		start := filter.Offset
		if start > len(result) {
			start = len(result)
		}
		end := start + filter.Limit
		if end > len(result) {
			end = len(result)
		}
		result = result[start:end]
	}
	return result, nil
}

func (s *claimStoreStub) Count(ctx context.Context, filter models.ClaimFilter) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listErr != nil {
		return 0, s.listErr
	}
	return len(s.matching(filter)), nil
}

func (s *claimStoreStub) matching(filter models.ClaimFilter) []models.Claim {
	result := []models.Claim{}
	for _, c := range s.claims {
		if filter.SubmittedByID != "" && c.SubmittedByID != filter.SubmittedByID {
			continue
		}
		if filter.CenterIDs != nil && !containsString(filter.CenterIDs, c.CenterID) {
			continue
		}
		if len(filter.Status) > 0 && !containsStatus(filter.Status, c.Status) {
			continue
		}
		if filter.Type != "" && c.Type != filter.Type {
			continue
		}
		if filter.SubmittedFrom != nil && c.SubmittedAt.Before(*filter.SubmittedFrom) {
			continue
		}
		if filter.SubmittedUntil != nil && !c.SubmittedAt.Before(*filter.SubmittedUntil) {
			continue
		}
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].SubmittedAt.Equal(result[j].SubmittedAt) {
			return result[i].SubmittedAt.After(result[j].SubmittedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func (s *claimStoreStub) Transition(ctx context.Context, params repository.TransitionParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.claims[params.ID]
	if !ok || c.Status != models.ClaimStatusPending {
		return sql.ErrNoRows
	}
	processedBy := params.ProcessedByID
	processedAt := params.ProcessedAt
	c.Status = params.Status
	c.ProcessedByID = &processedBy
	c.ProcessedAt = &processedAt
	return nil
}

func (s *claimStoreStub) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.claims[id]; !ok {
		return sql.ErrNoRows
	}
	delete(s.claims, id)
	return nil
}

func containsStatus(values []models.ClaimStatus, target models.ClaimStatus) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

type auditStub struct {
	mu   sync.Mutex
	logs []*models.AuditLog
	err  error
}

func (a *auditStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return a.err
}

type centerStub struct {
	centers []models.Center
	err     error
}

func (c centerStub) List(ctx context.Context) ([]models.Center, error) {
	return c.centers, c.err
}

func (c centerStub) ListByIDs(ctx context.Context, ids []string) ([]models.Center, error) {
	if c.err != nil {
		return nil, c.err
	}
	result := []models.Center{}
	for _, center := range c.centers {
		if containsString(ids, center.ID) {
			result = append(result, center)
		}
	}
	return result, nil
}

type distanceStub struct {
	mu     sync.Mutex
	values map[string]*float64
	calls  []string
}

func (d *distanceStub) DistanceKm(ctx context.Context, from, to string) *float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := from + "|" + to
	d.calls = append(d.calls, key)
	return d.values[key]
}

func lecturer(id, center string) *models.Actor {
	return &models.Actor{ID: id, Role: models.RoleLecturer, HomeCenterID: strPtr(center)}
}

func coordinator(id, center string) *models.Actor {
	return &models.Actor{ID: id, Role: models.RoleCoordinator, CoordinatedCenterID: strPtr(center)}
}

func staff(id string, centers ...string) *models.Actor {
	if centers == nil {
		centers = []string{}
	}
	return &models.Actor{ID: id, Role: models.RoleStaffRegistry, AssignedCenterIDs: centers}
}

func registry(id string) *models.Actor {
	return &models.Actor{ID: id, Role: models.RoleRegistry}
}

func teachingClaim(id, submitter, center string, status models.ClaimStatus, hours float64, at time.Time) models.Claim {
	return models.Claim{
		ID:            id,
		SubmittedByID: submitter,
		CenterID:      center,
		Type:          models.ClaimTypeTeaching,
		Status:        status,
		SubmittedAt:   at,
		Teaching: &models.TeachingDetails{
			CourseCode:    "CS101",
			CourseTitle:   "Intro",
			TeachingDate:  models.NewDate(at.Year(), at.Month(), at.Day()),
			StartTime:     "09:00",
			EndTime:       "10:00",
			TeachingHours: hours,
		},
	}
}

func transportClaim(id, submitter, center string, status models.ClaimStatus, amount float64, at time.Time) models.Claim {
	return models.Claim{
		ID:            id,
		SubmittedByID: submitter,
		CenterID:      center,
		Type:          models.ClaimTypeTransportation,
		Status:        status,
		SubmittedAt:   at,
		Transportation: &models.TransportationDetails{
			TransportType: models.TransportTypePublic,
			Origin:        "A",
			Destination:   "B",
			Amount:        amount,
		},
	}
}

func thesisClaim(id, submitter, center string, status models.ClaimStatus, thesisType models.ThesisType, at time.Time) models.Claim {
	c := models.Claim{
		ID:            id,
		SubmittedByID: submitter,
		CenterID:      center,
		Type:          models.ClaimTypeThesisProject,
		Status:        status,
		SubmittedAt:   at,
		Thesis:        &models.ThesisDetails{ThesisType: thesisType},
	}
	if thesisType == models.ThesisTypeSupervision {
		c.Thesis.Supervision = &models.SupervisionDetails{Rank: "MAIN", Students: []models.SupervisedStudent{}}
	} else {
		c.Thesis.Examination = &models.ExaminationDetails{CourseCode: "TH500", ExamDate: models.NewDate(at.Year(), at.Month(), at.Day())}
	}
	return c
}
