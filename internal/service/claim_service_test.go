package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newClaimServiceForTest(store *claimStoreStub, audit *auditStub) *ClaimService {
	var logger auditLogger
	if audit != nil {
		logger = audit
	}
	svc := NewClaimService(store, NewClaimValidator(nil, nil), NewAuthorizationResolver(), logger, NewMetricsService(), nil)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestClaimServiceSubmitDefaultsToHomeCenter(t *testing.T) {
	store := newClaimStoreStub()
	audit := &auditStub{}
	svc := newClaimServiceForTest(store, audit)

	claim, err := svc.Submit(context.Background(), lecturer("lect-1", "center-a"), teachingRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, claim.ID)
	assert.Equal(t, "center-a", claim.CenterID)
	assert.Equal(t, "lect-1", claim.SubmittedByID)
	assert.Equal(t, fixedNow, claim.SubmittedAt)
	assert.Equal(t, models.ClaimStatusPending, claim.Status)
	assert.Nil(t, claim.ProcessedByID)
	assert.Nil(t, claim.ProcessedAt)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionClaimSubmit, audit.logs[0].Action)
	assert.Equal(t, claim.ID, *audit.logs[0].ResourceID)
}

func TestClaimServiceSubmitRejectsOtherCenterAndRoles(t *testing.T) {
	svc := newClaimServiceForTest(newClaimStoreStub(), nil)

	req := teachingRequest()
	req.CenterID = "center-b"
	_, err := svc.Submit(context.Background(), lecturer("lect-1", "center-a"), req)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Submit(context.Background(), coordinator("co", "center-a"), teachingRequest())
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Submit(context.Background(), nil, teachingRequest())
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestClaimServiceSubmitValidationWritesNothing(t *testing.T) {
	store := newClaimStoreStub()
	svc := newClaimServiceForTest(store, nil)
	req := teachingRequest()
	req.TeachingEndTime = "08:00"

	_, err := svc.Submit(context.Background(), lecturer("lect-1", "center-a"), req)
	assert.True(t, errors.Is(err, appErrors.ErrInvalidTimeRange))
	assert.Empty(t, store.claims)
}

func TestClaimServiceSubmitSurvivesAuditFailure(t *testing.T) {
	audit := &auditStub{err: errors.New("audit down")}
	svc := newClaimServiceForTest(newClaimStoreStub(), audit)
	_, err := svc.Submit(context.Background(), lecturer("lect-1", "center-a"), teachingRequest())
	require.NoError(t, err)
}

func TestClaimServiceSubmitStoreFailure(t *testing.T) {
	store := newClaimStoreStub()
	store.createErr = errors.New("tx aborted")
	svc := newClaimServiceForTest(store, nil)
	_, err := svc.Submit(context.Background(), lecturer("lect-1", "center-a"), teachingRequest())
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}

func TestClaimServiceListPagesInStore(t *testing.T) {
	store := newClaimStoreStub(
		teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow),
		teachingClaim("c2", "lect-2", "center-a", models.ClaimStatusApproved, 1, fixedNow.Add(time.Hour)),
		teachingClaim("c3", "lect-1", "center-b", models.ClaimStatusPending, 1, fixedNow.Add(2*time.Hour)),
	)
	svc := newClaimServiceForTest(store, nil)

	claims, page, err := svc.List(context.Background(), registry("r"), dto.ClaimQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "c1", claims[0].ID)
	assert.Equal(t, 3, page.TotalCount)
	require.Len(t, store.filters, 1)
	assert.Equal(t, 2, store.filters[0].Limit)
	assert.Equal(t, 2, store.filters[0].Offset)

	claims, page, err = svc.List(context.Background(), registry("r"), dto.ClaimQuery{Page: 5, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, claims)
	assert.Equal(t, 3, page.TotalCount)
	assert.Len(t, store.filters, 1)
}

func TestClaimServiceGet(t *testing.T) {
	store := newClaimStoreStub(teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow))
	svc := newClaimServiceForTest(store, nil)

	claim, err := svc.Get(context.Background(), coordinator("co", "center-a"), "c1")
	require.NoError(t, err)
	assert.Equal(t, "c1", claim.ID)

	_, err = svc.Get(context.Background(), coordinator("co", "center-b"), "c1")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Get(context.Background(), registry("r"), "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestClaimServiceListScopesAndPaginates(t *testing.T) {
	store := newClaimStoreStub(
		teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow),
		teachingClaim("c2", "lect-2", "center-a", models.ClaimStatusApproved, 1, fixedNow),
		teachingClaim("c3", "lect-1", "center-b", models.ClaimStatusPending, 1, fixedNow),
	)
	svc := newClaimServiceForTest(store, nil)

	claims, page, err := svc.List(context.Background(), staff("st", "center-a"), dto.ClaimQuery{})
	require.NoError(t, err)
	assert.Len(t, claims, 2)
	assert.Equal(t, 2, page.TotalCount)
	for _, c := range claims {
		assert.Equal(t, "center-a", c.CenterID)
	}

	claims, _, err = svc.List(context.Background(), lecturer("lect-1", "center-a"), dto.ClaimQuery{})
	require.NoError(t, err)
	assert.Len(t, claims, 2)

	claims, page, err = svc.List(context.Background(), registry("r"), dto.ClaimQuery{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Len(t, claims, 1)
	assert.Equal(t, 3, page.TotalCount)

	claims, _, err = svc.List(context.Background(), staff("st"), dto.ClaimQuery{})
	require.NoError(t, err)
	assert.Empty(t, claims)

	claims, _, err = svc.List(context.Background(), registry("r"), dto.ClaimQuery{Year: 2024, Month: 13})
	require.NoError(t, err)
	assert.Empty(t, claims)
}

func TestClaimServiceProcessApproves(t *testing.T) {
	store := newClaimStoreStub(teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow))
	audit := &auditStub{}
	svc := newClaimServiceForTest(store, audit)

	claim, err := svc.Process(context.Background(), coordinator("co", "center-a"), "c1", dto.ProcessClaimRequest{Status: models.ClaimStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.ClaimStatusApproved, claim.Status)
	require.NotNil(t, claim.ProcessedByID)
	assert.Equal(t, "co", *claim.ProcessedByID)
	require.NotNil(t, claim.ProcessedAt)
	assert.Equal(t, fixedNow, *claim.ProcessedAt)

	stored, _ := store.GetByID(context.Background(), "c1")
	assert.Equal(t, models.ClaimStatusApproved, stored.Status)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionClaimProcess, audit.logs[0].Action)
}

func TestClaimServiceProcessGuards(t *testing.T) {
	store := newClaimStoreStub(
		teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow),
		teachingClaim("done", "lect-1", "center-a", models.ClaimStatusRejected, 1, fixedNow),
	)
	svc := newClaimServiceForTest(store, nil)
	ctx := context.Background()
	approve := dto.ProcessClaimRequest{Status: models.ClaimStatusApproved}

	_, err := svc.Process(ctx, registry("r"), "missing", approve)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Process(ctx, lecturer("lect-1", "center-a"), "c1", approve)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Process(ctx, staff("st"), "c1", approve)
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	_, err = svc.Process(ctx, registry("r"), "c1", dto.ProcessClaimRequest{Status: models.ClaimStatusPending})
	requireAppError(t, err, "VALIDATION_ERROR", "status")

	_, err = svc.Process(ctx, registry("r"), "done", approve)
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyProcessed))
	stored, _ := store.GetByID(ctx, "done")
	assert.Equal(t, models.ClaimStatusRejected, stored.Status)
}

func TestClaimServiceProcessConcurrentSingleWinner(t *testing.T) {
	store := newClaimStoreStub(teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow))
	svc := newClaimServiceForTest(store, nil)

	const workers = 16
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := models.ClaimStatusApproved
			if i%2 == 1 {
				status = models.ClaimStatusRejected
			}
			<-start
			_, err := svc.Process(context.Background(), registry("r"), "c1", dto.ProcessClaimRequest{Status: status})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, appErrors.ErrAlreadyProcessed):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, workers-1, conflicts)
}

func TestClaimServiceProcessLostRaceReportsAlreadyProcessed(t *testing.T) {
	store := newClaimStoreStub(teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow))
	svc := newClaimServiceForTest(store, nil)
	// another processor wins between the read and the conditional write
	racing := &racingStore{claimStoreStub: store}
	svc.repo = racing

	_, err := svc.Process(context.Background(), registry("r"), "c1", dto.ProcessClaimRequest{Status: models.ClaimStatusRejected})
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyProcessed))
	stored, _ := store.GetByID(context.Background(), "c1")
	assert.Equal(t, models.ClaimStatusApproved, stored.Status)
	assert.Equal(t, "winner", *stored.ProcessedByID)
}

type racingStore struct {
	*claimStoreStub
	once sync.Once
}

func (r *racingStore) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	claim, err := r.claimStoreStub.GetByID(ctx, id)
	r.once.Do(func() {
		r.claimStoreStub.mu.Lock()
		c := r.claimStoreStub.claims[id]
		c.Status = models.ClaimStatusApproved
		c.ProcessedByID = strPtr("winner")
		c.ProcessedAt = &fixedNow
		r.claimStoreStub.mu.Unlock()
	})
	return claim, err
}

func TestClaimServiceDelete(t *testing.T) {
	store := newClaimStoreStub(teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusApproved, 1, fixedNow))
	audit := &auditStub{}
	svc := newClaimServiceForTest(store, audit)
	ctx := context.Background()

	err := svc.Delete(ctx, coordinator("co", "center-a"), "c1")
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	require.NoError(t, svc.Delete(ctx, registry("r"), "c1"))
	assert.Empty(t, store.claims)
	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionClaimDelete, audit.logs[0].Action)

	err = svc.Delete(ctx, registry("r"), "c1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestProcessedFieldsTrackStatus(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := newClaimStoreStub(teachingClaim("c1", "lect-1", "center-a", models.ClaimStatusPending, 1, fixedNow))
		svc := newClaimServiceForTest(store, nil)
		attempts := rapid.SliceOfN(rapid.SampledFrom([]models.ClaimStatus{
			models.ClaimStatusApproved, models.ClaimStatusRejected, models.ClaimStatusPending,
		}), 1, 5).Draw(t, "attempts")

		var first models.ClaimStatus
		for _, status := range attempts {
			_, err := svc.Process(context.Background(), registry("r"), "c1", dto.ProcessClaimRequest{Status: status})
			if err == nil && first == "" {
				first = status
			}
			stored, _ := store.GetByID(context.Background(), "c1")
			pending := stored.Status == models.ClaimStatusPending
			if pending != (stored.ProcessedByID == nil) || pending != (stored.ProcessedAt == nil) {
				t.Fatalf("status %s inconsistent with processed fields", stored.Status)
			}
			if first != "" && stored.Status != first {
				t.Fatalf("terminal status %s overwritten by %s", first, stored.Status)
			}
		}
	})
}

func TestLifecycleScenario(t *testing.T) {
	ctx := context.Background()
	store := newClaimStoreStub()
	svc := newClaimServiceForTest(store, nil)
	summaries := NewSummaryService(store, centerStub{}, NewAuthorizationResolver(), nil)

	lect := lecturer("lect-1", "center-a")
	claim, err := svc.Submit(ctx, lect, teachingRequest())
	require.NoError(t, err)
	assert.Equal(t, 2.5, claim.Teaching.TeachingHours)

	query := dto.LecturerSummaryQuery{LecturerID: "lect-1", Year: 2024, Month: 3}
	summary, err := summaries.Lecturer(ctx, lect, query)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Pending)
	assert.Equal(t, 0.0, summary.TotalTeachingHours)

	coord := coordinator("co", "center-b")
	_, err = svc.Process(ctx, coord, claim.ID, dto.ProcessClaimRequest{Status: models.ClaimStatusApproved})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	coord.CoordinatedCenterID = strPtr("center-a")
	_, err = svc.Process(ctx, coord, claim.ID, dto.ProcessClaimRequest{Status: models.ClaimStatusApproved})
	require.NoError(t, err)

	_, err = svc.Process(ctx, staff("st", "center-a"), claim.ID, dto.ProcessClaimRequest{Status: models.ClaimStatusApproved})
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyProcessed))

	summary, err = summaries.Lecturer(ctx, lect, query)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Approved)
	assert.Equal(t, 2.5, summary.TotalTeachingHours)

	grouped, err := summaries.Centers(ctx, staff("st"), dto.CenterSummaryQuery{Year: 2024, Month: 3})
	require.NoError(t, err)
	assert.NotNil(t, grouped)
	assert.Empty(t, grouped)
}
