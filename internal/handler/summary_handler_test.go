package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/service"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
	"github.com/noah-isme/claims-api/pkg/export"
)

type summaryServiceMock struct {
	lecturerQuery dto.LecturerSummaryQuery
	centerQuery   dto.CenterSummaryQuery
	centersErr    error
}

func (m *summaryServiceMock) Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery) (*models.Summary, error) {
	m.lecturerQuery = query
	return &models.Summary{LecturerID: query.LecturerID, Year: query.Year, Month: query.Month, Claims: []models.Claim{}}, nil
}

func (m *summaryServiceMock) Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery) ([]models.CenterSummary, error) {
	m.centerQuery = query
	if m.centersErr != nil {
		return nil, m.centersErr
	}
	return []models.CenterSummary{}, nil
}

type exportServiceMock struct {
	format export.Format
}

func (m *exportServiceMock) Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery, format export.Format) (*service.ExportDocument, error) {
	m.format = format
	return &service.ExportDocument{Filename: "lecturer.csv", ContentType: format.ContentType(), Data: []byte("a,b\n")}, nil
}

func (m *exportServiceMock) Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery, format export.Format) (*service.ExportDocument, error) {
	m.format = format
	return &service.ExportDocument{Filename: "centers.pdf", ContentType: format.ContentType(), Data: []byte("%PDF-1.3")}, nil
}

var registryActor = &models.Actor{ID: "r", Role: models.RoleRegistry}

func TestSummaryHandlerLecturer(t *testing.T) {
	mockSvc := &summaryServiceMock{}
	handler := NewSummaryHandler(mockSvc, nil)
	c, w := newTestContext(http.MethodGet, "/summaries/lecturers/lect-1?year=2024&month=3&claimType=teaching", nil, registryActor)
	c.Params = gin.Params{{Key: "lecturerId", Value: "lect-1"}}
	handler.Lecturer(c)

	require.Equal(t, http.StatusOK, w.Code)
	q := mockSvc.lecturerQuery
	assert.Equal(t, "lect-1", q.LecturerID)
	assert.Equal(t, 2024, q.Year)
	assert.Equal(t, 3, q.Month)
	require.NotNil(t, q.ClaimType)
	assert.Equal(t, models.ClaimTypeTeaching, *q.ClaimType)
}

func TestSummaryHandlerDefaultsToCurrentMonth(t *testing.T) {
	mockSvc := &summaryServiceMock{}
	handler := NewSummaryHandler(mockSvc, nil)
	handler.now = func() time.Time { return time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC) }
	c, w := newTestContext(http.MethodGet, "/summaries/centers?centerId=a", nil, registryActor)
	handler.Centers(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, dto.CenterSummaryQuery{Year: 2025, Month: 7, CenterID: "a"}, mockSvc.centerQuery)
}

func TestSummaryHandlerCentersForbidden(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceMock{centersErr: appErrors.ErrForbidden}, nil)
	c, w := newTestContext(http.MethodGet, "/summaries/centers?centerId=b", nil, registryActor)
	handler.Centers(c)
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestSummaryHandlerRejectsBadMonth(t *testing.T) {
	handler := NewSummaryHandler(&summaryServiceMock{}, nil)
	c, w := newTestContext(http.MethodGet, "/summaries/centers?month=march", nil, registryActor)
	handler.Centers(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "month", decodeError(t, w).Field)
}

func TestSummaryHandlerExports(t *testing.T) {
	exports := &exportServiceMock{}
	handler := NewSummaryHandler(&summaryServiceMock{}, exports)

	c, w := newTestContext(http.MethodGet, "/summaries/lecturers/lect-1/export", nil, registryActor)
	c.Params = gin.Params{{Key: "lecturerId", Value: "lect-1"}}
	handler.ExportLecturer(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, export.FormatCSV, exports.format)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lecturer.csv")

	c, w = newTestContext(http.MethodGet, "/summaries/centers/export?format=pdf", nil, registryActor)
	handler.ExportCenters(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	c, w = newTestContext(http.MethodGet, "/summaries/centers/export?format=docx", nil, registryActor)
	handler.ExportCenters(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}
