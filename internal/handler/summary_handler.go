package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	"github.com/noah-isme/claims-api/internal/service"
	"github.com/noah-isme/claims-api/pkg/export"
	"github.com/noah-isme/claims-api/pkg/response"
)

type summaryService interface {
	Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery) (*models.Summary, error)
	Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery) ([]models.CenterSummary, error)
}

type exportService interface {
	Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery, format export.Format) (*service.ExportDocument, error)
	Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery, format export.Format) (*service.ExportDocument, error)
}

// SummaryHandler exposes the monthly reporting endpoints.
type SummaryHandler struct {
	summaries summaryService
	exports   exportService
	now       func() time.Time
}

// NewSummaryHandler builds a new handler. exports may be nil when exports are disabled.
func NewSummaryHandler(summaries summaryService, exports exportService) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, exports: exports, now: func() time.Time { return time.Now().UTC() }}
}

// Lecturer godoc
// @Summary Monthly summary for a lecturer
// @Tags Summaries
// @Produce json
// @Param lecturerId path string true "Lecturer ID"
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Param claimType query string false "Restrict listed claims to one type"
// @Success 200 {object} response.Envelope
// @Router /summaries/lecturers/{lecturerId} [get]
func (h *SummaryHandler) Lecturer(c *gin.Context) {
	query, err := h.lecturerQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	summary, err := h.summaries.Lecturer(c.Request.Context(), actorFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Centers godoc
// @Summary Monthly approved totals per center
// @Tags Summaries
// @Produce json
// @Param year query int false "Year (defaults to current)"
// @Param month query int false "Month 1-12 (defaults to current)"
// @Param centerId query string false "Single center within scope"
// @Success 200 {object} response.Envelope
// @Router /summaries/centers [get]
func (h *SummaryHandler) Centers(c *gin.Context) {
	query, err := h.centerQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.summaries.Centers(c.Request.Context(), actorFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ExportLecturer godoc
// @Summary Download a lecturer summary
// @Tags Summaries
// @Produce text/csv,application/pdf
// @Param lecturerId path string true "Lecturer ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /summaries/lecturers/{lecturerId}/export [get]
func (h *SummaryHandler) ExportLecturer(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	query, err := h.lecturerQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.Lecturer(c.Request.Context(), actorFromContext(c), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDocument(c, doc)
}

// ExportCenters godoc
// @Summary Download the grouped center summary
// @Tags Summaries
// @Produce text/csv,application/pdf
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /summaries/centers/export [get]
func (h *SummaryHandler) ExportCenters(c *gin.Context) {
	format, err := service.ParseFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	query, err := h.centerQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	doc, err := h.exports.Centers(c.Request.Context(), actorFromContext(c), query, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	sendDocument(c, doc)
}

func (h *SummaryHandler) lecturerQuery(c *gin.Context) (dto.LecturerSummaryQuery, error) {
	year, month, err := period(c, h.now())
	if err != nil {
		return dto.LecturerSummaryQuery{}, err
	}
	claimType, err := claimTypeQuery(c)
	if err != nil {
		return dto.LecturerSummaryQuery{}, err
	}
	return dto.LecturerSummaryQuery{
		LecturerID: strings.TrimSpace(c.Param("lecturerId")),
		Year:       year,
		Month:      month,
		ClaimType:  claimType,
	}, nil
}

func (h *SummaryHandler) centerQuery(c *gin.Context) (dto.CenterSummaryQuery, error) {
	year, month, err := period(c, h.now())
	if err != nil {
		return dto.CenterSummaryQuery{}, err
	}
	return dto.CenterSummaryQuery{Year: year, Month: month, CenterID: strings.TrimSpace(c.Query("centerId"))}, nil
}

func sendDocument(c *gin.Context, doc *service.ExportDocument) {
	response.Attachment(c, doc.Filename, doc.ContentType, doc.Data)
}
