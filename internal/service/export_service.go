package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
	"github.com/noah-isme/claims-api/pkg/export"
)

type summaryProvider interface {
	Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery) (*models.Summary, error)
	Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery) ([]models.CenterSummary, error)
}

// ExportDocument is a rendered summary ready to stream.
type ExportDocument struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders summaries as CSV or PDF tables.
type ExportService struct {
	summaries summaryProvider
	logger    *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(summaries summaryProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{summaries: summaries, logger: logger}
}

// ParseFormat validates a requested export format; empty means CSV.
func ParseFormat(raw string) (export.Format, error) {
	switch export.Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", export.FormatCSV:
		return export.FormatCSV, nil
	case export.FormatPDF:
		return export.FormatPDF, nil
	default:
		return "", appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"), "format")
	}
}

// Lecturer renders a lecturer's monthly summary.
func (s *ExportService) Lecturer(ctx context.Context, actor *models.Actor, query dto.LecturerSummaryQuery, format export.Format) (*ExportDocument, error) {
	summary, err := s.summaries.Lecturer(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("lecturer-%s-%04d-%02d.%s", summary.LecturerID, summary.Year, summary.Month, format)
	return s.render(format, name, LecturerTable(summary))
}

// Centers renders the grouped monthly summary.
func (s *ExportService) Centers(ctx context.Context, actor *models.Actor, query dto.CenterSummaryQuery, format export.Format) (*ExportDocument, error) {
	rows, err := s.summaries.Centers(ctx, actor, query)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("centers-%04d-%02d.%s", query.Year, query.Month, format)
	return s.render(format, name, CentersTable(query.Year, query.Month, rows))
}

func (s *ExportService) render(format export.Format, filename string, table export.Table) (*ExportDocument, error) {
	data, err := export.Render(format, table)
	if err != nil {
		s.logger.Error("render export failed", zap.String("filename", filename), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportDocument{Filename: filename, ContentType: format.ContentType(), Data: data}, nil
}

// LecturerTable flattens a lecturer summary into one row per listed claim plus a totals footer.
func LecturerTable(summary *models.Summary) export.Table {
	table := export.Table{
		Title:   fmt.Sprintf("Claims summary %04d-%02d for lecturer %s", summary.Year, summary.Month, summary.LecturerID),
		Columns: []string{"Claim", "Type", "Status", "Submitted", "Detail", "Hours", "Amount"},
		Rows:    make([][]string, 0, len(summary.Claims)),
	}
	for _, claim := range summary.Claims {
		hours, amount := "", ""
		if claim.Teaching != nil {
			hours = formatDecimal(claim.Teaching.TeachingHours)
		}
		if claim.Transportation != nil {
			amount = formatDecimal(claim.Transportation.Amount)
		}
		table.Rows = append(table.Rows, []string{
			claim.ID,
			string(claim.Type),
			string(claim.Status),
			claim.SubmittedAt.UTC().Format("2006-01-02"),
			claimDetail(claim),
			hours,
			amount,
		})
	}
	table.Footer = []string{
		fmt.Sprintf("%d claims", summary.TotalClaims),
		"",
		fmt.Sprintf("P%d/A%d/R%d", summary.Pending, summary.Approved, summary.Rejected),
		"",
		"approved totals",
		formatDecimal(summary.TotalTeachingHours),
		formatDecimal(summary.TotalTransportAmount),
	}
	return table
}

// CentersTable flattens the grouped summary into one row per center.
func CentersTable(year, month int, rows []models.CenterSummary) export.Table {
	table := export.Table{
		Title:   fmt.Sprintf("Approved claims by center %04d-%02d", year, month),
		Columns: []string{"Center", "Approved", "Teaching hours", "Transport amount", "Supervisions", "Examinations"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		name := row.CenterName
		if name == "" {
			name = row.CenterID
		}
		table.Rows = append(table.Rows, []string{
			name,
			strconv.Itoa(row.TotalClaims),
			formatDecimal(row.TotalTeachingHours),
			formatDecimal(row.TotalTransportAmount),
			strconv.Itoa(row.TotalThesisSupervisionUnits),
			strconv.Itoa(row.TotalThesisExaminationUnits),
		})
	}
	return table
}

func claimDetail(claim models.Claim) string {
	switch {
	case claim.Teaching != nil:
		return fmt.Sprintf("%s %s", claim.Teaching.CourseCode, claim.Teaching.CourseTitle)
	case claim.Transportation != nil:
		return fmt.Sprintf("%s to %s (%s)", claim.Transportation.Origin, claim.Transportation.Destination, claim.Transportation.TransportType)
	case claim.IsSupervision() && claim.Thesis.Supervision != nil:
		return fmt.Sprintf("supervision, %d students", len(claim.Thesis.Supervision.Students))
	case claim.IsExamination() && claim.Thesis.Examination != nil:
		return fmt.Sprintf("examination %s", claim.Thesis.Examination.CourseCode)
	default:
		return ""
	}
}

func formatDecimal(value float64) string {
	return strconv.FormatFloat(value, 'f', 2, 64)
}
