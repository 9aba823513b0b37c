package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/claims-api/internal/models"
)

const claimColumns = `id, submitted_by_id, center_id, claim_type, status, submitted_at, processed_by_id, processed_at,
       course_code, course_title, teaching_date, teaching_start_time, teaching_end_time, teaching_hours,
       outbound_date, outbound_from, outbound_to, return_date, return_from, return_to,
       outbound_distance_km, return_distance_km, total_distance_km,
       transport_type, origin, destination, transport_amount, registration_number, cubic_capacity,
       thesis_type, supervision_rank, exam_course_code, exam_date`

// claimRow is the flat storage shape of every claim variant.
type claimRow struct {
	ID            string             `db:"id"`
	SubmittedByID string             `db:"submitted_by_id"`
	CenterID      string             `db:"center_id"`
	ClaimType     models.ClaimType   `db:"claim_type"`
	Status        models.ClaimStatus `db:"status"`
	SubmittedAt   time.Time          `db:"submitted_at"`
	ProcessedByID *string            `db:"processed_by_id"`
	ProcessedAt   *time.Time         `db:"processed_at"`

	CourseCode        *string      `db:"course_code"`
	CourseTitle       *string      `db:"course_title"`
	TeachingDate      *models.Date `db:"teaching_date"`
	TeachingStartTime *string      `db:"teaching_start_time"`
	TeachingEndTime   *string      `db:"teaching_end_time"`
	TeachingHours     *float64     `db:"teaching_hours"`

	OutboundDate       *models.Date `db:"outbound_date"`
	OutboundFrom       *string      `db:"outbound_from"`
	OutboundTo         *string      `db:"outbound_to"`
	ReturnDate         *models.Date `db:"return_date"`
	ReturnFrom         *string      `db:"return_from"`
	ReturnTo           *string      `db:"return_to"`
	OutboundDistanceKm *float64     `db:"outbound_distance_km"`
	ReturnDistanceKm   *float64     `db:"return_distance_km"`
	TotalDistanceKm    *float64     `db:"total_distance_km"`

	TransportType      *string  `db:"transport_type"`
	Origin             *string  `db:"origin"`
	Destination        *string  `db:"destination"`
	TransportAmount    *float64 `db:"transport_amount"`
	RegistrationNumber *string  `db:"registration_number"`
	CubicCapacity      *int     `db:"cubic_capacity"`

	ThesisType      *string      `db:"thesis_type"`
	SupervisionRank *string      `db:"supervision_rank"`
	ExamCourseCode  *string      `db:"exam_course_code"`
	ExamDate        *models.Date `db:"exam_date"`
}

// ClaimRepository persists claims and their supervised students.
type ClaimRepository struct {
	db *sqlx.DB
}

// NewClaimRepository constructs the repository.
func NewClaimRepository(db *sqlx.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// Create inserts the claim and, for supervision claims, all of its students in a single transaction.
func (r *ClaimRepository) Create(ctx context.Context, claim *models.Claim) (err error) {
	if claim == nil {
		return fmt.Errorf("claim payload is nil")
	}
	if claim.ID == "" {
		claim.ID = uuid.NewString()
	}
	if claim.Status == "" {
		claim.Status = models.ClaimStatusPending
	}
	if claim.SubmittedAt.IsZero() {
		claim.SubmittedAt = time.Now().UTC()
	}
	var students []models.SupervisedStudent
	if claim.IsSupervision() && claim.Thesis.Supervision != nil {
		students = claim.Thesis.Supervision.Students
		for i := range students {
			if students[i].ID == "" {
				students[i].ID = uuid.NewString()
			}
			students[i].ClaimID = claim.ID
			students[i].Position = i
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin claim transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertClaim = `INSERT INTO claims (` + claimColumns + `)
	VALUES (:id, :submitted_by_id, :center_id, :claim_type, :status, :submitted_at, :processed_by_id, :processed_at,
	:course_code, :course_title, :teaching_date, :teaching_start_time, :teaching_end_time, :teaching_hours,
	:outbound_date, :outbound_from, :outbound_to, :return_date, :return_from, :return_to,
	:outbound_distance_km, :return_distance_km, :total_distance_km,
	:transport_type, :origin, :destination, :transport_amount, :registration_number, :cubic_capacity,
	:thesis_type, :supervision_rank, :exam_course_code, :exam_date)`
	if _, err = tx.NamedExecContext(ctx, insertClaim, toRow(claim)); err != nil {
		return fmt.Errorf("insert claim: %w", err)
	}

	if len(students) > 0 {
		const insertStudents = `INSERT INTO supervised_students (id, claim_id, position, student_name, thesis_title)
	VALUES (:id, :claim_id, :position, :student_name, :thesis_title)`
		if _, err = tx.NamedExecContext(ctx, insertStudents, students); err != nil {
			return fmt.Errorf("insert supervised students: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit claim: %w", err)
	}
	return nil
}

// GetByID fetches a claim by identifier including its students.
func (r *ClaimRepository) GetByID(ctx context.Context, id string) (*models.Claim, error) {
	query := `SELECT ` + claimColumns + ` FROM claims WHERE id = $1`
	var row claimRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	claims := []models.Claim{row.toModel()}
	if err := r.attachStudents(ctx, claims); err != nil {
		return nil, err
	}
	return &claims[0], nil
}

// List returns claims matching the filter, latest submission first. A Limit of zero or less returns every match.
func (r *ClaimRepository) List(ctx context.Context, filter models.ClaimFilter) ([]models.Claim, error) {
	if filter.CenterIDs != nil && len(filter.CenterIDs) == 0 {
		return []models.Claim{}, nil
	}

	where, args := claimWhere(filter)
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + claimColumns + ` FROM claims`)
	builder.WriteString(where)
	builder.WriteString(" ORDER BY submitted_at DESC, id")

	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset))
	}

	var rows []claimRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	claims := make([]models.Claim, len(rows))
	for i := range rows {
		claims[i] = rows[i].toModel()
	}
	if err := r.attachStudents(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Count returns how many claims match the filter, ignoring Limit and Offset.
func (r *ClaimRepository) Count(ctx context.Context, filter models.ClaimFilter) (int, error) {
	if filter.CenterIDs != nil && len(filter.CenterIDs) == 0 {
		return 0, nil
	}
	where, args := claimWhere(filter)
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM claims`+where, args...); err != nil {
		return 0, fmt.Errorf("count claims: %w", err)
	}
	return total, nil
}

func claimWhere(filter models.ClaimFilter) (string, []interface{}) {
	args := make([]interface{}, 0, 8)
	conditions := make([]string, 0, 6)
	if filter.SubmittedByID != "" {
		args = append(args, filter.SubmittedByID)
		conditions = append(conditions, fmt.Sprintf("submitted_by_id = $%d", len(args)))
	}
	if len(filter.CenterIDs) > 0 {
		placeholders := make([]string, len(filter.CenterIDs))
		for i, centerID := range filter.CenterIDs {
			args = append(args, centerID)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("center_id IN (%s)", strings.Join(placeholders, ",")))
	}
	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		conditions = append(conditions, fmt.Sprintf("claim_type = $%d", len(args)))
	}
	if filter.SubmittedFrom != nil {
		args = append(args, filter.SubmittedFrom.UTC())
		conditions = append(conditions, fmt.Sprintf("submitted_at >= $%d", len(args)))
	}
	if filter.SubmittedUntil != nil {
		args = append(args, filter.SubmittedUntil.UTC())
		conditions = append(conditions, fmt.Sprintf("submitted_at < $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// TransitionParams describes a single status change out of PENDING.
type TransitionParams struct {
	ID            string
	Status        models.ClaimStatus
	ProcessedByID string
	ProcessedAt   time.Time
}

// Transition applies the status change only if the claim is still PENDING. It returns
// sql.ErrNoRows when no row matched, i.e. the claim is missing or already processed.
func (r *ClaimRepository) Transition(ctx context.Context, params TransitionParams) error {
	const query = `UPDATE claims SET status = $1, processed_by_id = $2, processed_at = $3
	WHERE id = $4 AND status = $5`
	result, err := r.db.ExecContext(ctx, query,
		params.Status,
		params.ProcessedByID,
		params.ProcessedAt.UTC(),
		params.ID,
		models.ClaimStatusPending,
	)
	if err != nil {
		return fmt.Errorf("update claim status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check claim update rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a claim and its students regardless of status.
func (r *ClaimRepository) Delete(ctx context.Context, id string) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin claim delete: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM supervised_students WHERE claim_id = $1`, id); err != nil {
		return fmt.Errorf("delete supervised students: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM claims WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete claim: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim rows affected: %w", err)
	}
	if affected == 0 {
		err = sql.ErrNoRows
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit claim delete: %w", err)
	}
	return nil
}

func (r *ClaimRepository) attachStudents(ctx context.Context, claims []models.Claim) error {
	index := make(map[string]*models.SupervisionDetails)
	ids := make([]string, 0)
	for i := range claims {
		if claims[i].IsSupervision() && claims[i].Thesis.Supervision != nil {
			index[claims[i].ID] = claims[i].Thesis.Supervision
			ids = append(ids, claims[i].ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In(`SELECT id, claim_id, position, student_name, thesis_title
	FROM supervised_students WHERE claim_id IN (?) ORDER BY claim_id, position`, ids)
	if err != nil {
		return fmt.Errorf("build supervised students query: %w", err)
	}
	var students []models.SupervisedStudent
	if err := r.db.SelectContext(ctx, &students, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("list supervised students: %w", err)
	}
	for _, student := range students {
		if supervision, ok := index[student.ClaimID]; ok {
			supervision.Students = append(supervision.Students, student)
		}
	}
	return nil
}

func toRow(c *models.Claim) claimRow {
	row := claimRow{
		ID:            c.ID,
		SubmittedByID: c.SubmittedByID,
		CenterID:      c.CenterID,
		ClaimType:     c.Type,
		Status:        c.Status,
		SubmittedAt:   c.SubmittedAt.UTC(),
		ProcessedByID: c.ProcessedByID,
		ProcessedAt:   c.ProcessedAt,
	}
	switch c.Type {
	case models.ClaimTypeTeaching:
		if t := c.Teaching; t != nil {
			date := t.TeachingDate
			hours := t.TeachingHours
			row.CourseCode = nullable(t.CourseCode)
			row.CourseTitle = nullable(t.CourseTitle)
			row.TeachingDate = &date
			row.TeachingStartTime = nullable(t.StartTime)
			row.TeachingEndTime = nullable(t.EndTime)
			row.TeachingHours = &hours
			if tr := t.Transport; tr != nil {
				row.OutboundDate = tr.OutboundDate
				row.OutboundFrom = nullable(tr.OutboundFrom)
				row.OutboundTo = nullable(tr.OutboundTo)
				row.ReturnDate = tr.ReturnDate
				row.ReturnFrom = nullable(tr.ReturnFrom)
				row.ReturnTo = nullable(tr.ReturnTo)
				row.OutboundDistanceKm = tr.OutboundDistanceKm
				row.ReturnDistanceKm = tr.ReturnDistanceKm
				row.TotalDistanceKm = tr.TotalDistanceKm
			}
		}
	case models.ClaimTypeTransportation:
		if t := c.Transportation; t != nil {
			amount := t.Amount
			row.TransportType = nullable(string(t.TransportType))
			row.Origin = nullable(t.Origin)
			row.Destination = nullable(t.Destination)
			row.TransportAmount = &amount
			row.RegistrationNumber = t.RegistrationNumber
			row.CubicCapacity = t.CubicCapacity
		}
	case models.ClaimTypeThesisProject:
		if t := c.Thesis; t != nil {
			row.ThesisType = nullable(string(t.ThesisType))
			if t.Supervision != nil {
				row.SupervisionRank = nullable(t.Supervision.Rank)
			}
			if t.Examination != nil {
				date := t.Examination.ExamDate
				row.ExamCourseCode = nullable(t.Examination.CourseCode)
				row.ExamDate = &date
			}
		}
	}
	return row
}

func (row claimRow) toModel() models.Claim {
	claim := models.Claim{
		ID:            row.ID,
		SubmittedByID: row.SubmittedByID,
		CenterID:      row.CenterID,
		Type:          row.ClaimType,
		Status:        row.Status,
		SubmittedAt:   row.SubmittedAt.UTC(),
		ProcessedByID: row.ProcessedByID,
		ProcessedAt:   row.ProcessedAt,
	}
	switch row.ClaimType {
	case models.ClaimTypeTeaching:
		teaching := &models.TeachingDetails{
			CourseCode:    deref(row.CourseCode),
			CourseTitle:   deref(row.CourseTitle),
			StartTime:     deref(row.TeachingStartTime),
			EndTime:       deref(row.TeachingEndTime),
			TeachingHours: derefFloat(row.TeachingHours),
		}
		if row.TeachingDate != nil {
			teaching.TeachingDate = *row.TeachingDate
		}
		if row.hasTransport() {
			teaching.Transport = &models.TeachingTransport{
				OutboundDate:       row.OutboundDate,
				OutboundFrom:       deref(row.OutboundFrom),
				OutboundTo:         deref(row.OutboundTo),
				ReturnDate:         row.ReturnDate,
				ReturnFrom:         deref(row.ReturnFrom),
				ReturnTo:           deref(row.ReturnTo),
				OutboundDistanceKm: row.OutboundDistanceKm,
				ReturnDistanceKm:   row.ReturnDistanceKm,
				TotalDistanceKm:    row.TotalDistanceKm,
			}
		}
		claim.Teaching = teaching
	case models.ClaimTypeTransportation:
		claim.Transportation = &models.TransportationDetails{
			TransportType:      models.TransportType(deref(row.TransportType)),
			Origin:             deref(row.Origin),
			Destination:        deref(row.Destination),
			Amount:             derefFloat(row.TransportAmount),
			RegistrationNumber: row.RegistrationNumber,
			CubicCapacity:      row.CubicCapacity,
		}
	case models.ClaimTypeThesisProject:
		thesis := &models.ThesisDetails{ThesisType: models.ThesisType(deref(row.ThesisType))}
		switch thesis.ThesisType {
		case models.ThesisTypeSupervision:
			thesis.Supervision = &models.SupervisionDetails{
				Rank:     deref(row.SupervisionRank),
				Students: []models.SupervisedStudent{},
			}
		case models.ThesisTypeExamination:
			exam := &models.ExaminationDetails{CourseCode: deref(row.ExamCourseCode)}
			if row.ExamDate != nil {
				exam.ExamDate = *row.ExamDate
			}
			thesis.Examination = exam
		}
		claim.Thesis = thesis
	}
	return claim
}

func (row claimRow) hasTransport() bool {
	return row.OutboundDate != nil || row.OutboundFrom != nil || row.OutboundTo != nil ||
		row.ReturnDate != nil || row.ReturnFrom != nil || row.ReturnTo != nil
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

func derefFloat(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}
