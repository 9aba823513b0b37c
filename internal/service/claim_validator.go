package service

import (
	"context"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/claims-api/internal/dto"
	"github.com/noah-isme/claims-api/internal/models"
	appErrors "github.com/noah-isme/claims-api/pkg/errors"
)

type distanceResolver interface {
	DistanceKm(ctx context.Context, from, to string) *float64
}

type teachingInput struct {
	CourseCode   string `json:"courseCode" validate:"required"`
	CourseTitle  string `json:"courseTitle" validate:"required"`
	TeachingDate string `json:"teachingDate" validate:"required"`
	StartTime    string `json:"teachingStartTime" validate:"required"`
	EndTime      string `json:"teachingEndTime" validate:"required"`
}

type transportationInput struct {
	TransportType string   `json:"transportType" validate:"required"`
	Origin        string   `json:"origin" validate:"required"`
	Destination   string   `json:"destination" validate:"required"`
	Amount        *float64 `json:"transportAmount" validate:"required,gt=0"`
}

type privateVehicleInput struct {
	RegistrationNumber string `json:"registrationNumber" validate:"required"`
	CubicCapacity      *int   `json:"cubicCapacity" validate:"required,gt=0"`
}

type thesisInput struct {
	ThesisType string `json:"thesisType" validate:"required"`
}

type supervisionInput struct {
	Rank string `json:"supervisionRank" validate:"required"`
}

type examinationInput struct {
	CourseCode string `json:"examCourseCode" validate:"required"`
	ExamDate   string `json:"examDate" validate:"required"`
}

// ClaimValidator turns a raw submission into a fully derived claim payload.
type ClaimValidator struct {
	validate *validator.Validate
	distance distanceResolver
}

// NewClaimValidator builds a validator. A nil distance resolver leaves every leg unresolved.
func NewClaimValidator(validate *validator.Validate, distance distanceResolver) *ClaimValidator {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &ClaimValidator{validate: validate, distance: distance}
}

// Build validates req for the given submitter and center and returns a PENDING claim ready to persist.
func (v *ClaimValidator) Build(ctx context.Context, submitterID, centerID string, req dto.SubmitClaimRequest) (*models.Claim, error) {
	claimType := models.ClaimType(strings.ToUpper(strings.TrimSpace(req.ClaimType)))
	if claimType == "" {
		return nil, appErrors.WithField(appErrors.ErrMissingField, "claimType")
	}
	if !claimType.Valid() {
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unsupported claim type"), "claimType")
	}

	claim := &models.Claim{
		SubmittedByID: submitterID,
		CenterID:      centerID,
		Type:          claimType,
		Status:        models.ClaimStatusPending,
	}

	var err error
	switch claimType {
	case models.ClaimTypeTeaching:
		claim.Teaching, err = v.teaching(ctx, req)
	case models.ClaimTypeTransportation:
		claim.Transportation, err = v.transportation(req)
	case models.ClaimTypeThesisProject:
		claim.Thesis, err = v.thesis(req)
	}
	if err != nil {
		return nil, err
	}
	return claim, nil
}

func (v *ClaimValidator) teaching(ctx context.Context, req dto.SubmitClaimRequest) (*models.TeachingDetails, error) {
	in := teachingInput{
		CourseCode:   strings.TrimSpace(req.CourseCode),
		CourseTitle:  strings.TrimSpace(req.CourseTitle),
		TeachingDate: strings.TrimSpace(req.TeachingDate),
		StartTime:    strings.TrimSpace(req.TeachingStartTime),
		EndTime:      strings.TrimSpace(req.TeachingEndTime),
	}
	if err := v.check(in); err != nil {
		return nil, err
	}
	date, err := parseDateField(in.TeachingDate, "teachingDate")
	if err != nil {
		return nil, err
	}
	hours, err := TeachingHours(date, in.StartTime, in.EndTime)
	if err != nil {
		return nil, err
	}

	details := &models.TeachingDetails{
		CourseCode:    in.CourseCode,
		CourseTitle:   in.CourseTitle,
		TeachingDate:  date,
		StartTime:     in.StartTime,
		EndTime:       in.EndTime,
		TeachingHours: hours,
	}
	if req.Transport != nil {
		transport, err := v.teachingTransport(ctx, *req.Transport)
		if err != nil {
			return nil, err
		}
		details.Transport = transport
	}
	return details, nil
}

func (v *ClaimValidator) teachingTransport(ctx context.Context, req dto.TeachingTransportRequest) (*models.TeachingTransport, error) {
	t := &models.TeachingTransport{
		OutboundFrom: strings.TrimSpace(req.OutboundFrom),
		OutboundTo:   strings.TrimSpace(req.OutboundTo),
		ReturnFrom:   strings.TrimSpace(req.ReturnFrom),
		ReturnTo:     strings.TrimSpace(req.ReturnTo),
	}
	if t.OutboundFrom == "" && t.OutboundTo == "" && t.ReturnFrom == "" && t.ReturnTo == "" {
		return nil, nil
	}

	var err error
	if t.OutboundDate, err = optionalDate(req.OutboundDate, "transport.outboundDate"); err != nil {
		return nil, err
	}
	if t.ReturnDate, err = optionalDate(req.ReturnDate, "transport.returnDate"); err != nil {
		return nil, err
	}

	if t.OutboundFrom != "" && t.OutboundTo != "" {
		t.OutboundDistanceKm = v.lookup(ctx, t.OutboundFrom, t.OutboundTo)
	}
	if t.ReturnFrom != "" && t.ReturnTo != "" {
		t.ReturnDistanceKm = v.lookup(ctx, t.ReturnFrom, t.ReturnTo)
	}
	t.TotalDistanceKm = TotalDistance(t.OutboundDistanceKm, t.ReturnDistanceKm)
	return t, nil
}

func (v *ClaimValidator) lookup(ctx context.Context, from, to string) *float64 {
	if v.distance == nil {
		return nil
	}
	return v.distance.DistanceKm(ctx, from, to)
}

func (v *ClaimValidator) transportation(req dto.SubmitClaimRequest) (*models.TransportationDetails, error) {
	in := transportationInput{
		TransportType: strings.ToUpper(strings.TrimSpace(req.TransportType)),
		Origin:        strings.TrimSpace(req.Origin),
		Destination:   strings.TrimSpace(req.Destination),
		Amount:        req.TransportAmount,
	}
	if err := v.check(in); err != nil {
		return nil, err
	}

	transportType := models.TransportType(in.TransportType)
	details := &models.TransportationDetails{
		TransportType: transportType,
		Origin:        in.Origin,
		Destination:   in.Destination,
		Amount:        roundTo2(*in.Amount),
	}
	if transportType != models.TransportTypePrivate {
		return details, nil
	}

	vehicle := privateVehicleInput{
		RegistrationNumber: strings.TrimSpace(req.RegistrationNumber),
		CubicCapacity:      req.CubicCapacity,
	}
	if err := v.check(vehicle); err != nil {
		return nil, err
	}
	capacity := *vehicle.CubicCapacity
	details.RegistrationNumber = &vehicle.RegistrationNumber
	details.CubicCapacity = &capacity
	return details, nil
}

func (v *ClaimValidator) thesis(req dto.SubmitClaimRequest) (*models.ThesisDetails, error) {
	in := thesisInput{ThesisType: strings.ToUpper(strings.TrimSpace(req.ThesisType))}
	if err := v.check(in); err != nil {
		return nil, err
	}

	thesisType := models.ThesisType(in.ThesisType)
	switch thesisType {
	case models.ThesisTypeSupervision:
		sup := supervisionInput{Rank: strings.TrimSpace(req.SupervisionRank)}
		if err := v.check(sup); err != nil {
			return nil, err
		}
		return &models.ThesisDetails{
			ThesisType: thesisType,
			Supervision: &models.SupervisionDetails{
				Rank:     sup.Rank,
				Students: completeStudents(req.Students),
			},
		}, nil
	case models.ThesisTypeExamination:
		exam := examinationInput{
			CourseCode: strings.TrimSpace(req.ExamCourseCode),
			ExamDate:   strings.TrimSpace(req.ExamDate),
		}
		if err := v.check(exam); err != nil {
			return nil, err
		}
		date, err := parseDateField(exam.ExamDate, "examDate")
		if err != nil {
			return nil, err
		}
		return &models.ThesisDetails{
			ThesisType:  thesisType,
			Examination: &models.ExaminationDetails{CourseCode: exam.CourseCode, ExamDate: date},
		}, nil
	default:
		return nil, appErrors.WithField(appErrors.Clone(appErrors.ErrValidation, "unsupported thesis type"), "thesisType")
	}
}

// check runs struct validation and reports the first failing field.
func (v *ClaimValidator) check(input interface{}) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid claim payload")
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		return appErrors.WithField(appErrors.ErrMissingField, fe.Field())
	case "gt", "gte", "min":
		return appErrors.WithField(appErrors.ErrInvalidNumeric, fe.Field())
	default:
		return appErrors.WithField(appErrors.ErrValidation, fe.Field())
	}
}

func completeStudents(in []dto.SupervisedStudentRequest) []models.SupervisedStudent {
	students := make([]models.SupervisedStudent, 0, len(in))
	for _, s := range in {
		name := strings.TrimSpace(s.StudentName)
		title := strings.TrimSpace(s.ThesisTitle)
		if name == "" || title == "" {
			continue
		}
		students = append(students, models.SupervisedStudent{StudentName: name, ThesisTitle: title})
	}
	return students
}

// TeachingHours computes the session length in hours, rounded to two decimals. Both times are
// anchored to the same UTC calendar date.
func TeachingHours(date models.Date, start, end string) (float64, error) {
	sh, sm, err := parseClock(start)
	if err != nil {
		return 0, appErrors.WithField(appErrors.ErrInvalidTimeFormat, "teachingStartTime")
	}
	eh, em, err := parseClock(end)
	if err != nil {
		return 0, appErrors.WithField(appErrors.ErrInvalidTimeFormat, "teachingEndTime")
	}
	y, m, d := date.Date()
	startAt := time.Date(y, m, d, sh, sm, 0, 0, time.UTC)
	endAt := time.Date(y, m, d, eh, em, 0, 0, time.UTC)
	if !endAt.After(startAt) {
		return 0, appErrors.WithField(appErrors.ErrInvalidTimeRange, "teachingEndTime")
	}
	return roundTo2(endAt.Sub(startAt).Hours()), nil
}

// TotalDistance sums the legs that resolved. It is nil only when neither leg resolved.
func TotalDistance(legs ...*float64) *float64 {
	var (
		total    float64
		resolved bool
	)
	for _, leg := range legs {
		if leg == nil {
			continue
		}
		total += *leg
		resolved = true
	}
	if !resolved {
		return nil
	}
	total = roundTo2(total)
	return &total
}

func parseClock(raw string) (int, int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 || !twoDigits(parts[0]) || !twoDigits(parts[1]) {
		return 0, 0, errors.New("clock must be HH:MM")
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, errors.New("hour out of range")
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, errors.New("minute out of range")
	}
	return hour, minute, nil
}

func twoDigits(s string) bool {
	return len(s) == 2 && s[0] >= '0' && s[0] <= '9' && s[1] >= '0' && s[1] <= '9'
}

func parseDateField(raw, field string) (models.Date, error) {
	date, err := models.ParseDate(raw)
	if err != nil {
		return models.Date{}, appErrors.WithField(appErrors.Clone(appErrors.ErrInvalidTimeFormat, "date must be YYYY-MM-DD"), field)
	}
	return date, nil
}

func optionalDate(raw, field string) (*models.Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	date, err := parseDateField(raw, field)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func roundTo2(value float64) float64 {
	return math.Round(value*100) / 100
}
