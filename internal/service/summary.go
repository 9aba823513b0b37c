package service

import (
	"time"

	"github.com/noah-isme/claims-api/internal/models"
)

// PeriodWindow returns the UTC month [from, until). ok is false when year or month is out of range.
func PeriodWindow(year, month int) (from, until time.Time, ok bool) {
	if year < 1 || year > 9999 || month < 1 || month > 12 {
		return time.Time{}, time.Time{}, false
	}
	from = time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0), true
}

func inWindow(t, from, until time.Time) bool {
	t = t.UTC()
	return !t.Before(from) && t.Before(until)
}

// SummarizeLecturer rolls up one lecturer's month. Status counts and the two totals ignore the
// type filter; only the listed claims honour it. Totals come from APPROVED claims only.
func SummarizeLecturer(lecturerID string, year, month int, typeFilter *models.ClaimType, claims []models.Claim) models.Summary {
	summary := models.Summary{
		LecturerID:      lecturerID,
		Year:            year,
		Month:           month,
		ClaimTypeFilter: typeFilter,
		Claims:          []models.Claim{},
	}
	from, until, ok := PeriodWindow(year, month)
	if !ok {
		return summary
	}

	for _, claim := range claims {
		if claim.SubmittedByID != lecturerID || !inWindow(claim.SubmittedAt, from, until) {
			continue
		}
		summary.TotalClaims++
		switch claim.Status {
		case models.ClaimStatusPending:
			summary.Pending++
		case models.ClaimStatusApproved:
			summary.Approved++
			summary.TotalTeachingHours += teachingHoursOf(claim)
			summary.TotalTransportAmount += transportAmountOf(claim)
		case models.ClaimStatusRejected:
			summary.Rejected++
		}
		if typeFilter == nil || claim.Type == *typeFilter {
			summary.Claims = append(summary.Claims, claim)
		}
	}
	summary.TotalTeachingHours = roundTo2(summary.TotalTeachingHours)
	summary.TotalTransportAmount = roundTo2(summary.TotalTransportAmount)
	return summary
}

// SummarizeCenters aggregates APPROVED claims per center, keeping the order of centers. Every
// center appears even when it has nothing approved in the month.
func SummarizeCenters(centers []models.Center, year, month int, claims []models.Claim) []models.CenterSummary {
	result := make([]models.CenterSummary, len(centers))
	index := make(map[string]int, len(centers))
	for i, center := range centers {
		result[i] = models.CenterSummary{CenterID: center.ID, CenterName: center.Name, Year: year, Month: month}
		index[center.ID] = i
	}
	from, until, ok := PeriodWindow(year, month)
	if !ok {
		return result
	}

	for _, claim := range claims {
		if claim.Status != models.ClaimStatusApproved || !inWindow(claim.SubmittedAt, from, until) {
			continue
		}
		i, found := index[claim.CenterID]
		if !found {
			continue
		}
		row := &result[i]
		row.TotalClaims++
		row.TotalTeachingHours += teachingHoursOf(claim)
		row.TotalTransportAmount += transportAmountOf(claim)
		if claim.IsSupervision() {
			row.TotalThesisSupervisionUnits++
		}
		if claim.IsExamination() {
			row.TotalThesisExaminationUnits++
		}
	}
	for i := range result {
		result[i].TotalTeachingHours = roundTo2(result[i].TotalTeachingHours)
		result[i].TotalTransportAmount = roundTo2(result[i].TotalTransportAmount)
	}
	return result
}

func teachingHoursOf(claim models.Claim) float64 {
	if claim.Type != models.ClaimTypeTeaching || claim.Teaching == nil {
		return 0
	}
	return claim.Teaching.TeachingHours
}

// transportAmountOf counts standalone transportation only. Teaching legs carry distance, not currency.
func transportAmountOf(claim models.Claim) float64 {
	if claim.Type != models.ClaimTypeTransportation || claim.Transportation == nil {
		return 0
	}
	return claim.Transportation.Amount
}
