package dto

import "github.com/noah-isme/claims-api/internal/models"

// LecturerSummaryQuery selects one lecturer's month.
type LecturerSummaryQuery struct {
	LecturerID string
	Year       int
	Month      int
	ClaimType  *models.ClaimType
}

// CenterSummaryQuery selects a month across the caller's centers.
type CenterSummaryQuery struct {
	Year     int
	Month    int
	CenterID string
}
