package dto

import "github.com/noah-isme/claims-api/internal/models"

// SubmitClaimRequest is the raw submission payload. Only the fields of the
// selected claimType are read; derived fields are never accepted from clients.
type SubmitClaimRequest struct {
	CenterID  string `json:"centerId"`
	ClaimType string `json:"claimType"`

	CourseCode        string                    `json:"courseCode"`
	CourseTitle       string                    `json:"courseTitle"`
	TeachingDate      string                    `json:"teachingDate"`
	TeachingStartTime string                    `json:"teachingStartTime"`
	TeachingEndTime   string                    `json:"teachingEndTime"`
	Transport         *TeachingTransportRequest `json:"transport,omitempty"`

	TransportType      string   `json:"transportType"`
	Origin             string   `json:"origin"`
	Destination        string   `json:"destination"`
	TransportAmount    *float64 `json:"transportAmount"`
	RegistrationNumber string   `json:"registrationNumber"`
	CubicCapacity      *int     `json:"cubicCapacity"`

	ThesisType      string                     `json:"thesisType"`
	SupervisionRank string                     `json:"supervisionRank"`
	Students        []SupervisedStudentRequest `json:"students"`
	ExamCourseCode  string                     `json:"examCourseCode"`
	ExamDate        string                     `json:"examDate"`
}

// TeachingTransportRequest describes the optional round trip of a teaching claim.
type TeachingTransportRequest struct {
	OutboundDate string `json:"outboundDate"`
	OutboundFrom string `json:"outboundFrom"`
	OutboundTo   string `json:"outboundTo"`
	ReturnDate   string `json:"returnDate"`
	ReturnFrom   string `json:"returnFrom"`
	ReturnTo     string `json:"returnTo"`
}

// SupervisedStudentRequest is one entry of a supervision claim.
type SupervisedStudentRequest struct {
	StudentName string `json:"studentName"`
	ThesisTitle string `json:"thesisTitle"`
}

// ProcessClaimRequest carries the reviewer decision.
type ProcessClaimRequest struct {
	Status models.ClaimStatus `json:"status"`
}

// ClaimQuery mirrors supported listing filters.
type ClaimQuery struct {
	Status   []models.ClaimStatus
	Type     models.ClaimType
	CenterID string
	Year     int
	Month    int
	Page     int
	PageSize int
}
