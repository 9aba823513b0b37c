package models

import "time"

// ClaimType selects which payload variant a claim carries.
type ClaimType string

const (
	ClaimTypeTeaching       ClaimType = "TEACHING"
	ClaimTypeTransportation ClaimType = "TRANSPORTATION"
	ClaimTypeThesisProject  ClaimType = "THESIS_PROJECT"
)

// Valid reports whether t is a known claim type.
func (t ClaimType) Valid() bool {
	switch t {
	case ClaimTypeTeaching, ClaimTypeTransportation, ClaimTypeThesisProject:
		return true
	}
	return false
}

// ClaimStatus captures the approval lifecycle of a claim.
type ClaimStatus string

const (
	ClaimStatusPending  ClaimStatus = "PENDING"
	ClaimStatusApproved ClaimStatus = "APPROVED"
	ClaimStatusRejected ClaimStatus = "REJECTED"
)

// Terminal reports whether no further transition is possible from s.
func (s ClaimStatus) Terminal() bool {
	return s == ClaimStatusApproved || s == ClaimStatusRejected
}

// CanTransition reports whether a claim may move from one status to another.
// PENDING is the only non-terminal state and nothing re-enters it.
func CanTransition(from, to ClaimStatus) bool {
	return from == ClaimStatusPending && to.Terminal()
}

// TransportType distinguishes private vehicles from every other mode. Values other than
// PRIVATE are stored as submitted and never carry vehicle details.
type TransportType string

const (
	TransportTypePrivate TransportType = "PRIVATE"
	TransportTypePublic  TransportType = "PUBLIC"
)

// ThesisType selects the thesis sub-variant.
type ThesisType string

const (
	ThesisTypeSupervision ThesisType = "SUPERVISION"
	ThesisTypeExamination ThesisType = "EXAMINATION"
)

// Claim is the common envelope. Exactly one of Teaching, Transportation or
// Thesis is non-nil and it always matches Type.
type Claim struct {
	ID            string      `json:"id"`
	SubmittedByID string      `json:"submittedById"`
	CenterID      string      `json:"centerId"`
	Type          ClaimType   `json:"claimType"`
	Status        ClaimStatus `json:"status"`
	SubmittedAt   time.Time   `json:"submittedAt"`
	ProcessedByID *string     `json:"processedById"`
	ProcessedAt   *time.Time  `json:"processedAt"`

	Teaching       *TeachingDetails       `json:"teaching,omitempty"`
	Transportation *TransportationDetails `json:"transportation,omitempty"`
	Thesis         *ThesisDetails         `json:"thesis,omitempty"`
}

// TeachingDetails holds a teaching session and its derived hours.
type TeachingDetails struct {
	CourseCode    string             `json:"courseCode"`
	CourseTitle   string             `json:"courseTitle"`
	TeachingDate  Date               `json:"teachingDate"`
	StartTime     string             `json:"teachingStartTime"`
	EndTime       string             `json:"teachingEndTime"`
	TeachingHours float64            `json:"teachingHours"`
	Transport     *TeachingTransport `json:"transport,omitempty"`
}

// TeachingTransport is the optional round trip attached to a teaching claim.
// Distances are informational and never contribute to currency totals.
type TeachingTransport struct {
	OutboundDate       *Date    `json:"outboundDate,omitempty"`
	OutboundFrom       string   `json:"outboundFrom,omitempty"`
	OutboundTo         string   `json:"outboundTo,omitempty"`
	ReturnDate         *Date    `json:"returnDate,omitempty"`
	ReturnFrom         string   `json:"returnFrom,omitempty"`
	ReturnTo           string   `json:"returnTo,omitempty"`
	OutboundDistanceKm *float64 `json:"outboundDistanceKm"`
	ReturnDistanceKm   *float64 `json:"returnDistanceKm"`
	TotalDistanceKm    *float64 `json:"totalDistanceKm"`
}

// TransportationDetails is a standalone travel expense.
type TransportationDetails struct {
	TransportType      TransportType `json:"transportType"`
	Origin             string        `json:"origin"`
	Destination        string        `json:"destination"`
	Amount             float64       `json:"transportAmount"`
	RegistrationNumber *string       `json:"registrationNumber"`
	CubicCapacity      *int          `json:"cubicCapacity"`
}

// ThesisDetails carries either a supervision or an examination payload.
type ThesisDetails struct {
	ThesisType  ThesisType          `json:"thesisType"`
	Supervision *SupervisionDetails `json:"supervision,omitempty"`
	Examination *ExaminationDetails `json:"examination,omitempty"`
}

// SupervisionDetails lists the students supervised for the claim.
type SupervisionDetails struct {
	Rank     string              `json:"supervisionRank"`
	Students []SupervisedStudent `json:"students"`
}

// ExaminationDetails identifies the examined course sitting.
type ExaminationDetails struct {
	CourseCode string `json:"examCourseCode"`
	ExamDate   Date   `json:"examDate"`
}

// SupervisedStudent is owned exclusively by its claim.
type SupervisedStudent struct {
	ID          string `db:"id" json:"id"`
	ClaimID     string `db:"claim_id" json:"-"`
	Position    int    `db:"position" json:"-"`
	StudentName string `db:"student_name" json:"studentName"`
	ThesisTitle string `db:"thesis_title" json:"thesisTitle"`
}

// IsSupervision reports whether c carries a supervision payload.
func (c *Claim) IsSupervision() bool {
	return c.Thesis != nil && c.Thesis.ThesisType == ThesisTypeSupervision
}

// IsExamination reports whether c carries an examination payload.
func (c *Claim) IsExamination() bool {
	return c.Thesis != nil && c.Thesis.ThesisType == ThesisTypeExamination
}

// ClaimFilter constrains listing queries. Empty fields are ignored; a non-nil
// empty CenterIDs slice matches nothing.
type ClaimFilter struct {
	SubmittedByID  string
	CenterIDs      []string
	Status         []ClaimStatus
	Type           ClaimType
	SubmittedFrom  *time.Time
	SubmittedUntil *time.Time
	Limit          int
	Offset         int
}
