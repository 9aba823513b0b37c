package models

// Summary is the per-lecturer monthly roll-up. Status counts and totals cover
// every claim in the period; Claims honours the optional type filter only.
type Summary struct {
	LecturerID           string     `json:"lecturerId"`
	Year                 int        `json:"year"`
	Month                int        `json:"month"`
	ClaimTypeFilter      *ClaimType `json:"claimTypeFilter,omitempty"`
	TotalClaims          int        `json:"totalClaims"`
	Pending              int        `json:"pending"`
	Approved             int        `json:"approved"`
	Rejected             int        `json:"rejected"`
	TotalTeachingHours   float64    `json:"totalTeachingHours"`
	TotalTransportAmount float64    `json:"totalTransportAmount"`
	Claims               []Claim    `json:"claims"`
}

// CenterSummary aggregates approved claims of one center for a month.
type CenterSummary struct {
	CenterID                    string  `json:"centerId"`
	CenterName                  string  `json:"centerName"`
	Year                        int     `json:"year"`
	Month                       int     `json:"month"`
	TotalClaims                 int     `json:"totalClaims"`
	TotalTeachingHours          float64 `json:"totalTeachingHours"`
	TotalTransportAmount        float64 `json:"totalTransportAmount"`
	TotalThesisSupervisionUnits int     `json:"totalThesisSupervisionUnits"`
	TotalThesisExaminationUnits int     `json:"totalThesisExaminationUnits"`
}
