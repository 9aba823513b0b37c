package models

import "time"

// AuditAction names a recorded claim mutation.
type AuditAction string

const (
	AuditActionClaimSubmit  AuditAction = "CLAIM_SUBMIT"
	AuditActionClaimProcess AuditAction = "CLAIM_PROCESS"
	AuditActionClaimDelete  AuditAction = "CLAIM_DELETE"
)

// AuditResourceClaim is the resource name stored for claim entries.
const AuditResourceClaim = "claim"

// AuditLog is one row of the audit trail. NewValues holds the JSON snapshot written by the action.
type AuditLog struct {
	ID         string      `db:"id" json:"id"`
	UserID     *string     `db:"user_id" json:"userId,omitempty"`
	Action     AuditAction `db:"action" json:"action"`
	Resource   string      `db:"resource" json:"resource"`
	ResourceID *string     `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte      `db:"old_values" json:"-"`
	NewValues  []byte      `db:"new_values" json:"-"`
	IPAddress  string      `db:"ip_address" json:"ipAddress"`
	UserAgent  string      `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}
