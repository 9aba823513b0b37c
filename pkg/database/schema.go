package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schemaStatements create the tables backing claims, their scoping data and the audit trail.
// Every statement is idempotent so EnsureSchema can run on each boot.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS centers (
	id TEXT PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT UNIQUE,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL CHECK (role IN ('LECTURER', 'COORDINATOR', 'STAFF_REGISTRY', 'REGISTRY')),
	home_center_id TEXT REFERENCES centers(id),
	coordinated_center_id TEXT REFERENCES centers(id),
	active BOOLEAN NOT NULL DEFAULT TRUE
)`,
	`CREATE TABLE IF NOT EXISTS staff_center_assignments (
	user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	center_id TEXT NOT NULL REFERENCES centers(id) ON DELETE CASCADE,
	PRIMARY KEY (user_id, center_id)
)`,
	`CREATE TABLE IF NOT EXISTS claims (
	id TEXT PRIMARY KEY,
	submitted_by_id TEXT NOT NULL REFERENCES users(id),
	center_id TEXT NOT NULL REFERENCES centers(id),
	claim_type TEXT NOT NULL CHECK (claim_type IN ('TEACHING', 'TRANSPORTATION', 'THESIS_PROJECT')),
	status TEXT NOT NULL DEFAULT 'PENDING' CHECK (status IN ('PENDING', 'APPROVED', 'REJECTED')),
	submitted_at TIMESTAMPTZ NOT NULL,
	processed_by_id TEXT REFERENCES users(id),
	processed_at TIMESTAMPTZ,
	course_code TEXT,
	course_title TEXT,
	teaching_date DATE,
	teaching_start_time TEXT,
	teaching_end_time TEXT,
	teaching_hours NUMERIC(6,2),
	outbound_date DATE,
	outbound_from TEXT,
	outbound_to TEXT,
	return_date DATE,
	return_from TEXT,
	return_to TEXT,
	outbound_distance_km NUMERIC(10,2),
	return_distance_km NUMERIC(10,2),
	total_distance_km NUMERIC(10,2),
	transport_type TEXT,
	origin TEXT,
	destination TEXT,
	transport_amount NUMERIC(12,2),
	registration_number TEXT,
	cubic_capacity INTEGER,
	thesis_type TEXT,
	supervision_rank TEXT,
	exam_course_code TEXT,
	exam_date DATE,
	CHECK ((status = 'PENDING') = (processed_at IS NULL)),
	CHECK ((status = 'PENDING') = (processed_by_id IS NULL))
)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_center_submitted ON claims (center_id, submitted_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_claims_submitter ON claims (submitted_by_id, submitted_at DESC)`,
	`CREATE TABLE IF NOT EXISTS supervised_students (
	id TEXT PRIMARY KEY,
	claim_id TEXT NOT NULL REFERENCES claims(id) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	student_name TEXT NOT NULL,
	thesis_title TEXT NOT NULL,
	UNIQUE (claim_id, position)
)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
	id TEXT PRIMARY KEY,
	user_id TEXT,
	action TEXT NOT NULL,
	resource TEXT NOT NULL,
	resource_id TEXT,
	old_values JSONB,
	new_values JSONB,
	ip_address TEXT NOT NULL DEFAULT '',
	user_agent TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
}

// EnsureSchema creates any missing table or index inside one transaction.
func EnsureSchema(ctx context.Context, db *sqlx.DB) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range schemaStatements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
