package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/claims-api/internal/models"
)

// UserRepository resolves the scope of authenticated users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

type actorRow struct {
	ID                  string          `db:"id"`
	Role                models.UserRole `db:"role"`
	FullName            string          `db:"full_name"`
	HomeCenterID        *string         `db:"home_center_id"`
	CoordinatedCenterID *string         `db:"coordinated_center_id"`
}

// FindActor loads an active user and its center scope. It returns sql.ErrNoRows for unknown or inactive users.
func (r *UserRepository) FindActor(ctx context.Context, id string) (*models.Actor, error) {
	const query = `SELECT id, role, full_name, home_center_id, coordinated_center_id
	FROM users WHERE id = $1 AND active = TRUE`
	var row actorRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}

	actor := &models.Actor{
		ID:       row.ID,
		Role:     row.Role,
		FullName: row.FullName,
	}
	switch row.Role {
	case models.RoleLecturer:
		actor.HomeCenterID = row.HomeCenterID
	case models.RoleCoordinator:
		actor.CoordinatedCenterID = row.CoordinatedCenterID
	case models.RoleStaffRegistry:
		const assignments = `SELECT center_id FROM staff_center_assignments WHERE user_id = $1 ORDER BY center_id`
		centers := []string{}
		if err := r.db.SelectContext(ctx, &centers, assignments, id); err != nil {
			return nil, fmt.Errorf("list staff center assignments: %w", err)
		}
		actor.AssignedCenterIDs = centers
	}
	return actor, nil
}
