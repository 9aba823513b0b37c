package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/claims-api/internal/models"
)

// CenterRepository reads organisational centers. Center CRUD lives elsewhere.
type CenterRepository struct {
	db *sqlx.DB
}

// NewCenterRepository constructs the repository.
func NewCenterRepository(db *sqlx.DB) *CenterRepository {
	return &CenterRepository{db: db}
}

// List returns every center ordered by name.
func (r *CenterRepository) List(ctx context.Context) ([]models.Center, error) {
	const query = `SELECT id, code, name FROM centers ORDER BY name, id`
	var centers []models.Center
	if err := r.db.SelectContext(ctx, &centers, query); err != nil {
		return nil, fmt.Errorf("list centers: %w", err)
	}
	return centers, nil
}

// ListByIDs returns the known centers among ids; unknown identifiers are skipped.
func (r *CenterRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Center, error) {
	if len(ids) == 0 {
		return []models.Center{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, code, name FROM centers WHERE id IN (?) ORDER BY name, id`, ids)
	if err != nil {
		return nil, fmt.Errorf("build centers query: %w", err)
	}
	var centers []models.Center
	if err := r.db.SelectContext(ctx, &centers, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list centers by id: %w", err)
	}
	return centers, nil
}
