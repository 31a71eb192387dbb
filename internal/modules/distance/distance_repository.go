package distance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"franchise-crm/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// queryTimeout bounds every statement against the distance table.
const queryTimeout = 3 * time.Second

// RepositoryInterface is the durable store of measured pincode distances.
// Rows are keyed by the ordered (from, to) pair, like the in-process cache.
type RepositoryInterface interface {
	// FindDistance returns models.ErrNotFound when the pair was never stored.
	FindDistance(ctx context.Context, from, to string) (*models.StoredDistance, error)
	// SaveDistance upserts the measured distance for the pair.
	SaveDistance(ctx context.Context, d *models.StoredDistance) error
}

// Repository implements RepositoryInterface on PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

func (r *Repository) FindDistance(ctx context.Context, from, to string) (*models.StoredDistance, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
		SELECT from_pincode, to_pincode, distance_km, method, updated_at
		FROM pincode_distances_exact
		WHERE from_pincode = $1 AND to_pincode = $2`

	d := &models.StoredDistance{}
	err := r.db.QueryRow(ctx, query, from, to).Scan(&d.FromPincode, &d.ToPincode, &d.DistanceKm, &d.Method, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FindDistance failed: %w", err)
	}
	return d, nil
}

func (r *Repository) SaveDistance(ctx context.Context, d *models.StoredDistance) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
		INSERT INTO pincode_distances_exact (from_pincode, to_pincode, distance_km, method)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (from_pincode, to_pincode)
		DO UPDATE SET
			distance_km = EXCLUDED.distance_km,
			method      = EXCLUDED.method,
			updated_at  = now()`

	if _, err := r.db.Exec(ctx, query, d.FromPincode, d.ToPincode, d.DistanceKm, d.Method); err != nil {
		return fmt.Errorf("SaveDistance failed: %w", err)
	}
	return nil
}
