package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"franchise-crm/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const queryTimeout = 3 * time.Second

// RuleFilter narrows ListRules. Unowned rules (no franchise) always match;
// owned rules match only FranchiseID unless AllFranchises is set.
type RuleFilter struct {
	VariantID     string
	GlobalOnly    bool
	FranchiseID   string
	AllFranchises bool
	ActiveOnly    bool
}

// RepositoryInterface stores per-variant rules and global tiers in one table;
// a NULL variant_id marks a global tier.
type RepositoryInterface interface {
	// ListRules returns matching rules ordered for first-match evaluation:
	// display_order, then min_km.
	ListRules(ctx context.Context, f RuleFilter) ([]models.PricingRule, error)
	// FindRule returns models.ErrNotFound for an unknown id.
	FindRule(ctx context.Context, id uuid.UUID) (*models.PricingRule, error)
	// CreateRule assigns ID and timestamps.
	CreateRule(ctx context.Context, r *models.PricingRule) error
	// UpdateRule refreshes UpdatedAt; models.ErrNotFound when the row is gone.
	UpdateRule(ctx context.Context, r *models.PricingRule) error
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) RepositoryInterface {
	return &Repository{db: db}
}

const ruleColumns = `
	id, COALESCE(franchise_id, ''), COALESCE(variant_id, ''),
	min_km, max_km, mode, value::text, is_active, display_order,
	created_at, updated_at`

func (r *Repository) ListRules(ctx context.Context, f RuleFilter) ([]models.PricingRule, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT ` + ruleColumns + ` FROM distance_pricing_rules WHERE 1=1`
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch {
	case f.VariantID != "":
		query += ` AND variant_id = ` + arg(f.VariantID)
	case f.GlobalOnly:
		query += ` AND variant_id IS NULL`
	}
	switch {
	case f.AllFranchises:
	case f.FranchiseID != "":
		query += ` AND (franchise_id IS NULL OR franchise_id = ` + arg(f.FranchiseID) + `)`
	default:
		query += ` AND franchise_id IS NULL`
	}
	if f.ActiveOnly {
		query += ` AND is_active`
	}
	query += ` ORDER BY display_order, min_km, created_at`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ListRules failed: %w", err)
	}
	defer rows.Close()

	var out []models.PricingRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRules scan: %w", err)
		}
		out = append(out, *rule)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListRules rows: %w", err)
	}
	return out, nil
}

func (r *Repository) FindRule(ctx context.Context, id uuid.UUID) (*models.PricingRule, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRow(ctx, `SELECT `+ruleColumns+` FROM distance_pricing_rules WHERE id = $1`, id)
	rule, err := scanRule(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("FindRule failed: %w", err)
	}
	return rule, nil
}

func (r *Repository) CreateRule(ctx context.Context, rule *models.PricingRule) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	const query = `
		INSERT INTO distance_pricing_rules
			(id, franchise_id, variant_id, min_km, max_km, mode, value, is_active, display_order)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4, $5, $6, $7::numeric, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		rule.ID, rule.FranchiseID, rule.VariantID,
		rule.MinKm, rule.MaxKm, string(rule.Mode), rule.Value.String(),
		rule.IsActive, rule.DisplayOrder,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return fmt.Errorf("CreateRule failed: %w", err)
	}
	return nil
}

func (r *Repository) UpdateRule(ctx context.Context, rule *models.PricingRule) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	const query = `
		UPDATE distance_pricing_rules
		SET franchise_id  = NULLIF($2, ''),
		    min_km        = $3,
		    max_km        = $4,
		    mode          = $5,
		    value         = $6::numeric,
		    is_active     = $7,
		    display_order = $8,
		    updated_at    = now()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		rule.ID, rule.FranchiseID,
		rule.MinKm, rule.MaxKm, string(rule.Mode), rule.Value.String(),
		rule.IsActive, rule.DisplayOrder,
	).Scan(&rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.ErrNotFound
		}
		return fmt.Errorf("UpdateRule failed: %w", err)
	}
	return nil
}

func scanRule(row pgx.Row) (*models.PricingRule, error) {
	var (
		rule  models.PricingRule
		mode  string
		value string
	)
	if err := row.Scan(
		&rule.ID, &rule.FranchiseID, &rule.VariantID,
		&rule.MinKm, &rule.MaxKm, &mode, &value, &rule.IsActive, &rule.DisplayOrder,
		&rule.CreatedAt, &rule.UpdatedAt,
	); err != nil {
		return nil, err
	}
	v, err := decimal.NewFromString(value)
	if err != nil {
		return nil, fmt.Errorf("rule %s value %q: %w", rule.ID, value, err)
	}
	rule.Mode = models.SurchargeMode(mode)
	rule.Value = v
	return &rule, nil
}
