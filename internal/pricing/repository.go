package pricing

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"danceslot/internal/apperror"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context) ([]Plan, error) {
	query := `
		SELECT id, name, price, period, COALESCE(description, '') AS description,
		       COALESCE(features, '{}') AS features, active, updated_at
		FROM pricing_plans
		ORDER BY price ASC, id ASC
	`

	plans := []Plan{}
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, apperror.FromStore("pricing.List", err)
	}

	return plans, nil
}

func (r *repository) Upsert(ctx context.Context, plans []Plan) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return apperror.FromStore("pricing.Upsert", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO pricing_plans (id, name, price, period, description, features, active, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, price = EXCLUDED.price, period = EXCLUDED.period,
		    description = EXCLUDED.description, features = EXCLUDED.features,
		    active = EXCLUDED.active, updated_at = NOW()
	`

	for _, p := range plans {
		_, err := tx.ExecContext(ctx, query,
			p.ID, p.Name, p.Price, p.Period, p.Description, pq.Array([]string(p.Features)), p.Active)
		if err != nil {
			return apperror.FromStore("pricing.Upsert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperror.FromStore("pricing.Upsert", err)
	}
	return nil
}
