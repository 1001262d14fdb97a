package pricing

import "context"

type Repository interface {
	List(ctx context.Context) ([]Plan, error)
	// Upsert inserts or replaces the given plans in one transaction.
	Upsert(ctx context.Context, plans []Plan) error
}
