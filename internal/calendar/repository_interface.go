package calendar

import (
	"context"
	"errors"
)

var ErrLimitsNotSet = errors.New("calendar limits not set")

type Repository interface {
	Get(ctx context.Context) (*Limits, error)
	Save(ctx context.Context, limits Limits) (*Limits, error)
}
