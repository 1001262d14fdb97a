package pricing

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danceslot/internal/apperror"
)

var planColumns = []string{"id", "name", "price", "period", "description", "features", "active", "updated_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func TestRepository_List(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("FROM pricing_plans ORDER BY price ASC, id ASC")).
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow("single", "РАЗОВЕ", 250, "грн", "", "{\"1 заняття\",\"Без зобов'язань\"}", true, nil))

	plans, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, 250, plans[0].Price)
	assert.Equal(t, pq.StringArray{"1 заняття", "Без зобов'язань"}, plans[0].Features)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_ListStoreDown(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectQuery(regexp.QuoteMeta("FROM pricing_plans")).
		WillReturnError(errors.New("dial tcp: connection refused"))

	_, err := repo.List(context.Background())
	assert.True(t, apperror.IsStoreUnavailable(err))
}

func TestRepository_Upsert(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	plans := []Plan{
		{ID: "trial", Name: "ПРОБНЕ", Price: 150, Period: "грн", Features: pq.StringArray{"a"}, Active: true},
		{ID: "single", Name: "РАЗОВЕ", Price: 200, Period: "грн", Active: false},
	}

	mock.ExpectBegin()
	for _, p := range plans {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO pricing_plans")).
			WithArgs(p.ID, p.Name, p.Price, p.Period, p.Description, sqlmock.AnyArg(), p.Active).
			WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectCommit()

	require.NoError(t, repo.Upsert(context.Background(), plans))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpsertRollsBack(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (id) DO UPDATE")).
		WillReturnError(errors.New("value too long"))
	mock.ExpectRollback()

	err := repo.Upsert(context.Background(), []Plan{{ID: "trial", Name: "x", Period: "грн"}})
	require.Error(t, err)
	assert.False(t, apperror.IsStoreUnavailable(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}
