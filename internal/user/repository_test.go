package user

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"danceslot/internal/apperror"
	"danceslot/internal/auth"
)

const testUserID = "3d6f0a52-1c8e-4b7a-9f3e-5a2b7c9d1e04"

var userColumns = []string{"id", "name", "email", "phone", "password_hash", "role", "created_at", "updated_at"}

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	return NewRepository(sqlxDB), mock, func() { sqlxDB.Close() }
}

func sampleUser() User {
	return User{
		ID:           testUserID,
		Name:         "Олена",
		Email:        "olena@example.com",
		Phone:        "+380991234567",
		PasswordHash: "$2a$10$hash",
		Role:         auth.RoleUser,
	}
}

func userRow(u User) *sqlmock.Rows {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(userColumns).
		AddRow(u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, string(u.Role), now, now)
}

func TestRepository_Create(t *testing.T) {
	u := sampleUser()
	insert := regexp.QuoteMeta("INSERT INTO users (id, name, email, phone, password_hash, role)")

	t.Run("success", func(t *testing.T) {
		repo, mock, closer := setupMock(t)
		defer closer()

		mock.ExpectQuery(insert).
			WithArgs(u.ID, u.Name, u.Email, u.Phone, u.PasswordHash, u.Role).
			WillReturnRows(userRow(u))

		created, err := repo.Create(context.Background(), &u)
		require.NoError(t, err)
		assert.Equal(t, u.ID, created.ID)
		assert.Equal(t, auth.RoleUser, created.Role)
		assert.False(t, created.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock, closer := setupMock(t)
		defer closer()

		mock.ExpectQuery(insert).WillReturnError(&pq.Error{Code: "23505", Constraint: "idx_users_email"})

		_, err := repo.Create(context.Background(), &u)
		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.Equal(t, 409, apperror.StatusOf(err))
	})

	t.Run("store down", func(t *testing.T) {
		repo, mock, closer := setupMock(t)
		defer closer()

		mock.ExpectQuery(insert).WillReturnError(errors.New("dial tcp: connection refused"))

		_, err := repo.Create(context.Background(), &u)
		assert.True(t, apperror.IsStoreUnavailable(err))
	})
}

func TestRepository_GetByEmail(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	u := sampleUser()
	query := regexp.QuoteMeta("FROM users WHERE email = $1")
	mock.ExpectQuery(query).WithArgs(u.Email).WillReturnRows(userRow(u))
	mock.ExpectQuery(query).WithArgs("ghost@example.com").WillReturnRows(sqlmock.NewRows(userColumns))

	got, err := repo.GetByEmail(context.Background(), u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)

	_, err = repo.GetByEmail(context.Background(), "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	u := sampleUser()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + columns + " FROM users WHERE id = $1")).
		WithArgs(u.ID).
		WillReturnRows(userRow(u))

	got, err := repo.GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Олена", got.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_EmailExists(t *testing.T) {
	repo, mock, closer := setupMock(t)
	defer closer()

	query := regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)")
	mock.ExpectQuery(query).WithArgs("olena@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(query).WithArgs("new@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.EmailExists(context.Background(), "olena@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.EmailExists(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateProfile(t *testing.T) {
	query := regexp.QuoteMeta("UPDATE users SET name = $2, phone = $3, updated_at = NOW() WHERE id = $1")

	t.Run("success", func(t *testing.T) {
		repo, mock, closer := setupMock(t)
		defer closer()

		u := sampleUser()
		u.Name = "Олена К."
		u.Phone = ""
		mock.ExpectQuery(query).WithArgs(u.ID, "Олена К.", "").WillReturnRows(userRow(u))

		updated, err := repo.UpdateProfile(context.Background(), u.ID, Profile{Name: "Олена К."})
		require.NoError(t, err)
		assert.Equal(t, "Олена К.", updated.Name)
		assert.Empty(t, updated.Phone)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock, closer := setupMock(t)
		defer closer()

		mock.ExpectQuery(query).WillReturnRows(sqlmock.NewRows(userColumns))

		_, err := repo.UpdateProfile(context.Background(), testUserID, Profile{Name: "Олена"})
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	u := sampleUser()

	created, err := repo.Create(ctx, &u)
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = repo.Create(ctx, &u)
	assert.ErrorIs(t, err, ErrEmailTaken)

	exists, err := repo.EmailExists(ctx, u.Email)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := repo.GetByEmail(ctx, u.Email)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	updated, err := repo.UpdateProfile(ctx, u.ID, Profile{Name: "Олена К.", Phone: "+380501112233"})
	require.NoError(t, err)
	assert.Equal(t, "+380501112233", updated.Phone)
	assert.Equal(t, u.Email, updated.Email)

	_, err = repo.GetByEmail(ctx, "ghost@example.com")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = repo.UpdateProfile(ctx, "missing", Profile{Name: "X"})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
