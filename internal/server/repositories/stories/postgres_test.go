package stories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storysync/internal/common"
	"github.com/dmitrijs2005/storysync/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresRepository(db), mock
}

const (
	insertQ = `(?s)^INSERT\s+INTO\s+stories\s*\(id,\s*user_id,\s*description,\s*photo_key,\s*lat,\s*lon,\s*idempotency_key\).*RETURNING\s+created_at`
	byKeyQ  = `(?s)^SELECT\s+s\.id.*FROM\s+stories\s+s\s+JOIN\s+users\s+u.*WHERE\s+s\.user_id\s*=\s*\$1\s+AND\s+s\.idempotency_key\s*=\s*\$2`
	listQ   = `(?s)^SELECT\s+s\.id.*FROM\s+stories\s+s\s+JOIN\s+users\s+u.*ORDER\s+BY\s+s\.created_at\s+DESC\s+LIMIT\s+\$1`
)

var storyCols = []string{"id", "user_id", "name", "description", "photo_key", "lat", "lon", "idempotency_key", "created_at"}

func ptr(v float64) *float64 { return &v }

func TestCreate_WithLocation(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertQ).
		WithArgs("s-1", "u-1", "hello", "photos/s-1.jpg", -6.2, 106.8, "key-1").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	s := &models.Story{ID: "s-1", UserID: "u-1", Description: "hello", PhotoKey: "photos/s-1.jpg",
		Lat: ptr(-6.2), Lon: ptr(106.8), IdempotencyKey: "key-1"}
	got, err := repo.Create(context.Background(), s)
	require.NoError(t, err)
	assert.True(t, got.CreatedAt.Equal(now))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_WithoutOptionalFields(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).
		WithArgs("s-1", "u-1", "hello", "k", nil, nil, nil).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	_, err := repo.Create(context.Background(), &models.Story{ID: "s-1", UserID: "u-1", Description: "hello", PhotoKey: "k"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_Errors(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})
	_, err := repo.Create(context.Background(), &models.Story{ID: "s-1", IdempotencyKey: "k"})
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("boom"))
	_, err = repo.Create(context.Background(), &models.Story{ID: "s-2"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: boom")
}

func TestFindByIdempotencyKey(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(byKeyQ).
		WithArgs("u-1", "key-1").
		WillReturnRows(sqlmock.NewRows(storyCols).AddRow("s-1", "u-1", "Alice", "hello", "k", nil, nil, "key-1", now))
	mock.ExpectQuery(byKeyQ).
		WithArgs("u-1", "missing").
		WillReturnRows(sqlmock.NewRows(storyCols))

	got, err := repo.FindByIdempotencyKey(context.Background(), "u-1", "key-1")
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.ID)
	assert.Equal(t, "Alice", got.AuthorName)
	assert.Nil(t, got.Lat)

	_, err = repo.FindByIdempotencyKey(context.Background(), "u-1", "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(listQ).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(storyCols).
			AddRow("s-2", "u-1", "Alice", "second", "k2", 1.5, 2.5, "", now).
			AddRow("s-1", "u-2", "Bob", "first", "k1", nil, nil, "key", now.Add(-time.Hour)))

	got, err := repo.List(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s-2", got[0].ID)
	require.NotNil(t, got[0].Lat)
	assert.Equal(t, 1.5, *got[0].Lat)
	assert.Equal(t, 2.5, *got[0].Lon)
	assert.Equal(t, "Bob", got[1].AuthorName)
	assert.Nil(t, got[1].Lon)
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(listQ).WillReturnError(sql.ErrConnDone)

	_, err := repo.List(context.Background(), 5)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}
