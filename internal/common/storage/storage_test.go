// internal/common/storage/storage_test.go
package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobportal/internal/common/config"
)

const record = `{"user":{"id":"1"},"isAuthenticated":true}`

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, "auth-storage", []byte(record)))
	got, err := s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.JSONEq(t, record, string(got))

	require.NoError(t, s.Put(ctx, "auth-storage", []byte(`{}`)))
	got, err = s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(got))

	require.NoError(t, s.Delete(ctx, "auth-storage"))
	_, err = s.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStore_RoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	exerciseStore(t, s)
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = s.Put(context.Background(), "../escape", []byte(record))
	assert.Error(t, err)
}

func TestFileStore_DeleteMissingIsNoop(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, s.Delete(context.Background(), "cv-analysis"))
}

func TestRedisStore_RoundTrip(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, "jobportal:")
	defer s.Close()

	exerciseStore(t, s)

	require.NoError(t, s.Put(context.Background(), "cv-analysis", []byte(`{"score":80}`)))
	assert.True(t, mr.Exists("jobportal:cv-analysis"))
}

func TestRedisStore_PropagatesErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	s := NewRedisStore(client, "p:")

	mock.ExpectGet("p:auth-storage").SetErr(errors.New("connection refused"))

	_, err := s.Get(context.Background(), "auth-storage")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	s := NewPostgresStore(db, "client_records")
	ctx := context.Background()

	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE IF NOT EXISTS "client_records"`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, s.EnsureTable(ctx))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "client_records" WHERE key = $1`)).
		WithArgs("auth-storage").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, err = s.Get(ctx, "auth-storage")
	assert.ErrorIs(t, err, ErrNotFound)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "client_records"`)).
		WithArgs("auth-storage", []byte(record)).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Put(ctx, "auth-storage", []byte(record)))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT value FROM "client_records" WHERE key = $1`)).
		WithArgs("auth-storage").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(record)))
	got, err := s.Get(ctx, "auth-storage")
	require.NoError(t, err)
	assert.JSONEq(t, record, string(got))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "client_records" WHERE key = $1`)).
		WithArgs("auth-storage").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Delete(ctx, "auth-storage"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOpen_FileBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "file", Dir: t.TempDir()}}
	s, err := Open(context.Background(), cfg)
	require.NoError(t, err)
	defer s.Close()
	assert.IsType(t, &FileStore{}, s)
}

func TestOpen_UnknownBackend(t *testing.T) {
	cfg := &config.Config{Storage: config.StorageConfig{Backend: "s3"}}
	_, err := Open(context.Background(), cfg)
	assert.Error(t, err)
}
