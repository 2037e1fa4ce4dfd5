package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"plantcare-community/internal/core/config"
	"plantcare-community/internal/core/database"
	"plantcare-community/internal/domain"
	"plantcare-community/internal/repo/repotest"
)

func newSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:   "sqlite",
		DSN:      "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		LogLevel: "silent",
		Logger:   zap.NewNop(),
	})
	require.NoError(t, err)
	require.NoError(t, AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func TestGormStoreContract(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repotest.Repos {
		s := NewGormStore(newSQLite(t), "sqlite")
		return repotest.Repos{Users: s.Users, Posts: s.Posts, Communities: s.Communities}
	})
}

// setupMockDB gorm 挂在 sqlmock 上，用来模拟存储层故障
func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db}), &gorm.Config{})
	require.NoError(t, err)
	return gormDB, mock
}

func TestPostRepoStorageFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	boom := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT \* FROM "posts"`).WillReturnError(boom)

	_, err := NewPostRepo(db).Get(context.Background(), "p1")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, domain.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	boom := errors.New("disk full")
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "seq" FROM "posts" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "post_likes"`).
		WithArgs("p1", "u1").
		WillReturnError(boom)
	mock.ExpectRollback()

	_, err := NewPostRepo(db).TogglePostLike(context.Background(), "p1", "u1")
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestToggleLikeLocksPostRow(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "seq" FROM "posts" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}))
	mock.ExpectRollback()

	_, err := NewPostRepo(db).TogglePostLike(context.Background(), "gone", "u1")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddReplyLocksPostRow(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT "seq" FROM "posts" WHERE id = \$1 .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"seq"}))
	mock.ExpectRollback()

	err := NewPostRepo(db).AddReply(context.Background(), "gone", &domain.Reply{ID: "r1", AuthorID: "u1", Content: "x"})
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPostNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"seq", "id"}))

	_, err := NewPostRepo(db).Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, "100!%", escapeLike("100%"))
	assert.Equal(t, "a!_b", escapeLike("a_b"))
	assert.Equal(t, "wow!!", escapeLike("wow!"))
	assert.Equal(t, "%x!%y%", containsPattern("x%y"))
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	_, err := Open(ctx, config.DB{Driver: "oracle"}, zap.NewNop())
	assert.ErrorIs(t, err, database.ErrUnsupportedDriver)

	s, err := Open(ctx, config.DB{Driver: "memory"}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Driver)
	assert.NoError(t, s.Close(ctx))

	s, err = Open(ctx, config.DB{
		Driver:      "sqlite",
		DSN:         "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		AutoMigrate: true,
		LogLevel:    "silent",
	}, zap.NewNop())
	require.NoError(t, err)
	n, err := s.Posts.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.NoError(t, s.Close(ctx))
}
