package store

import (
	"context"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"

	"socialhub/backend/internal/database/dbtest"
	"socialhub/backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return gormDB, mock
}

func TestAdjustCounter_SQL(t *testing.T) {
	tests := []struct {
		name      string
		counter   Counter
		delta     int
		mockSetup func(sqlmock.Sqlmock)
		applied   bool
	}{
		{
			name:    "increment has no guard",
			counter: LikesCount,
			delta:   1,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE "posts" SET "likes_count"=likes_count + $1 WHERE id = $2`)).
					WithArgs(1, 7).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			applied: true,
		},
		{
			name:    "decrement is guarded against going negative",
			counter: CommentsCount,
			delta:   -1,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE "posts" SET "comments_count"=comments_count + $1 WHERE id = $2 AND comments_count >= $3`)).
					WithArgs(-1, 7, 1).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
			applied: true,
		},
		{
			name:    "decrement at zero touches nothing",
			counter: LikesCount,
			delta:   -1,
			mockSetup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(regexp.QuoteMeta(
					`UPDATE "posts" SET "likes_count"=likes_count + $1 WHERE id = $2 AND likes_count >= $3`)).
					WithArgs(-1, 7, 1).
					WillReturnResult(sqlmock.NewResult(0, 0))
			},
			applied: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			tc.mockSetup(mock)

			applied, err := New(db).AdjustCounter(context.Background(), 7, tc.counter, tc.delta)
			require.NoError(t, err)
			assert.Equal(t, tc.applied, applied)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestAdjustCounter_UnknownColumn(t *testing.T) {
	db, mock := setupMockDB(t)

	_, err := New(db).AdjustCounter(context.Background(), 7, Counter("id"), 1)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdjustCounter_NeverNegative(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	s := New(db)

	author := models.User{Username: "zed", Email: "zed@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)
	post := models.Post{AuthorID: author.ID, Content: "hello"}
	require.NoError(t, db.Create(&post).Error)

	applied, err := s.AdjustCounter(ctx, post.ID, LikesCount, 1)
	require.NoError(t, err)
	assert.True(t, applied)

	for i := 0; i < 3; i++ {
		_, err := s.AdjustCounter(ctx, post.ID, LikesCount, -1)
		require.NoError(t, err)
	}

	likes, comments, err := s.Counters(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likes)
	assert.Equal(t, int64(0), comments)
}

func TestAdjustCounter_ConcurrentDecrements(t *testing.T) {
	db := dbtest.OpenShared(t, 8)
	ctx := context.Background()
	s := New(db)

	author := models.User{Username: "zed", Email: "zed@example.com", PasswordHash: "x"}
	require.NoError(t, db.Create(&author).Error)
	post := models.Post{AuthorID: author.ID, Content: "hello", LikesCount: 3}
	require.NoError(t, db.Create(&post).Error)

	const workers = 12
	var (
		wg      sync.WaitGroup
		applied atomic.Int32
		errs    = make(chan error, workers)
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.AdjustCounter(ctx, post.ID, LikesCount, -1)
			if err != nil {
				errs <- err
				return
			}
			if ok {
				applied.Add(1)
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int32(3), applied.Load())

	likes, _, err := s.Counters(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), likes)
}
