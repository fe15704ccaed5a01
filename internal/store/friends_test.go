package store

import (
	"context"
	"regexp"
	"testing"

	"socialhub/backend/internal/database/dbtest"
	"socialhub/backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func createUsers(t *testing.T, db *gorm.DB, names ...string) []models.User {
	t.Helper()
	users := make([]models.User, 0, len(names))
	for _, name := range names {
		u := models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
		require.NoError(t, db.Create(&u).Error)
		users = append(users, u)
	}
	return users
}

func TestFriendPair_IsSymmetric(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	s := New(db)
	users := createUsers(t, db, "carol", "alice", "bob")
	carol, alice, bob := users[0].ID, users[1].ID, users[2].ID

	require.NoError(t, s.AddFriendPair(ctx, alice, bob))
	require.NoError(t, s.AddFriendPair(ctx, bob, alice), "adding twice is a no-op")
	require.NoError(t, s.AddFriendPair(ctx, alice, carol))

	ab, err := s.AreFriends(ctx, alice, bob)
	require.NoError(t, err)
	ba, err := s.AreFriends(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, ab)
	assert.True(t, ba)

	var edges int64
	require.NoError(t, db.Model(&models.Friendship{}).Count(&edges).Error)
	assert.Equal(t, int64(4), edges)

	friends, err := s.Friends(ctx, alice)
	require.NoError(t, err)
	require.Len(t, friends, 2)
	assert.Equal(t, "bob", friends[0].Username)
	assert.Equal(t, "carol", friends[1].Username)

	ids, err := s.FriendIDs(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice}, ids)

	removed, err := s.RemoveFriendPair(ctx, bob, alice)
	require.NoError(t, err)
	assert.True(t, removed)

	ab, err = s.AreFriends(ctx, alice, bob)
	require.NoError(t, err)
	ba, err = s.AreFriends(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, ab)
	assert.False(t, ba)

	removed, err = s.RemoveFriendPair(ctx, bob, alice)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestAddFriendPair_RejectsSelf(t *testing.T) {
	s := New(dbtest.Open(t))
	assert.ErrorIs(t, s.AddFriendPair(context.Background(), 3, 3), ErrSelfFriendship)
}

func TestLikedPostIDs(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()
	s := New(db)
	users := createUsers(t, db, "alice", "bob")

	var posts []models.Post
	for i := 0; i < 3; i++ {
		p := models.Post{AuthorID: users[0].ID, Content: "post"}
		require.NoError(t, db.Create(&p).Error)
		posts = append(posts, p)
	}
	require.NoError(t, db.Create(&models.Like{UserID: users[1].ID, PostID: posts[1].ID}).Error)
	require.NoError(t, db.Create(&models.Like{UserID: users[0].ID, PostID: posts[2].ID}).Error)

	liked, err := s.LikedPostIDs(ctx, users[1].ID, []uint{posts[0].ID, posts[1].ID, posts[2].ID})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{posts[1].ID: true}, liked)

	empty, err := s.LikedPostIDs(ctx, users[1].ID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMembership_NilWhenMissing(t *testing.T) {
	db := dbtest.Open(t)
	s := New(db)

	m, err := s.Membership(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestLockUsers_SQL(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT "id" FROM "users" WHERE id IN ($1,$2) ORDER BY id FOR UPDATE`)).
		WithArgs(9, 4).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(4))

	found, err := New(db).LockUsers(context.Background(), 9, 4)
	require.NoError(t, err)
	assert.Equal(t, []uint{4}, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}
