package service

import (
	"context"
	"io"
	"testing"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/database/dbtest"
	"socialhub/backend/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type env struct {
	ctx      context.Context
	db       *gorm.DB
	friends  *FriendService
	groups   *GroupService
	posts    *PostService
	comments *CommentService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	return envFor(dbtest.Open(t))
}

// newSharedEnv runs the services over a file database with several
// connections, for tests that race goroutines against each other.
func newSharedEnv(t *testing.T) *env {
	t.Helper()
	return envFor(dbtest.OpenShared(t, 8))
}

func envFor(db *gorm.DB) *env {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return &env{
		ctx:      context.Background(),
		db:       db,
		friends:  NewFriendService(db, log),
		groups:   NewGroupService(db, log),
		posts:    NewPostService(db, log),
		comments: NewCommentService(db, log),
	}
}

func (e *env) user(t *testing.T, username string) uint {
	t.Helper()
	u := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, e.db.Create(&u).Error)
	return u.ID
}

func requireKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, kind, apperr.KindOf(err), "unexpected error: %v", err)
	if msg != "" {
		require.EqualError(t, err, msg)
	}
}
