package service

import (
	"testing"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_ToggleLikeIsItsOwnInverse(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	post, err := e.posts.CreatePost(e.ctx, alice, "hello")
	require.NoError(t, err)

	res, err := e.posts.ToggleLike(e.ctx, bob, post.Post.ID)
	require.NoError(t, err)
	assert.True(t, res.Liked)
	assert.EqualValues(t, 1, res.LikesCount)

	view, err := e.posts.GetPost(e.ctx, bob, post.Post.ID)
	require.NoError(t, err)
	assert.True(t, view.LikedByCurrentUser)

	res, err = e.posts.ToggleLike(e.ctx, bob, post.Post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 0, res.LikesCount)

	var likes int64
	require.NoError(t, e.db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, likes)
}

func TestPostService_LikesCountNeverNegative(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")
	post, err := e.posts.CreatePost(e.ctx, alice, "hello")
	require.NoError(t, err)

	require.NoError(t, e.db.Create(&models.Like{UserID: alice, PostID: post.Post.ID}).Error)

	res, err := e.posts.ToggleLike(e.ctx, alice, post.Post.ID)
	require.NoError(t, err)
	assert.False(t, res.Liked)
	assert.EqualValues(t, 0, res.LikesCount)
}

func TestPostService_FeedAnnotatesViewerLikes(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	first, err := e.posts.CreatePost(e.ctx, alice, "first")
	require.NoError(t, err)
	second, err := e.posts.CreatePost(e.ctx, bob, "second")
	require.NoError(t, err)

	group, err := e.groups.CreateGroup(e.ctx, alice, "Hikers", "")
	require.NoError(t, err)
	_, err = e.posts.CreateGroupPost(e.ctx, alice, group.Group.ID, "in group")
	require.NoError(t, err)

	_, err = e.posts.ToggleLike(e.ctx, bob, first.Post.ID)
	require.NoError(t, err)

	feed, err := e.posts.Feed(e.ctx, bob, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, feed.Total)
	require.Len(t, feed.Items, 2)
	assert.Equal(t, second.Post.ID, feed.Items[0].Post.ID, "newest first")
	assert.False(t, feed.Items[0].LikedByCurrentUser)
	assert.True(t, feed.Items[1].LikedByCurrentUser)
	assert.Equal(t, "alice", feed.Items[1].Post.Author.Username)
}

func TestPostService_CreateValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.user(t, "alice")

	_, err := e.posts.CreatePost(e.ctx, alice, " \n ")
	requireKind(t, err, apperr.Validation, "Content cannot be blank.")
}

func TestPostService_GroupPostsRequireMembership(t *testing.T) {
	e := newEnv(t)
	owner, outsider := e.user(t, "owner"), e.user(t, "outsider")
	group, err := e.groups.CreateGroup(e.ctx, owner, "Hikers", "")
	require.NoError(t, err)
	gid := group.Group.ID

	post, err := e.posts.CreateGroupPost(e.ctx, owner, gid, "trail report")
	require.NoError(t, err)
	require.NotNil(t, post.Post.GroupID)

	_, err = e.posts.CreateGroupPost(e.ctx, outsider, gid, "hi")
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
	_, err = e.posts.ListGroupPosts(e.ctx, outsider, gid, 1, 10)
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
	_, err = e.posts.GetPost(e.ctx, outsider, post.Post.ID)
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
	_, err = e.posts.ToggleLike(e.ctx, outsider, post.Post.ID)
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
	_, err = e.comments.CreateComment(e.ctx, outsider, post.Post.ID, "let me in")
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
	_, err = e.posts.ListGroupPosts(e.ctx, outsider, 9999, 1, 10)
	requireKind(t, err, apperr.NotFound, "Group not found.")

	_, err = e.groups.Join(e.ctx, outsider, gid)
	require.NoError(t, err)
	posts, err := e.posts.ListGroupPosts(e.ctx, outsider, gid, 1, 10)
	require.NoError(t, err)
	require.Len(t, posts.Items, 1)

	require.NoError(t, e.groups.Leave(e.ctx, outsider, gid))
	_, err = e.posts.GetPost(e.ctx, outsider, post.Post.ID)
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
}

func TestPostService_UpdateAndDeleteAreAuthorOnly(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	post, err := e.posts.CreatePost(e.ctx, alice, "draft")
	require.NoError(t, err)
	pid := post.Post.ID

	_, err = e.posts.UpdatePost(e.ctx, bob, pid, "vandalism")
	requireKind(t, err, apperr.Forbidden, "You can only edit your own posts.")
	err = e.posts.DeletePost(e.ctx, bob, pid)
	requireKind(t, err, apperr.Forbidden, "You can only delete your own posts.")

	updated, err := e.posts.UpdatePost(e.ctx, alice, pid, "final")
	require.NoError(t, err)
	assert.Equal(t, "final", updated.Post.Content)

	_, err = e.comments.CreateComment(e.ctx, bob, pid, "nice")
	require.NoError(t, err)
	_, err = e.posts.ToggleLike(e.ctx, bob, pid)
	require.NoError(t, err)

	require.NoError(t, e.posts.DeletePost(e.ctx, alice, pid))
	_, err = e.posts.GetPost(e.ctx, alice, pid)
	requireKind(t, err, apperr.NotFound, "Post not found.")

	var comments, likes int64
	require.NoError(t, e.db.Model(&models.Comment{}).Count(&comments).Error)
	require.NoError(t, e.db.Model(&models.Like{}).Count(&likes).Error)
	assert.Zero(t, comments)
	assert.Zero(t, likes)
}

func TestCommentService_CounterFollowsComments(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	post, err := e.posts.CreatePost(e.ctx, alice, "hello")
	require.NoError(t, err)
	pid := post.Post.ID

	_, err = e.comments.CreateComment(e.ctx, bob, pid, "   ")
	requireKind(t, err, apperr.Validation, "Content cannot be blank.")

	c1, err := e.comments.CreateComment(e.ctx, bob, pid, "first")
	require.NoError(t, err)
	assert.Equal(t, "bob", c1.Author.Username)
	_, err = e.comments.CreateComment(e.ctx, alice, pid, "second")
	require.NoError(t, err)

	view, err := e.posts.GetPost(e.ctx, alice, pid)
	require.NoError(t, err)
	assert.EqualValues(t, 2, view.Post.CommentsCount)
	require.Len(t, view.Post.Comments, 2)
	assert.Equal(t, "first", view.Post.Comments[0].Content)
	assert.Equal(t, "bob", view.Post.Comments[0].Author.Username)

	err = e.comments.DeleteComment(e.ctx, alice, c1.ID)
	requireKind(t, err, apperr.Forbidden, "You can only delete your own comments.")

	require.NoError(t, e.comments.DeleteComment(e.ctx, bob, c1.ID))
	err = e.comments.DeleteComment(e.ctx, bob, c1.ID)
	requireKind(t, err, apperr.NotFound, "Comment not found.")

	list, err := e.comments.ListComments(e.ctx, bob, pid)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "second", list[0].Content)

	view, err = e.posts.GetPost(e.ctx, alice, pid)
	require.NoError(t, err)
	assert.EqualValues(t, 1, view.Post.CommentsCount)
}

func TestCommentService_UpdateAndGet(t *testing.T) {
	e := newEnv(t)
	alice, bob := e.user(t, "alice"), e.user(t, "bob")
	post, err := e.posts.CreatePost(e.ctx, alice, "hello")
	require.NoError(t, err)
	c, err := e.comments.CreateComment(e.ctx, bob, post.Post.ID, "typo")
	require.NoError(t, err)

	_, err = e.comments.UpdateComment(e.ctx, alice, c.ID, "edited")
	requireKind(t, err, apperr.Forbidden, "You can only edit your own comments.")
	_, err = e.comments.UpdateComment(e.ctx, bob, c.ID, "")
	requireKind(t, err, apperr.Validation, "Content cannot be blank.")

	updated, err := e.comments.UpdateComment(e.ctx, bob, c.ID, "fixed")
	require.NoError(t, err)
	assert.Equal(t, "fixed", updated.Content)

	got, err := e.comments.GetComment(e.ctx, alice, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "fixed", got.Content)

	_, err = e.comments.GetComment(e.ctx, alice, 9999)
	requireKind(t, err, apperr.NotFound, "Comment not found.")
}

func TestCommentService_DeleteChecksGroupAccessFirst(t *testing.T) {
	e := newEnv(t)
	owner, member, outsider := e.user(t, "owner"), e.user(t, "member"), e.user(t, "outsider")
	group, err := e.groups.CreateGroup(e.ctx, owner, "Hikers", "")
	require.NoError(t, err)
	gid := group.Group.ID
	_, err = e.groups.Join(e.ctx, member, gid)
	require.NoError(t, err)

	post, err := e.posts.CreateGroupPost(e.ctx, owner, gid, "trail report")
	require.NoError(t, err)
	c, err := e.comments.CreateComment(e.ctx, member, post.Post.ID, "see you there")
	require.NoError(t, err)

	err = e.comments.DeleteComment(e.ctx, outsider, c.ID)
	requireKind(t, err, apperr.Forbidden, groupContentMsg)

	err = e.comments.DeleteComment(e.ctx, owner, c.ID)
	requireKind(t, err, apperr.Forbidden, "You can only delete your own comments.")

	require.NoError(t, e.groups.Leave(e.ctx, member, gid))
	err = e.comments.DeleteComment(e.ctx, member, c.ID)
	requireKind(t, err, apperr.Forbidden, groupContentMsg)
}
