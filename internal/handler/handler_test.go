package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"socialhub/backend/internal/auth"
	"socialhub/backend/internal/database/dbtest"
	"socialhub/backend/internal/service"
	"socialhub/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	log := logrus.New()
	log.SetOutput(io.Discard)
	tokens := jwt.NewManager("test-secret", time.Minute, time.Hour)

	h := New(Services{
		Users:    service.NewUserService(db, tokens, log),
		Friends:  service.NewFriendService(db, log),
		Groups:   service.NewGroupService(db, log),
		Posts:    service.NewPostService(db, log),
		Comments: service.NewCommentService(db, log),
	}, log)
	limiter := auth.NewRateLimiter(1000, 1000, log)

	return &testServer{t: t, router: NewRouter(h, tokens, limiter, log)}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

// register creates a user and returns its id and access token.
func (s *testServer) register(username string) (uint, string) {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username":        username,
		"email":           username + "@example.com",
		"password":        "password123",
		"confirmPassword": "password123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var resp AuthResponse
	decode(s.t, w, &resp)
	return resp.User.ID, resp.Tokens.Access
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func detail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var e ErrorResponse
	decode(t, w, &e)
	return e.Detail
}

func TestPing(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	id, access := s.register("alice")

	w := s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "alice@example.com", "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code)
	var login AuthResponse
	decode(t, w, &login)
	assert.Equal(t, id, login.User.ID)

	w = s.do(http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password.", detail(t, w))

	w = s.do(http.MethodPost, "/api/v1/auth/token/refresh", "", gin.H{"refresh": login.Tokens.Refresh})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPatch, "/api/v1/users/me", access, gin.H{"bio": "hello"})
	require.Equal(t, http.StatusOK, w.Code)
	var me ProfileResponse
	decode(t, w, &me)
	assert.Equal(t, "hello", me.Bio)
	assert.Equal(t, []uint{}, me.Friends)
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "bob", "email": "bob@example.com",
		"password": "password123", "confirmPassword": "password999",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Passwords do not match.", detail(t, w))

	w = s.do(http.MethodPost, "/api/v1/auth/register", "", gin.H{"username": "bob"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFriendRequestFlow(t *testing.T) {
	s := newTestServer(t)
	aliceID, alice := s.register("alice")
	bobID, bob := s.register("bob")

	w := s.do(http.MethodPost, "/api/v1/friends/requests", alice, gin.H{"receiverId": bobID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var req FriendRequestResponse
	decode(t, w, &req)
	assert.Equal(t, "pending", string(req.Status))

	w = s.do(http.MethodPost, "/api/v1/friends/requests", bob, gin.H{"receiverId": aliceID})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/friends/requests", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var incoming []FriendRequestResponse
	decode(t, w, &incoming)
	require.Len(t, incoming, 1)

	path := fmt.Sprintf("/api/v1/friends/requests/%d/respond", req.ID)
	w = s.do(http.MethodPost, path, alice, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, path, bob, gin.H{"action": "accept"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, path, bob, gin.H{"action": "accept"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "This friend request has already been processed.", detail(t, w))

	w = s.do(http.MethodGet, "/api/v1/friends", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var friends []PublicUserResponse
	decode(t, w, &friends)
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].Username)

	w = s.do(http.MethodGet, "/api/v1/friends/search?q=BO", alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var results []SearchUserResponse
	decode(t, w, &results)
	require.Len(t, results, 1)
	assert.Equal(t, service.RelationshipFriends, results[0].RelationshipStatus)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", bobID), alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/v1/friends/requests/abc", alice, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/friends/requests/999", alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGroupFlow(t *testing.T) {
	s := newTestServer(t)
	zoeID, zoe := s.register("zoe")
	_, walt := s.register("walt")

	w := s.do(http.MethodPost, "/api/v1/groups", zoe, gin.H{"name": "Book Club"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var group GroupResponse
	decode(t, w, &group)
	base := fmt.Sprintf("/api/v1/groups/%d", group.ID)

	w = s.do(http.MethodGet, base+"/members", walt, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, base+"/join", walt, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &group)
	assert.EqualValues(t, 2, group.MembersCount)

	w = s.do(http.MethodDelete, fmt.Sprintf("%s/members/%d", base, zoeID), zoe, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot remove the group owner.", detail(t, w))

	w = s.do(http.MethodPost, base+"/posts", walt, gin.H{"content": "first!"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, base+"/leave", walt, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, base+"/posts", walt, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, base+"/leave", zoe, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodGet, "/api/v1/groups?page=1&limit=5", walt, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page PaginatedGroupResponse
	decode(t, w, &page)
	assert.EqualValues(t, 1, page.Meta.TotalItems)
	assert.EqualValues(t, 1, page.Data[0].MembersCount)

	w = s.do(http.MethodGet, "/api/v1/groups/999", walt, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostAndCommentFlow(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.register("alice")
	_, bob := s.register("bob")

	w := s.do(http.MethodPost, "/api/v1/posts", alice, gin.H{"content": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Content cannot be blank.", detail(t, w))

	w = s.do(http.MethodPost, "/api/v1/posts", alice, gin.H{"content": "hello"})
	require.Equal(t, http.StatusCreated, w.Code)
	var post PostResponse
	decode(t, w, &post)
	base := fmt.Sprintf("/api/v1/posts/%d", post.ID)

	w = s.do(http.MethodPost, base+"/like", bob, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var like LikeResponse
	decode(t, w, &like)
	assert.Equal(t, LikeResponse{Liked: true, LikesCount: 1}, like)

	w = s.do(http.MethodGet, "/api/v1/posts", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var feed PaginatedPostResponse
	decode(t, w, &feed)
	require.Len(t, feed.Data, 1)
	assert.True(t, feed.Data[0].LikedByCurrentUser)

	w = s.do(http.MethodPost, base+"/like", bob, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &like)
	assert.Equal(t, LikeResponse{Liked: false, LikesCount: 0}, like)

	w = s.do(http.MethodPost, base+"/comments", bob, gin.H{"content": "nice"})
	require.Equal(t, http.StatusCreated, w.Code)
	var comment CommentResponse
	decode(t, w, &comment)

	w = s.do(http.MethodGet, base, alice, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &post)
	assert.EqualValues(t, 1, post.CommentsCount)
	require.Len(t, post.Comments, 1)
	assert.Equal(t, "bob", post.Comments[0].Author.Username)

	commentPath := fmt.Sprintf("/api/v1/comments/%d", comment.ID)
	w = s.do(http.MethodPatch, commentPath, alice, gin.H{"content": "edited"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, commentPath, bob, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodPatch, base, bob, gin.H{"content": "mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, base, alice, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, base, alice, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondFriendRequest_ChecksAccessBeforeBody(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.register("alice")
	bobID, bob := s.register("bob")
	_, carol := s.register("carol")

	w := s.do(http.MethodPost, "/api/v1/friends/requests", alice, gin.H{"receiverId": bobID})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var req FriendRequestResponse
	decode(t, w, &req)
	path := fmt.Sprintf("/api/v1/friends/requests/%d/respond", req.ID)

	w = s.do(http.MethodPost, path, carol, gin.H{})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Only the receiver can respond to a friend request.", detail(t, w))

	w = s.do(http.MethodPost, "/api/v1/friends/requests/999/respond", carol, gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Friend request not found.", detail(t, w))

	w = s.do(http.MethodPost, path, bob, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Action must be one of: accept, reject.", detail(t, w))
}

func TestBindErrorsNameJSONFields(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.register("alice")

	tests := []struct {
		name   string
		path   string
		token  string
		body   any
		detail string
	}{
		{
			name:   "missing field",
			path:   "/api/v1/auth/register",
			body:   gin.H{"username": "bob", "password": "password123", "confirmPassword": "password123"},
			detail: "email is required.",
		},
		{
			name:   "bad email",
			path:   "/api/v1/auth/register",
			body:   gin.H{"username": "bob", "email": "nope", "password": "password123", "confirmPassword": "password123"},
			detail: "email must be a valid email address.",
		},
		{
			name:   "wrong type",
			path:   "/api/v1/friends/requests",
			token:  alice,
			body:   gin.H{"receiverId": "two"},
			detail: "receiverId must be a uint.",
		},
		{
			name:   "not an object",
			path:   "/api/v1/friends/requests",
			token:  alice,
			body:   "hello",
			detail: "Request body must be valid JSON.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := s.do(http.MethodPost, tc.path, tc.token, tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tc.detail, detail(t, w))
		})
	}
}
