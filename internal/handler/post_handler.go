package handler

import (
	"net/http"
	"time"

	"socialhub/backend/internal/service"
	"socialhub/backend/internal/store"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type PostInput struct {
	Content string `json:"content" example:"Hello, world!"`
}

type PostResponse struct {
	ID                 uint               `json:"id" example:"1"`
	Author             PublicUserResponse `json:"author"`
	GroupID            *uint              `json:"groupId"`
	Content            string             `json:"content"`
	CreatedAt          time.Time          `json:"createdAt"`
	LikesCount         int64              `json:"likesCount"`
	CommentsCount      int64              `json:"commentsCount"`
	LikedByCurrentUser bool               `json:"likedByCurrentUser"`
	Comments           []CommentResponse  `json:"comments"`
}

type LikeResponse struct {
	Liked      bool  `json:"liked"`
	LikesCount int64 `json:"likesCount"`
}

// PaginatedPostResponse documents PaginatedResponse[PostResponse] for swag.
type PaginatedPostResponse struct {
	Data []PostResponse `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

func newPostResponse(v *service.PostView) PostResponse {
	comments := make([]CommentResponse, len(v.Post.Comments))
	for i := range v.Post.Comments {
		comments[i] = newCommentResponse(&v.Post.Comments[i])
	}
	return PostResponse{
		ID:                 v.Post.ID,
		Author:             newPublicUserResponse(v.Post.Author),
		GroupID:            v.Post.GroupID,
		Content:            v.Post.Content,
		CreatedAt:          v.Post.CreatedAt,
		LikesCount:         v.Post.LikesCount,
		CommentsCount:      v.Post.CommentsCount,
		LikedByCurrentUser: v.LikedByCurrentUser,
		Comments:           comments,
	}
}

func newPostPage(p store.Page[service.PostView], page, limit int) PaginatedResponse[PostResponse] {
	data := make([]PostResponse, len(p.Items))
	for i := range p.Items {
		data[i] = newPostResponse(&p.Items[i])
	}
	return NewPaginatedResponse(data, p.Total, page, limit)
}

// endregion

// Feed godoc
// @Summary      List personal posts
// @Description  Gets a paginated list of posts outside groups, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200   {object}  PaginatedPostResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /posts [get]
func (h *Handler) Feed(c *gin.Context) {
	page, limit := pageParams(c)

	posts, err := h.posts.Feed(c.Request.Context(), currentUser(c), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostPage(posts, page, limit))
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var input PostInput
	if !bind(c, &input) {
		return
	}

	post, err := h.posts.CreatePost(c.Request.Context(), currentUser(c), input.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(post))
}

// ListGroupPosts godoc
// @Summary      List group posts
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int  true   "Group ID"
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200   {object}  PaginatedPostResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /groups/{id}/posts [get]
func (h *Handler) ListGroupPosts(c *gin.Context) {
	groupID, ok := idParam(c, "id")
	if !ok {
		return
	}
	page, limit := pageParams(c)

	posts, err := h.posts.ListGroupPosts(c.Request.Context(), currentUser(c), groupID, page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostPage(posts, page, limit))
}

// CreateGroupPost godoc
// @Summary      Post in a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int        true  "Group ID"
// @Param        input body      PostInput  true  "Post"
// @Success      201   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /groups/{id}/posts [post]
func (h *Handler) CreateGroupPost(c *gin.Context) {
	groupID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input PostInput
	if !bind(c, &input) {
		return
	}

	post, err := h.posts.CreateGroupPost(c.Request.Context(), currentUser(c), groupID, input.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newPostResponse(post))
}

// GetPost godoc
// @Summary      Get a post
// @Description  Returns a post with its comments, oldest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func (h *Handler) GetPost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(post))
}

// UpdatePost godoc
// @Summary      Edit a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int        true  "Post ID"
// @Param        input body      PostInput  true  "Post"
// @Success      200   {object}  PostResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not the author"
// @Failure      404   {object}  ErrorResponse
// @Router       /posts/{id} [patch]
func (h *Handler) UpdatePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input PostInput
	if !bind(c, &input) {
		return
	}

	post, err := h.posts.UpdatePost(c.Request.Context(), currentUser(c), id, input.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newPostResponse(post))
}

// DeletePost godoc
// @Summary      Delete a post
// @Tags         posts
// @Security     BearerAuth
// @Param        id   path  int  true  "Post ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse "Not the author"
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.posts.DeletePost(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ToggleLike godoc
// @Summary      Like or unlike a post
// @Description  Toggles the current user's like. Returns 201 when the post became liked, 200 when unliked.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  LikeResponse
// @Success      201  {object}  LikeResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	res, err := h.posts.ToggleLike(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	status := http.StatusOK
	if res.Liked {
		status = http.StatusCreated
	}
	c.JSON(status, LikeResponse{Liked: res.Liked, LikesCount: res.LikesCount})
}

