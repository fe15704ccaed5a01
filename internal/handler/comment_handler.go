package handler

import (
	"net/http"
	"time"

	"socialhub/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type CommentInput struct {
	Content string `json:"content" example:"Nice post!"`
}

type CommentResponse struct {
	ID        uint               `json:"id"`
	PostID    uint               `json:"postId"`
	Author    PublicUserResponse `json:"author"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

func newCommentResponse(cm *models.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		PostID:    cm.PostID,
		Author:    newPublicUserResponse(cm.Author),
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}
}

// endregion

// ListComments godoc
// @Summary      List comments of a post
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {array}   CommentResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [get]
func (h *Handler) ListComments(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}

	comments, err := h.comments.ListComments(c.Request.Context(), currentUser(c), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]CommentResponse, len(comments))
	for i := range comments {
		resp[i] = newCommentResponse(&comments[i])
	}
	c.JSON(http.StatusOK, resp)
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Post ID"
// @Param        input body      CommentInput  true  "Comment"
// @Success      201   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
	postID, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input CommentInput
	if !bind(c, &input) {
		return
	}

	comment, err := h.comments.CreateComment(c.Request.Context(), currentUser(c), postID, input.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newCommentResponse(comment))
}

// GetComment godoc
// @Summary      Get a comment
// @Tags         comments
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Comment ID"
// @Success      200  {object}  CommentResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id} [get]
func (h *Handler) GetComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	comment, err := h.comments.GetComment(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// UpdateComment godoc
// @Summary      Edit a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Comment ID"
// @Param        input body      CommentInput  true  "Comment"
// @Success      200   {object}  CommentResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      403   {object}  ErrorResponse "Not the author"
// @Failure      404   {object}  ErrorResponse
// @Router       /comments/{id} [patch]
func (h *Handler) UpdateComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input CommentInput
	if !bind(c, &input) {
		return
	}

	comment, err := h.comments.UpdateComment(c.Request.Context(), currentUser(c), id, input.Content)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCommentResponse(comment))
}

// DeleteComment godoc
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        id   path  int  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse "Not the author"
// @Failure      404  {object}  ErrorResponse
// @Router       /comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.comments.DeleteComment(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
