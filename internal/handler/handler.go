// Package handler exposes the services over HTTP with gin.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"socialhub/backend/internal/apperr"
	"socialhub/backend/internal/auth"
	"socialhub/backend/internal/logging"
	"socialhub/backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler carries the services every endpoint works against.
type Handler struct {
	users    *service.UserService
	friends  *service.FriendService
	groups   *service.GroupService
	posts    *service.PostService
	comments *service.CommentService
	log      logrus.FieldLogger
}

// Services groups the dependencies of New.
type Services struct {
	Users    *service.UserService
	Friends  *service.FriendService
	Groups   *service.GroupService
	Posts    *service.PostService
	Comments *service.CommentService
}

func New(s Services, log logrus.FieldLogger) *Handler {
	return &Handler{
		users:    s.Users,
		friends:  s.Friends,
		groups:   s.Groups,
		posts:    s.Posts,
		comments: s.Comments,
		log:      log,
	}
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Detail string `json:"detail" example:"An error message"`
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var status int
	switch apperr.KindOf(err) {
	case apperr.Validation, apperr.Conflict:
		status = http.StatusBadRequest
	case apperr.Forbidden:
		status = http.StatusForbidden
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Unauthorized:
		status = http.StatusUnauthorized
	default:
		h.log.WithFields(logrus.Fields{
			"request_id": logging.RequestID(c),
			"path":       c.FullPath(),
		}).WithError(err).Error("unhandled error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "Internal server error."})
		return
	}

	var appErr *apperr.Error
	errors.As(err, &appErr)
	c.JSON(status, ErrorResponse{Detail: appErr.Message})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Detail: msg})
}

// bind decodes the JSON body into dst, replying 400 on failure.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, bindingMessage(err))
		return false
	}
	return true
}

// idParam parses a numeric path parameter, replying 400 when it is malformed.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		badRequest(c, "Invalid "+name+".")
		return 0, false
	}
	return uint(id), true
}

func currentUser(c *gin.Context) uint {
	id, _ := auth.UserID(c)
	return id
}
