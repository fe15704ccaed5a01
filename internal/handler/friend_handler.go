package handler

import (
	"net/http"
	"time"

	"socialhub/backend/internal/models"
	"socialhub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type SendRequestInput struct {
	ReceiverID uint `json:"receiverId" binding:"required" example:"2"`
}

type RespondInput struct {
	Action string `json:"action" example:"accept" enums:"accept,reject"`
}

type FriendRequestResponse struct {
	ID          uint                       `json:"id" example:"1"`
	Sender      PublicUserResponse         `json:"sender"`
	Receiver    PublicUserResponse         `json:"receiver"`
	Status      models.FriendRequestStatus `json:"status" example:"pending"`
	CreatedAt   time.Time                  `json:"createdAt"`
	RespondedAt *time.Time                 `json:"respondedAt"`
}

// SearchUserResponse is a user annotated with how they relate to the searcher.
type SearchUserResponse struct {
	PublicUserResponse
	RelationshipStatus service.RelationshipStatus `json:"relationshipStatus" example:"none"`
}

func newFriendRequestResponse(r *models.FriendRequest) FriendRequestResponse {
	return FriendRequestResponse{
		ID:          r.ID,
		Sender:      newPublicUserResponse(r.Sender),
		Receiver:    newPublicUserResponse(r.Receiver),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		RespondedAt: r.RespondedAt,
	}
}

// endregion

// ListFriendRequests godoc
// @Summary      List friend requests
// @Description  Lists the current user's friend requests, newest first.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        direction query     string  false  "incoming (default), outgoing or all"
// @Param        status    query     string  false  "pending, accepted or rejected"
// @Success      200       {array}   FriendRequestResponse
// @Failure      401       {object}  ErrorResponse
// @Router       /friends/requests [get]
func (h *Handler) ListFriendRequests(c *gin.Context) {
	direction := service.ParseDirection(c.Query("direction"))
	status := models.FriendRequestStatus(c.Query("status"))

	requests, err := h.friends.List(c.Request.Context(), currentUser(c), direction, status)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]FriendRequestResponse, len(requests))
	for i := range requests {
		resp[i] = newFriendRequestResponse(&requests[i])
	}
	c.JSON(http.StatusOK, resp)
}

// SendFriendRequest godoc
// @Summary      Send a friend request
// @Description  Sends a friend request, or re-opens a previously rejected one.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SendRequestInput true "Receiver"
// @Success      201  {object}  FriendRequestResponse
// @Failure      400  {object}  ErrorResponse "Already friends, already pending or self request"
// @Failure      404  {object}  ErrorResponse "User not found"
// @Router       /friends/requests [post]
func (h *Handler) SendFriendRequest(c *gin.Context) {
	var input SendRequestInput
	if !bind(c, &input) {
		return
	}

	request, err := h.friends.Send(c.Request.Context(), currentUser(c), input.ReceiverID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newFriendRequestResponse(request))
}

// GetFriendRequest godoc
// @Summary      Get a friend request
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      200  {object}  FriendRequestResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/requests/{id} [get]
func (h *Handler) GetFriendRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	request, err := h.friends.Get(c.Request.Context(), id, currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFriendRequestResponse(request))
}

// CancelFriendRequest godoc
// @Summary      Cancel a friend request
// @Description  Deletes a pending request. Either participant may cancel it.
// @Tags         friends
// @Security     BearerAuth
// @Param        id   path      int  true  "Request ID"
// @Success      204
// @Failure      403  {object}  ErrorResponse "Not a participant or not pending"
// @Failure      404  {object}  ErrorResponse
// @Router       /friends/requests/{id} [delete]
func (h *Handler) CancelFriendRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.friends.Cancel(c.Request.Context(), id, currentUser(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RespondFriendRequest godoc
// @Summary      Respond to a friend request
// @Description  Accepts or rejects a pending request. Only the receiver may respond.
// @Tags         friends
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Request ID"
// @Param        input body      RespondInput  true  "Action"
// @Success      200   {object}  FriendRequestResponse
// @Failure      400   {object}  ErrorResponse "Invalid action or already processed"
// @Failure      403   {object}  ErrorResponse
// @Failure      404   {object}  ErrorResponse
// @Router       /friends/requests/{id}/respond [post]
func (h *Handler) RespondFriendRequest(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var input RespondInput
	if !bind(c, &input) {
		return
	}

	request, err := h.friends.Respond(c.Request.Context(), id, currentUser(c), service.Action(input.Action))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newFriendRequestResponse(request))
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Case-insensitive search over username, first and last name. Without a query, suggests up to 25 users who are not yet friends.
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Param        q    query     string  false  "Search query"
// @Success      200  {array}   SearchUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends/search [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	results, err := h.friends.Search(c.Request.Context(), currentUser(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]SearchUserResponse, len(results))
	for i, r := range results {
		resp[i] = SearchUserResponse{
			PublicUserResponse: newPublicUserResponse(r.User),
			RelationshipStatus: r.Status,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// ListFriends godoc
// @Summary      List friends
// @Tags         friends
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   PublicUserResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /friends [get]
func (h *Handler) ListFriends(c *gin.Context) {
	friends, err := h.friends.ListFriends(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]PublicUserResponse, len(friends))
	for i, u := range friends {
		resp[i] = newPublicUserResponse(u)
	}
	c.JSON(http.StatusOK, resp)
}

// Unfriend godoc
// @Summary      Remove a friend
// @Description  Ends the friendship on both sides.
// @Tags         friends
// @Security     BearerAuth
// @Param        userId  path  int  true  "Friend's user ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Not friends"
// @Router       /friends/{userId} [delete]
func (h *Handler) Unfriend(c *gin.Context) {
	friendID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	if err := h.friends.Unfriend(c.Request.Context(), currentUser(c), friendID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
