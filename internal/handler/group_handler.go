package handler

import (
	"net/http"
	"time"

	"socialhub/backend/internal/models"
	"socialhub/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

type GroupInput struct {
	Name        string `json:"name" example:"Book Club"`
	Description string `json:"description" example:"We read one novel a month."`
}

type GroupResponse struct {
	ID           uint               `json:"id" example:"1"`
	Name         string             `json:"name" example:"Book Club"`
	Description  string             `json:"description"`
	Owner        PublicUserResponse `json:"owner"`
	MembersCount int64              `json:"membersCount" example:"2"`
	CreatedAt    time.Time          `json:"createdAt"`
}

type MembershipResponse struct {
	ID       uint               `json:"id"`
	User     PublicUserResponse `json:"user"`
	Role     models.GroupRole   `json:"role" example:"member"`
	JoinedAt time.Time          `json:"joinedAt"`
}

// PaginatedGroupResponse documents PaginatedResponse[GroupResponse] for swag.
type PaginatedGroupResponse struct {
	Data []GroupResponse `json:"data"`
	Meta PaginationMeta  `json:"meta"`
}

func newGroupResponse(g *service.GroupSummary) GroupResponse {
	return GroupResponse{
		ID:           g.Group.ID,
		Name:         g.Group.Name,
		Description:  g.Group.Description,
		Owner:        newPublicUserResponse(g.Group.Owner),
		MembersCount: g.MembersCount,
		CreatedAt:    g.Group.CreatedAt,
	}
}

// endregion

// ListGroups godoc
// @Summary      List groups
// @Description  Gets a paginated list of groups ordered by name.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200   {object}  PaginatedGroupResponse
// @Failure      401   {object}  ErrorResponse
// @Router       /groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
	page, limit := pageParams(c)

	groups, err := h.groups.List(c.Request.Context(), page, limit)
	if err != nil {
		h.respondError(c, err)
		return
	}

	data := make([]GroupResponse, len(groups.Items))
	for i := range groups.Items {
		data[i] = newGroupResponse(&groups.Items[i])
	}
	c.JSON(http.StatusOK, NewPaginatedResponse(data, groups.Total, page, limit))
}

// CreateGroup godoc
// @Summary      Create a group
// @Description  Creates a group owned by the current user.
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body GroupInput true "Group Info"
// @Success      201  {object}  GroupResponse
// @Failure      400  {object}  ErrorResponse "Blank or taken name"
// @Router       /groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var input GroupInput
	if !bind(c, &input) {
		return
	}

	group, err := h.groups.CreateGroup(c.Request.Context(), currentUser(c), input.Name, input.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newGroupResponse(group))
}

// GetGroup godoc
// @Summary      Get a group
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  GroupResponse
// @Failure      404  {object}  ErrorResponse "Group not found"
// @Router       /groups/{id} [get]
func (h *Handler) GetGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groups.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupResponse(group))
}

// JoinGroup godoc
// @Summary      Join a group
// @Description  Adds the current user as a member. Joining twice has no effect.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {object}  GroupResponse
// @Failure      404  {object}  ErrorResponse "Group not found"
// @Router       /groups/{id}/join [post]
func (h *Handler) JoinGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	group, err := h.groups.Join(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newGroupResponse(group))
}

// LeaveGroup godoc
// @Summary      Leave a group
// @Tags         groups
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Not a member, or the owner"
// @Failure      404  {object}  ErrorResponse "Group not found"
// @Router       /groups/{id}/leave [post]
func (h *Handler) LeaveGroup(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.groups.Leave(c.Request.Context(), currentUser(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListGroupMembers godoc
// @Summary      List group members
// @Description  Lists memberships ordered by username. Members only.
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Group ID"
// @Success      200  {array}   MembershipResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /groups/{id}/members [get]
func (h *Handler) ListGroupMembers(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	members, err := h.groups.ListMembers(c.Request.Context(), currentUser(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]MembershipResponse, len(members))
	for i, m := range members {
		resp[i] = MembershipResponse{
			ID:       m.ID,
			User:     newPublicUserResponse(m.User),
			Role:     m.Role,
			JoinedAt: m.JoinedAt,
		}
	}
	c.JSON(http.StatusOK, resp)
}

// RemoveGroupMember godoc
// @Summary      Remove a member
// @Description  Removes a member from the group. Only the owner may do this, and the owner cannot be removed.
// @Tags         groups
// @Security     BearerAuth
// @Param        id      path  int  true  "Group ID"
// @Param        userId  path  int  true  "User ID"
// @Success      204
// @Failure      400  {object}  ErrorResponse "Target is the owner"
// @Failure      403  {object}  ErrorResponse "Only the group owner can remove members"
// @Failure      404  {object}  ErrorResponse "Group or membership not found"
// @Router       /groups/{id}/members/{userId} [delete]
func (h *Handler) RemoveGroupMember(c *gin.Context) {
	groupID, ok := idParam(c, "id")
	if !ok {
		return
	}
	userID, ok := idParam(c, "userId")
	if !ok {
		return
	}

	if err := h.groups.RemoveMember(c.Request.Context(), currentUser(c), groupID, userID); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
