package handler

import (
	"net/http"
	"time"

	"socialhub/backend/internal/models"
	"socialhub/backend/internal/service"
	"socialhub/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Username        string `json:"username" binding:"required" example:"alice"`
	Email           string `json:"email" binding:"required,email" example:"alice@example.com"`
	Password        string `json:"password" binding:"required" example:"password123"`
	ConfirmPassword string `json:"confirmPassword" binding:"required" example:"password123"`
	FirstName       string `json:"firstName" example:"Alice"`
	LastName        string `json:"lastName" example:"Liddell"`
	Bio             string `json:"bio"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Email    string `json:"email" binding:"required" example:"alice@example.com"`
	Password string `json:"password" binding:"required" example:"password123"`
}

type RefreshInput struct {
	Refresh string `json:"refresh" binding:"required"`
}

// UpdateProfileInput holds the editable profile fields; omitted fields are unchanged.
type UpdateProfileInput struct {
	Username  *string `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Bio       *string `json:"bio"`
}

// PublicUserResponse is how other users appear in friend, group and post payloads.
type PublicUserResponse struct {
	ID        uint   `json:"id" example:"1"`
	Username  string `json:"username" example:"alice"`
	FirstName string `json:"firstName" example:"Alice"`
	LastName  string `json:"lastName" example:"Liddell"`
}

// ProfileResponse is the authenticated user's own profile.
type ProfileResponse struct {
	ID        uint      `json:"id" example:"1"`
	Username  string    `json:"username" example:"alice"`
	Email     string    `json:"email" example:"alice@example.com"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Bio       string    `json:"bio"`
	Friends   []uint    `json:"friends"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   ProfileResponse `json:"user"`
	Tokens jwt.Pair        `json:"tokens"`
}

func newPublicUserResponse(u models.User) PublicUserResponse {
	return PublicUserResponse{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

func newProfileResponse(p *service.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.User.ID,
		Username:  p.User.Username,
		Email:     p.User.Email,
		FirstName: p.User.FirstName,
		LastName:  p.User.LastName,
		Bio:       p.User.Bio,
		Friends:   p.FriendIDs,
		CreatedAt: p.User.CreatedAt,
	}
}

// endregion

// region --- Auth Handlers ---

// Register godoc
// @Summary      Register a new user
// @Description  Creates a new user and returns an access/refresh token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      429  {object}  ErrorResponse
// @Router       /auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var input RegisterInput
	if !bind(c, &input) {
		return
	}

	profile, tokens, err := h.users.Register(c.Request.Context(), service.RegisterParams{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		FirstName:       input.FirstName,
		LastName:        input.LastName,
		Bio:             input.Bio,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{User: newProfileResponse(profile), Tokens: tokens})
}

// Login godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email and password, and returns a new token pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  AuthResponse
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      429  {object}  ErrorResponse
// @Router       /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var input LoginInput
	if !bind(c, &input) {
		return
	}

	profile, tokens, err := h.users.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, AuthResponse{User: newProfileResponse(profile), Tokens: tokens})
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Exchanges a refresh token for a new access/refresh pair.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RefreshInput true "Refresh token"
// @Success      200  {object}  jwt.Pair
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /auth/token/refresh [post]
func (h *Handler) RefreshToken(c *gin.Context) {
	var input RefreshInput
	if !bind(c, &input) {
		return
	}

	tokens, err := h.users.Refresh(c.Request.Context(), input.Refresh)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tokens)
}

// endregion

// region --- User Handlers ---

// GetMe godoc
// @Summary      Get current user
// @Description  Returns the authenticated user's profile with the ids of their friends.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	profile, err := h.users.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// UpdateMe godoc
// @Summary      Update current user
// @Description  Partially updates the authenticated user's profile. Email cannot be changed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile fields"
// @Success      200  {object}  ProfileResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me [patch]
func (h *Handler) UpdateMe(c *gin.Context) {
	var input UpdateProfileInput
	if !bind(c, &input) {
		return
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c), service.ProfileUpdate{
		Username:  input.Username,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Bio:       input.Bio,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProfileResponse(profile))
}

// endregion
