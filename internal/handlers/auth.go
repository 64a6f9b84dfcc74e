package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/talentlink/talentlink/internal/auth"
	"github.com/talentlink/talentlink/internal/middleware"
	"github.com/talentlink/talentlink/internal/models"
	"github.com/talentlink/talentlink/internal/services"
	"github.com/talentlink/talentlink/pkg/response"
)

// AuthHandler serves registration, login and the current-user endpoint.
type AuthHandler struct {
	users    *services.UserService
	jwt      *auth.JWTService
	notifier *services.Notifier
}

func NewAuthHandler(users *services.UserService, jwt *auth.JWTService, notifier *services.Notifier) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, notifier: notifier}
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userPayload struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsStaff bool   `json:"is_staff"`
}

func mapUser(user *models.User) userPayload {
	return userPayload{ID: user.ID, Name: user.Name, Email: user.Email, IsStaff: user.IsStaff}
}

// Register creates an account and alerts staff about the signup.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Create(c.Request.Context(), services.CreateUserInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notifier.UserRegistered(c.Request.Context(), user)

	response.JSON(c, http.StatusCreated, mapUser(user))
}

// Login exchanges credentials for an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error(c, err)
		return
	}

	token, err := h.jwt.GenerateAccessToken(auth.AccessTokenInput{
		UserID:  user.ID,
		Email:   user.Email,
		IsStaff: user.IsStaff,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	h.notifier.LoginSucceeded(c.Request.Context(), user.ID, c.ClientIP())

	response.JSON(c, http.StatusOK, gin.H{
		"token": token,
		"user":  mapUser(user),
	})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.GetString(middleware.CtxUserIDKey))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, mapUser(user))
}
