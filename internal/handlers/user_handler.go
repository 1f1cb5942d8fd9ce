package handlers

import (
	"net/http"

	"filesmanager/backend/internal/apperrors"
	"filesmanager/backend/internal/middleware"
	"filesmanager/backend/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// RegisterPayload is the body of POST /users.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var payload RegisterPayload
	if err := bindJSON(c, &payload); err != nil {
		respondError(c, err)
		return
	}

	user, err := h.users.Register(c.Request.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID.Hex(), "email": user.Email})
}

// Connect exchanges Basic credentials for a session token.
func (h *UserHandler) Connect(c *gin.Context) {
	email, password, ok := c.Request.BasicAuth()
	if !ok {
		respondError(c, apperrors.ErrUnauthenticated)
		return
	}
	token, err := h.users.Connect(c.Request.Context(), email, password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

func (h *UserHandler) Disconnect(c *gin.Context) {
	if err := h.users.Disconnect(c.Request.Context(), c.GetHeader(middleware.TokenHeader)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), middleware.ForContext(c.Request.Context()))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID.Hex(), "email": user.Email})
}
