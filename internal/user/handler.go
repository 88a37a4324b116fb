package user

import (
	"document-archive/internal/errors"
	"document-archive/internal/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Handler handles HTTP requests for users
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// GetProfile returns the user behind the bearer token.
func (h *Handler) GetProfile(c *gin.Context) {
	userID := c.GetUint64(middleware.UserIDKey)
	if userID == 0 {
		c.Error(errors.Unauthorized("user not found", nil))
		return
	}

	user, err := h.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user.ToSafeUser())
}

func (h *Handler) Logout(c *gin.Context) {
	userID := c.GetUint64(middleware.UserIDKey)
	if userID == 0 {
		c.Error(errors.Unauthorized("user not found", nil))
		return
	}

	if err := h.service.Logout(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
