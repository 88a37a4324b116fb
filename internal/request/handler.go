package request

import (
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	"document-archive/internal/middleware"
	"document-archive/internal/utils"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var input CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	req, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) List(c *gin.Context) {
	page, size := utils.GetPaginationParams(c)
	params := ListParams{
		Page:     page,
		PageSize: size,
		Status:   domain.RequestStatus(strings.ToLower(c.Query("status"))),
	}
	if raw := c.Query("document_id"); raw != "" {
		id, err := utils.ParseIDValue(raw, "document_id")
		if err != nil {
			c.Error(err)
			return
		}
		params.DocumentID = id
	}

	result, err := h.service.List(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Review(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	var input ReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	reviewerID := c.GetUint64(middleware.UserIDKey)
	req, err := h.service.Review(c.Request.Context(), id, reviewerID, domain.RequestStatus(input.Status), strings.TrimSpace(input.Note))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// CheckAccess answers GET /api/documents/:id/access?email=
func (h *Handler) CheckAccess(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	allowed, err := h.service.CheckAccess(c.Request.Context(), id, c.Query("email"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, AccessResult{DocumentID: id, Allowed: allowed})
}
