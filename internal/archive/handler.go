package archive

import (
	"document-archive/internal/domain"
	"document-archive/internal/errors"
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

// RegisterRoutes mounts the archive endpoints. The group is expected to be
// gated to administrators already.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/category-counts", h.CategoryCounts)
	rg.GET("/:id", h.Show)
	rg.GET("/:id/children", h.Children)
	rg.POST("", h.Archive)
	rg.POST("/compiled/:id", h.ArchiveCompiled)
	rg.DELETE("/:id", h.Restore)
	rg.DELETE("/:id/permanent", h.Purge)
}

func (h *Handler) List(c *gin.Context) {
	page, size := utils.GetPaginationParams(c)
	params := ListParams{
		Page:         page,
		PageSize:     size,
		Type:         domain.Category(strings.ToUpper(strings.TrimSpace(c.Query("type")))),
		Search:       strings.TrimSpace(c.Query("search")),
		CompiledOnly: utils.QueryBool(c, "compiled_only"),
	}

	result, err := h.service.ListArchived(c.Request.Context(), params)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Show(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	record, err := h.service.GetArchived(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

type ArchiveRequest struct {
	DocumentID      uint64 `json:"document_id" binding:"required,gt=0"`
	ArchiveChildren *bool  `json:"archive_children"`
	IsCompiled      bool   `json:"is_compiled"`
}

func (h *Handler) Archive(c *gin.Context) {
	var input ArchiveRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	opts := ArchiveOptions{ArchiveChildren: true, IsCompiled: input.IsCompiled}
	if input.ArchiveChildren != nil {
		opts.ArchiveChildren = *input.ArchiveChildren
	}
	h.archive(c, input.DocumentID, opts)
}

// ArchiveCompiled archives a compiled group addressed by path, children included
// unless ?archive_children=false.
func (h *Handler) ArchiveCompiled(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}
	opts := ArchiveOptions{
		ArchiveChildren: c.DefaultQuery("archive_children", "true") != "false",
		IsCompiled:      true,
	}
	h.archive(c, id, opts)
}

func (h *Handler) archive(c *gin.Context, id uint64, opts ArchiveOptions) {
	result, err := h.service.Archive(c.Request.Context(), id, opts)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Document archived successfully",
		"data":    result,
	})
}

func (h *Handler) Restore(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	result, err := h.service.Restore(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Document restored successfully",
		"data":    result,
	})
}

func (h *Handler) Children(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	children, err := h.service.ArchivedChildren(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"children": children})
}

func (h *Handler) CategoryCounts(c *gin.Context) {
	counts, err := h.service.CategoryCounts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_counts": counts})
}

func (h *Handler) Purge(c *gin.Context) {
	id, err := utils.ParseID(c, "id")
	if err != nil {
		c.Error(err)
		return
	}

	if err := h.service.Purge(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
