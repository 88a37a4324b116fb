package document

import (
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	"document-archive/internal/utils"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
)

const RequesterEmailHeader = "X-Requester-Email"

type Handler struct {
	service        Service
	maxUploadBytes int64
}

func NewHandler(service Service, maxUploadMB int64) *Handler {
	if maxUploadMB <= 0 {
		maxUploadMB = 50
	}
	return &Handler{service: service, maxUploadBytes: maxUploadMB << 20}
}

func (h *Handler) List(c *gin.Context) {
	page, size := utils.GetPaginationParams(c)
	params := ListParams{
		Category: domain.Category(strings.ToUpper(strings.TrimSpace(c.Query("category")))),
		Volume:   strings.TrimSpace(c.Query("volume")),
		Page:     page,
		Size:     size,
		Sort:     SortOrder(strings.ToLower(c.DefaultQuery("sort", string(SortLatest)))),
	}

	result, err := h.service.ListDocuments(c.Request.Context(), params)
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

	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		email = strings.TrimSpace(c.GetHeader(RequesterEmailHeader))
	}

	doc, err := h.service.GetDocument(c.Request.Context(), id, email)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

func (h *Handler) CategoryCounts(c *gin.Context) {
	counts, err := h.service.CategoryCounts(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_counts": counts})
}

func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))

	result, err := h.service.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Upload takes a multipart form with the file under "file" and the metadata as
// plain fields. Authors and topics may be repeated or comma separated.
func (h *Handler) Upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+1<<20)

	header, err := c.FormFile("file")
	if err != nil {
		c.Error(errors.BadRequest("file is required", err))
		return
	}
	if header.Size > h.maxUploadBytes {
		c.Error(errors.New(http.StatusRequestEntityTooLarge, errors.CodeValidation,
			"File exceeds the upload limit of "+humanize.IBytes(uint64(h.maxUploadBytes)), nil))
		return
	}

	file, err := header.Open()
	if err != nil {
		c.Error(errors.BadRequest("Unreadable file", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.Error(errors.BadRequest("Unreadable file", err))
		return
	}

	input := UploadInput{
		Title:       c.PostForm("title"),
		Abstract:    c.PostForm("abstract"),
		Category:    domain.Category(strings.ToUpper(strings.TrimSpace(c.PostForm("category")))),
		Volume:      strings.TrimSpace(c.PostForm("volume")),
		IssueNumber: strings.TrimSpace(c.PostForm("issue_number")),
		IsPublic:    true,
		Authors:     splitList(c.PostFormArray("authors")),
		Topics:      splitList(c.PostFormArray("topics")),
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Data:        data,
	}
	if raw := strings.TrimSpace(c.PostForm("is_public")); raw != "" {
		isPublic, err := strconv.ParseBool(raw)
		if err != nil {
			c.Error(errors.BadRequest("is_public must be true or false", err))
			return
		}
		input.IsPublic = isPublic
	}
	if raw := strings.TrimSpace(c.PostForm("publication_date")); raw != "" {
		date, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			c.Error(errors.BadRequest("publication_date must be YYYY-MM-DD", err))
			return
		}
		input.PublicationDate = &date
	}

	doc, err := h.service.Upload(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) CreateCompiled(c *gin.Context) {
	var input CompiledInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.Error(errors.NewValidationError(err))
		return
	}

	result, err := h.service.CreateCompiled(c.Request.Context(), input)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) Reindex(c *gin.Context) {
	n, err := h.service.Reindex(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"indexed": n})
}

func splitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
