package archive

import (
	"bytes"
	"context"
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	"document-archive/internal/middleware"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) ListArchived(ctx context.Context, params ListParams) (*ListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ListResult), args.Error(1)
}

func (m *MockService) GetArchived(ctx context.Context, id uint64) (*ArchivedRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ArchivedRecord), args.Error(1)
}

func (m *MockService) Archive(ctx context.Context, id uint64, opts ArchiveOptions) (*ArchiveResult, error) {
	args := m.Called(ctx, id, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ArchiveResult), args.Error(1)
}

func (m *MockService) Restore(ctx context.Context, id uint64) (*RestoreResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RestoreResult), args.Error(1)
}

func (m *MockService) ArchivedChildren(ctx context.Context, id uint64) ([]ArchivedChild, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ArchivedChild), args.Error(1)
}

func (m *MockService) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CategoryCount), args.Error(1)
}

func (m *MockService) Purge(ctx context.Context, id uint64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func setupRouter(handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	handler.RegisterRoutes(r.Group("/api/archives"))
	return r
}

func perform(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_List(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	expected := ListParams{Page: 2, PageSize: 5, Type: domain.CategoryThesis, Search: "soil", CompiledOnly: true}
	mockService.On("ListArchived", mock.Anything, expected).Return(&ListResult{
		Documents:      []ArchivedRecord{{ID: 1, Title: "Soil", Type: domain.CategoryThesis}},
		TotalDocuments: 6,
		CurrentPage:    2,
		TotalPages:     2,
		CategoryCounts: []domain.CategoryCount{{Category: domain.CategoryThesis, Count: 6}},
	}, nil)

	w := perform(r, http.MethodGet, "/api/archives?page=2&size=5&type=thesis&search=soil&compiled_only=true", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, float64(6), body["total_documents"])
	assert.Len(t, body["documents"], 1)
	mockService.AssertExpectations(t)
}

func TestHandler_ArchiveDefaultsToChildren(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mockService.On("Archive", mock.Anything, uint64(100), ArchiveOptions{ArchiveChildren: true}).
		Return(&ArchiveResult{DocumentID: 100, IsCompilation: true, ArchivedAt: at, ChildCount: 2, ChildDocuments: []uint64{1, 2}}, nil)

	w := perform(r, http.MethodPost, "/api/archives", gin.H{"document_id": 100})

	assert.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Message string        `json:"message"`
		Data    ArchiveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []uint64{1, 2}, body.Data.ChildDocuments)
	mockService.AssertExpectations(t)
}

func TestHandler_ArchiveExplicitOptions(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("Archive", mock.Anything, uint64(7), ArchiveOptions{ArchiveChildren: false, IsCompiled: true}).
		Return(&ArchiveResult{DocumentID: 7, ChildDocuments: []uint64{}}, nil)

	w := perform(r, http.MethodPost, "/api/archives", gin.H{"document_id": 7, "archive_children": false, "is_compiled": true})
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.On("Archive", mock.Anything, uint64(8), ArchiveOptions{ArchiveChildren: false, IsCompiled: true}).
		Return(&ArchiveResult{DocumentID: 8, ChildDocuments: []uint64{}}, nil)
	w = perform(r, http.MethodPost, "/api/archives/compiled/8?archive_children=false", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	mockService.AssertExpectations(t)
}

func TestHandler_ArchiveValidation(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	w := perform(r, http.MethodPost, "/api/archives", gin.H{"archive_children": true})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Archive", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandler_ArchiveAlreadyArchived(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("Archive", mock.Anything, uint64(3), mock.Anything).
		Return(nil, errors.AlreadyArchived("Document is already archived"))

	w := perform(r, http.MethodPost, "/api/archives", gin.H{"document_id": 3})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, errors.CodeAlreadyArchived, body["code"])
}

func TestHandler_RestoreConflict(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("Restore", mock.Anything, uint64(4)).
		Return(nil, errors.Conflict("An active document with the same title and category already exists", nil))

	w := perform(r, http.MethodDelete, "/api/archives/4", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestHandler_Restore(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("Restore", mock.Anything, uint64(4)).
		Return(&RestoreResult{DocumentID: 4, RestoredChildren: []uint64{}}, nil)

	w := perform(r, http.MethodDelete, "/api/archives/4", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Document restored successfully")
}

func TestHandler_InvalidID(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	w := perform(r, http.MethodGet, "/api/archives/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/archives/18446744073709551615", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")

	w = perform(r, http.MethodDelete, "/api/archives/9223372036854775808/permanent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertNotCalled(t, "GetArchived", mock.Anything, mock.Anything)
	mockService.AssertNotCalled(t, "Purge", mock.Anything, mock.Anything)
}

func TestHandler_ShowNotFound(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("GetArchived", mock.Anything, uint64(9)).Return(nil, errors.NotFound("Archived document not found", nil))

	w := perform(r, http.MethodGet, "/api/archives/9", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ChildrenAndCounts(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("ArchivedChildren", mock.Anything, uint64(100)).
		Return([]ArchivedChild{{ID: 1, Title: "Apple"}}, nil)
	mockService.On("ArchivedChildren", mock.Anything, uint64(5)).
		Return(nil, errors.InvalidRequest("Document is not a compiled document"))
	mockService.On("CategoryCounts", mock.Anything).
		Return([]domain.CategoryCount{{Category: domain.CategorySynergy, Count: 2}}, nil)

	w := perform(r, http.MethodGet, "/api/archives/100/children", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Apple")

	w = perform(r, http.MethodGet, "/api/archives/5/children", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(r, http.MethodGet, "/api/archives/category-counts", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "SYNERGY")
}

func TestHandler_Purge(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(NewHandler(mockService))

	mockService.On("Purge", mock.Anything, uint64(100)).Return(nil)
	mockService.On("Purge", mock.Anything, uint64(101)).Return(errors.NotArchived("Only archived documents can be deleted permanently"))

	w := perform(r, http.MethodDelete, "/api/archives/100/permanent", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = perform(r, http.MethodDelete, "/api/archives/101/permanent", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
