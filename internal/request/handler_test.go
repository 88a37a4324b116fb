package request

import (
	"bytes"
	"context"
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	"document-archive/internal/middleware"
	"document-archive/internal/validation"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) CheckAccess(ctx context.Context, documentID uint64, email string) (bool, error) {
	args := m.Called(ctx, documentID, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) Create(ctx context.Context, input CreateInput) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}

func (m *MockService) List(ctx context.Context, params ListParams) (*ListResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ListResult), args.Error(1)
}

func (m *MockService) Review(ctx context.Context, id uint64, reviewerID uint64, status domain.RequestStatus, note string) (*domain.DocumentRequest, error) {
	args := m.Called(ctx, id, reviewerID, status, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DocumentRequest), args.Error(1)
}

func setupRouter(t *testing.T, handler *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	require.NoError(t, validation.Register())

	r := gin.New()
	r.Use(middleware.ErrorHandler(zap.NewNop()))
	asAdmin := func(c *gin.Context) {
		c.Set(middleware.UserIDKey, uint64(7))
		c.Set(middleware.RoleKey, domain.RoleAdmin)
	}
	r.POST("/api/document-requests", handler.Create)
	r.GET("/api/document-requests", asAdmin, handler.List)
	r.PATCH("/api/document-requests/:id", asAdmin, handler.Review)
	r.GET("/api/documents/:id/access", handler.CheckAccess)
	return r
}

func send(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
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

func TestHandler_Create(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(t, NewHandler(mockService))

	input := CreateInput{DocumentID: 2, RequesterName: "Reader", RequesterEmail: "reader@example.com"}
	mockService.On("Create", mock.Anything, input).
		Return(&domain.DocumentRequest{ID: 1, DocumentID: 2, Status: domain.RequestPending}, nil)

	w := send(r, http.MethodPost, "/api/document-requests", input)
	assert.Equal(t, http.StatusCreated, w.Code)
	mockService.AssertExpectations(t)
}

func TestHandler_CreateValidation(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(t, NewHandler(mockService))

	w := send(r, http.MethodPost, "/api/document-requests", gin.H{"document_id": 2, "requester_name": "R", "requester_email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	details := body["details"].(map[string]any)
	assert.Contains(t, details, "RequesterEmail")
	mockService.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestHandler_Review(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(t, NewHandler(mockService))

	mockService.On("Review", mock.Anything, uint64(5), uint64(7), domain.RequestRejected, "out of scope").
		Return(&domain.DocumentRequest{ID: 5, Status: domain.RequestRejected}, nil)
	mockService.On("Review", mock.Anything, uint64(6), uint64(7), domain.RequestApproved, "").
		Return(nil, errors.InvalidRequest("Request has already been reviewed"))

	w := send(r, http.MethodPatch, "/api/document-requests/5", gin.H{"status": "rejected", "note": " out of scope "})
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodPatch, "/api/document-requests/6", gin.H{"status": "approved"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodPatch, "/api/document-requests/6", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestHandler_List(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(t, NewHandler(mockService))

	mockService.On("List", mock.Anything, ListParams{Page: 1, PageSize: 10, Status: domain.RequestPending, DocumentID: 2}).
		Return(&ListResult{Requests: []domain.DocumentRequest{}, CurrentPage: 1}, nil)

	w := send(r, http.MethodGet, "/api/document-requests?status=PENDING&document_id=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodGet, "/api/document-requests?document_id=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(r, http.MethodGet, "/api/document-requests?document_id=18446744073709551615", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNumberOfCalls(t, "List", 1)
	mockService.AssertExpectations(t)
}

func TestHandler_CheckAccess(t *testing.T) {
	mockService := new(MockService)
	r := setupRouter(t, NewHandler(mockService))

	mockService.On("CheckAccess", mock.Anything, uint64(2), "reader@example.com").Return(true, nil)

	w := send(r, http.MethodGet, "/api/documents/2/access?email=reader@example.com", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var body AccessResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Allowed)
}
