package request

import (
	"context"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"strings"
	"time"

	"gorm.io/gorm"
)

type RequestRepository interface {
	FindActiveDocument(ctx context.Context, documentID uint64) (*domain.Document, error)
	HasApproved(ctx context.Context, documentID uint64, email string) (bool, error)
	HasPending(ctx context.Context, documentID uint64, email string) (bool, error)
	Create(ctx context.Context, req *domain.DocumentRequest) error
	FindByID(ctx context.Context, id uint64) (*domain.DocumentRequest, error)
	List(ctx context.Context, params ListParams) ([]domain.DocumentRequest, int, error)
	MarkReviewed(ctx context.Context, id uint64, status domain.RequestStatus, reviewerID uint64, at time.Time, note string) (bool, error)
}

type RequestRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) RequestRepository {
	return &RequestRepositoryImpl{db: db}
}

func (r *RequestRepositoryImpl) FindActiveDocument(ctx context.Context, documentID uint64) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.WithContext(ctx).
		Where("id = ? AND deleted_at IS NULL", documentID).
		First(&doc).Error
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *RequestRepositoryImpl) hasStatus(ctx context.Context, documentID uint64, email string, status domain.RequestStatus) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.DocumentRequest{}).
		Where("document_id = ? AND LOWER(requester_email) = ? AND status = ?", documentID, strings.ToLower(email), status).
		Count(&n).Error
	return n > 0, err
}

func (r *RequestRepositoryImpl) HasApproved(ctx context.Context, documentID uint64, email string) (bool, error) {
	return r.hasStatus(ctx, documentID, email, domain.RequestApproved)
}

func (r *RequestRepositoryImpl) HasPending(ctx context.Context, documentID uint64, email string) (bool, error) {
	return r.hasStatus(ctx, documentID, email, domain.RequestPending)
}

func (r *RequestRepositoryImpl) Create(ctx context.Context, req *domain.DocumentRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepositoryImpl) FindByID(ctx context.Context, id uint64) (*domain.DocumentRequest, error) {
	var req domain.DocumentRequest
	if err := r.db.WithContext(ctx).First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepositoryImpl) List(ctx context.Context, params ListParams) ([]domain.DocumentRequest, int, error) {
	filtered := func() *gorm.DB {
		query := r.db.WithContext(ctx).Model(&domain.DocumentRequest{})
		if params.Status != "" {
			query = query.Where("status = ?", params.Status)
		}
		if params.DocumentID != 0 {
			query = query.Where("document_id = ?", params.DocumentID)
		}
		return query
	}

	var total int64
	if err := filtered().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []domain.DocumentRequest
	err := filtered().
		Order("created_at DESC, id DESC").
		Limit(params.PageSize).
		Offset((params.Page - 1) * params.PageSize).
		Find(&requests).Error
	return requests, db.Count(total), err
}

// MarkReviewed moves a pending request to its terminal state. It reports false
// when the request was no longer pending.
func (r *RequestRepositoryImpl) MarkReviewed(ctx context.Context, id uint64, status domain.RequestStatus, reviewerID uint64, at time.Time, note string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.DocumentRequest{}).
		Where("id = ? AND status = ?", id, domain.RequestPending).
		Updates(map[string]any{
			"status":      status,
			"reviewed_by": reviewerID,
			"reviewed_at": at,
			"review_note": note,
		})
	return res.RowsAffected == 1, res.Error
}
