package request

import (
	"context"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	"document-archive/internal/notify"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Service interface {
	CheckAccess(ctx context.Context, documentID uint64, email string) (bool, error)
	Create(ctx context.Context, input CreateInput) (*domain.DocumentRequest, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	Review(ctx context.Context, id uint64, reviewerID uint64, status domain.RequestStatus, note string) (*domain.DocumentRequest, error)
}

type Notifier interface {
	Notify(msg notify.Message)
}

type DefaultService struct {
	repository RequestRepository
	notifier   Notifier
	logger     *zap.Logger
	now        func() time.Time
}

func NewService(repository RequestRepository, notifier Notifier, logger *zap.Logger) Service {
	return &DefaultService{
		repository: repository,
		notifier:   notifier,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *DefaultService) activeDocument(ctx context.Context, documentID uint64) (*domain.Document, error) {
	doc, err := s.repository.FindActiveDocument(ctx, documentID)
	if db.IsNotFound(err) {
		return nil, errors.NotFound("Document not found", err)
	}
	if err != nil {
		return nil, errors.Storage(err)
	}
	return doc, nil
}

// CheckAccess allows public documents to everyone and other documents only to
// an email holding an approved request.
func (s *DefaultService) CheckAccess(ctx context.Context, documentID uint64, email string) (bool, error) {
	doc, err := s.activeDocument(ctx, documentID)
	if err != nil {
		return false, err
	}
	if doc.IsPublic {
		return true, nil
	}

	email = strings.TrimSpace(email)
	if email == "" {
		return false, nil
	}
	ok, err := s.repository.HasApproved(ctx, documentID, email)
	if err != nil {
		return false, errors.Storage(err)
	}
	return ok, nil
}

func (s *DefaultService) Create(ctx context.Context, input CreateInput) (*domain.DocumentRequest, error) {
	doc, err := s.activeDocument(ctx, input.DocumentID)
	if err != nil {
		return nil, err
	}
	if doc.IsPublic {
		return nil, errors.InvalidRequest("Document is public, no request needed")
	}

	email := strings.ToLower(strings.TrimSpace(input.RequesterEmail))
	pending, err := s.repository.HasPending(ctx, input.DocumentID, email)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if pending {
		return nil, errors.Conflict("A pending request for this document already exists", nil)
	}

	req := &domain.DocumentRequest{
		DocumentID:     input.DocumentID,
		RequesterName:  strings.TrimSpace(input.RequesterName),
		RequesterEmail: email,
		Affiliation:    strings.TrimSpace(input.Affiliation),
		Reason:         strings.TrimSpace(input.Reason),
		Status:         domain.RequestPending,
	}
	if err := s.repository.Create(ctx, req); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.Conflict("A pending request for this document already exists", err)
		}
		return nil, errors.Storage(err)
	}

	s.logger.Info("Document request created",
		zap.Uint64("request_id", req.ID),
		zap.Uint64("document_id", req.DocumentID))
	s.notifier.Notify(notify.Message{
		To:      req.RequesterEmail,
		Subject: fmt.Sprintf("Request received: %s", doc.Title),
		Body:    fmt.Sprintf("Hello %s,\n\nWe received your request for \"%s\". You will get an email once it has been reviewed.", req.RequesterName, doc.Title),
	})
	return req, nil
}

func (s *DefaultService) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Status != "" {
		switch params.Status {
		case domain.RequestPending, domain.RequestApproved, domain.RequestRejected:
		default:
			return nil, errors.BadRequest("Unknown request status", nil)
		}
	}

	requests, total, err := s.repository.List(ctx, params)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if requests == nil {
		requests = []domain.DocumentRequest{}
	}
	return &ListResult{
		Requests:    requests,
		Total:       total,
		CurrentPage: params.Page,
		TotalPages:  db.TotalPages(total, params.PageSize),
	}, nil
}

// Review settles a pending request. Approved and rejected are terminal.
func (s *DefaultService) Review(ctx context.Context, id uint64, reviewerID uint64, status domain.RequestStatus, note string) (*domain.DocumentRequest, error) {
	if reviewerID == 0 {
		return nil, errors.BadRequest("A reviewer is required", nil)
	}
	if status != domain.RequestApproved && status != domain.RequestRejected {
		return nil, errors.BadRequest("Status must be approved or rejected", nil)
	}

	req, err := s.repository.FindByID(ctx, id)
	if db.IsNotFound(err) {
		return nil, errors.NotFound("Request not found", err)
	}
	if err != nil {
		return nil, errors.Storage(err)
	}
	if req.Status != domain.RequestPending {
		return nil, errors.InvalidRequest("Request has already been reviewed")
	}

	at := s.now().UTC().Truncate(time.Microsecond)
	updated, err := s.repository.MarkReviewed(ctx, id, status, reviewerID, at, note)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if !updated {
		return nil, errors.InvalidRequest("Request has already been reviewed")
	}

	req.Status = status
	req.ReviewedBy = &reviewerID
	req.ReviewedAt = &at
	req.ReviewNote = note

	s.logger.Info("Document request reviewed",
		zap.Uint64("request_id", id),
		zap.String("status", string(status)),
		zap.Uint64("reviewer_id", reviewerID))
	s.notifier.Notify(reviewMessage(req))
	return req, nil
}

func reviewMessage(req *domain.DocumentRequest) notify.Message {
	msg := notify.Message{To: req.RequesterEmail}
	if req.Status == domain.RequestApproved {
		msg.Subject = "Your document request was approved"
		msg.Body = fmt.Sprintf("Hello %s,\n\nYour request for document #%d was approved. You can now open it with this email address.", req.RequesterName, req.DocumentID)
	} else {
		msg.Subject = "Your document request was rejected"
		msg.Body = fmt.Sprintf("Hello %s,\n\nYour request for document #%d was rejected.", req.RequesterName, req.DocumentID)
	}
	if req.ReviewNote != "" {
		msg.Body += "\n\nNote from the reviewer: " + req.ReviewNote
	}
	return msg
}
