package request

import (
	"context"
	"document-archive/internal/db/dbtest"
	"document-archive/internal/domain"
	apiError "document-archive/internal/errors"
	"document-archive/internal/notify"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []notify.Message
}

func (n *recordingNotifier) Notify(msg notify.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
}

func newTestService(t *testing.T) (*DefaultService, *gorm.DB, *recordingNotifier) {
	gdb := dbtest.Open(t)
	notifier := &recordingNotifier{}
	svc := NewService(NewRepository(gdb), notifier, zap.NewNop()).(*DefaultService)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, gdb.Create(&domain.Document{ID: 1, Title: "Open Paper", Category: domain.CategoryThesis, IsPublic: true}).Error)
	require.NoError(t, gdb.Create(&domain.Document{ID: 2, Title: "Closed Paper", Category: domain.CategoryThesis}).Error)
	// gorm skips zero values on create, so the default of true has to be undone
	require.NoError(t, gdb.Model(&domain.Document{}).Where("id = ?", 2).UpdateColumn("is_public", false).Error)
	return svc, gdb, notifier
}

func TestCheckAccess(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	ctx := context.Background()

	allowed, err := svc.CheckAccess(ctx, 1, "")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = svc.CheckAccess(ctx, 2, "")
	require.NoError(t, err)
	assert.False(t, allowed)

	allowed, err = svc.CheckAccess(ctx, 2, "reader@example.com")
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, gdb.Create(&domain.DocumentRequest{
		DocumentID: 2, RequesterName: "Reader", RequesterEmail: "reader@example.com", Status: domain.RequestApproved,
	}).Error)

	allowed, err = svc.CheckAccess(ctx, 2, "Reader@Example.com")
	require.NoError(t, err)
	assert.True(t, allowed)

	_, err = svc.CheckAccess(ctx, 99, "reader@example.com")
	assert.True(t, apiError.HasCode(err, apiError.CodeNotFound))
}

func TestCheckAccess_ArchivedDocumentIsNotFound(t *testing.T) {
	svc, gdb, _ := newTestService(t)
	require.NoError(t, gdb.Model(&domain.Document{}).Where("id = ?", 1).UpdateColumn("deleted_at", time.Now().UTC()).Error)

	_, err := svc.CheckAccess(context.Background(), 1, "")
	assert.True(t, apiError.HasCode(err, apiError.CodeNotFound))
}

func TestCreate(t *testing.T) {
	svc, _, notifier := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, CreateInput{
		DocumentID: 2, RequesterName: " Reader ", RequesterEmail: "Reader@Example.com", Reason: "thesis work",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestPending, req.Status)
	assert.Equal(t, "reader@example.com", req.RequesterEmail)
	assert.Equal(t, "Reader", req.RequesterName)
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, "reader@example.com", notifier.messages[0].To)

	_, err = svc.Create(ctx, CreateInput{DocumentID: 2, RequesterName: "Reader", RequesterEmail: "reader@example.com"})
	assert.True(t, apiError.HasCode(err, apiError.CodeConflict))

	_, err = svc.Create(ctx, CreateInput{DocumentID: 1, RequesterName: "Reader", RequesterEmail: "reader@example.com"})
	assert.True(t, apiError.HasCode(err, apiError.CodeInvalidRequest))

	_, err = svc.Create(ctx, CreateInput{DocumentID: 42, RequesterName: "Reader", RequesterEmail: "reader@example.com"})
	assert.True(t, apiError.HasCode(err, apiError.CodeNotFound))
}

func TestReview_Transitions(t *testing.T) {
	svc, gdb, notifier := newTestService(t)
	ctx := context.Background()

	req, err := svc.Create(ctx, CreateInput{DocumentID: 2, RequesterName: "Reader", RequesterEmail: "reader@example.com"})
	require.NoError(t, err)

	_, err = svc.Review(ctx, req.ID, 0, domain.RequestApproved, "")
	assert.True(t, apiError.HasCode(err, apiError.CodeValidation))

	_, err = svc.Review(ctx, req.ID, 7, domain.RequestPending, "")
	assert.True(t, apiError.HasCode(err, apiError.CodeValidation))

	reviewed, err := svc.Review(ctx, req.ID, 7, domain.RequestApproved, "enjoy")
	require.NoError(t, err)
	assert.Equal(t, domain.RequestApproved, reviewed.Status)
	require.NotNil(t, reviewed.ReviewedBy)
	assert.Equal(t, uint64(7), *reviewed.ReviewedBy)

	var stored domain.DocumentRequest
	require.NoError(t, gdb.First(&stored, req.ID).Error)
	assert.Equal(t, domain.RequestApproved, stored.Status)
	assert.Equal(t, "enjoy", stored.ReviewNote)
	require.NotNil(t, stored.ReviewedAt)

	last := notifier.messages[len(notifier.messages)-1]
	assert.Equal(t, "Your document request was approved", last.Subject)
	assert.Contains(t, last.Body, "enjoy")

	// terminal afterwards
	_, err = svc.Review(ctx, req.ID, 7, domain.RequestRejected, "")
	assert.True(t, apiError.HasCode(err, apiError.CodeInvalidRequest))

	_, err = svc.Review(ctx, 999, 7, domain.RequestRejected, "")
	assert.True(t, apiError.HasCode(err, apiError.CodeNotFound))

	allowed, err := svc.CheckAccess(ctx, 2, "reader@example.com")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestList(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, email := range []string{"a@example.com", "b@example.com", "c@example.com"} {
		_, err := svc.Create(ctx, CreateInput{DocumentID: 2, RequesterName: "R", RequesterEmail: email})
		require.NoError(t, err)
	}

	result, err := svc.List(ctx, ListParams{Page: 1, PageSize: 2, Status: domain.RequestPending})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.TotalPages)
	assert.Len(t, result.Requests, 2)

	result, err = svc.List(ctx, ListParams{Page: 1, PageSize: 10, Status: domain.RequestApproved})
	require.NoError(t, err)
	assert.NotNil(t, result.Requests)
	assert.Empty(t, result.Requests)

	_, err = svc.List(ctx, ListParams{Page: 1, PageSize: 10, Status: "archived"})
	assert.True(t, apiError.HasCode(err, apiError.CodeValidation))
}
