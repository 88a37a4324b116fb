package request

import "document-archive/internal/domain"

type CreateInput struct {
	DocumentID     uint64 `json:"document_id" binding:"required,gt=0,max=9223372036854775807"`
	RequesterName  string `json:"requester_name" binding:"required,max=255"`
	RequesterEmail string `json:"requester_email" binding:"required,email,max=255"`
	Affiliation    string `json:"affiliation" binding:"max=255"`
	Reason         string `json:"reason" binding:"max=5000"`
}

type ReviewInput struct {
	Status string `json:"status" binding:"required,reviewstatus"`
	Note   string `json:"note" binding:"max=5000"`
}

type ListParams struct {
	Page       int
	PageSize   int
	Status     domain.RequestStatus
	DocumentID uint64
}

type ListResult struct {
	Requests    []domain.DocumentRequest `json:"requests"`
	Total       int                      `json:"total"`
	CurrentPage int                      `json:"current_page"`
	TotalPages  int                      `json:"total_pages"`
}

type AccessResult struct {
	DocumentID uint64 `json:"document_id"`
	Allowed    bool   `json:"allowed"`
}
