package domain

import "time"

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// DocumentRequest asks for access to a non-public document.
type DocumentRequest struct {
	ID             uint64        `gorm:"primaryKey" json:"id"`
	DocumentID     uint64        `gorm:"not null;index:idx_request_access" json:"document_id"`
	RequesterName  string        `gorm:"size:255;not null" json:"requester_name"`
	RequesterEmail string        `gorm:"size:255;not null;index:idx_request_access" json:"requester_email"`
	Affiliation    string        `gorm:"size:255" json:"affiliation"`
	Reason         string        `gorm:"type:text" json:"reason"`
	Status         RequestStatus `gorm:"size:16;not null;default:pending;index:idx_request_access" json:"status"`
	ReviewedBy     *uint64       `json:"reviewed_by"`
	ReviewedAt     *time.Time    `json:"reviewed_at"`
	ReviewNote     string        `gorm:"type:text" json:"review_note"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
