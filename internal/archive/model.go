package archive

import (
	"document-archive/internal/domain"
	"time"
)

// Record is everything stored under one id: a standalone document, a compiled
// group, or both when the group has a mirrored documents row.
type Record struct {
	ID       uint64
	Document *domain.Document
	Compiled *domain.CompiledDocument
}

func (r Record) Found() bool {
	return r.Document != nil || r.Compiled != nil
}

func (r Record) IsCompilation() bool {
	return r.Compiled != nil
}

// primaryDeletedAt is the tombstone of the row that answers for the id: the
// documents row when present, otherwise the compiled row.
func (r Record) primaryDeletedAt() *time.Time {
	if r.Document != nil {
		return r.Document.DeletedAt
	}
	if r.Compiled != nil {
		return r.Compiled.DeletedAt
	}
	return nil
}

// RecordRef points at one archived listing entry. CompiledOnly marks a compiled
// group without a documents row.
type RecordRef struct {
	ID           uint64
	CompiledOnly bool
}

type ListParams struct {
	Page         int
	PageSize     int
	Type         domain.Category
	Search       string
	CompiledOnly bool
}

func (p ListParams) offset() int {
	return (p.Page - 1) * p.PageSize
}

type ArchivedRecord struct {
	ID            uint64          `json:"id"`
	Title         string          `json:"title"`
	Type          domain.Category `json:"type"`
	Volume        string          `json:"volume,omitempty"`
	DeletedAt     time.Time       `json:"deleted_at"`
	ChildCount    int             `json:"child_count"`
	IsCompilation bool            `json:"is_compilation"`
	Authors       string          `json:"authors"`
}

type ListResult struct {
	Documents      []ArchivedRecord       `json:"documents"`
	TotalDocuments int                    `json:"total_documents"`
	CurrentPage    int                    `json:"current_page"`
	TotalPages     int                    `json:"total_pages"`
	CategoryCounts []domain.CategoryCount `json:"category_counts"`
}

type ArchiveOptions struct {
	ArchiveChildren bool
	IsCompiled      bool
}

type ArchiveResult struct {
	DocumentID     uint64    `json:"document_id"`
	IsCompilation  bool      `json:"is_compilation"`
	ArchivedAt     time.Time `json:"archived_at"`
	ChildCount     int       `json:"child_count"`
	ChildDocuments []uint64  `json:"child_documents"`
}

type RestoreResult struct {
	DocumentID       uint64   `json:"document_id"`
	IsCompilation    bool     `json:"is_compilation"`
	RestoredChildren []uint64 `json:"restored_children"`
}

type ArchivedChild struct {
	ID        uint64          `json:"id"`
	Title     string          `json:"title"`
	Type      domain.Category `json:"type"`
	DeletedAt time.Time       `json:"deleted_at"`
	Authors   string          `json:"authors"`
}

// Change describes a committed archive operation for observers.
type Change struct {
	Action      string
	RecordID    uint64
	DocumentIDs []uint64
}

const (
	ActionArchived = "archived"
	ActionRestored = "restored"
	ActionPurged   = "purged"
)
