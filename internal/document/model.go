package document

import (
	"document-archive/internal/domain"
	"time"
)

type SortOrder string

const (
	SortLatest   SortOrder = "latest"
	SortEarliest SortOrder = "earliest"
	SortTitle    SortOrder = "title"
)

func (s SortOrder) Valid() bool {
	switch s {
	case SortLatest, SortEarliest, SortTitle:
		return true
	}
	return false
}

// Row is one document × author × topic combination as the listing join
// produces it. Authors and Topics are set instead of the scalar columns when
// the source already grouped them.
type Row struct {
	ID              uint64
	Title           string
	Abstract        string
	PublicationDate *time.Time
	Category        domain.Category
	Volume          string
	IssueNumber     string
	FilePath        string
	IsPublic        bool

	CompiledDocumentID *uint64
	// Parent group columns; all nil when the group row is missing.
	CompiledCategory  *string
	CompiledVolume    *string
	CompiledStartYear *int
	CompiledEndYear   *int
	CompiledArchived  bool

	AuthorName *string
	TopicID    *uint64
	TopicName  *string

	Authors []string   `gorm:"-"`
	Topics  []TopicRef `gorm:"-"`
}

type TopicRef struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// Entry is one card of the document listing: a standalone document or a
// compiled group carrying its children.
type Entry struct {
	ID              uint64          `json:"id"`
	Title           string          `json:"title"`
	Abstract        string          `json:"abstract,omitempty"`
	PublicationDate *time.Time      `json:"publication_date"`
	Category        domain.Category `json:"category"`
	Volume          string          `json:"volume,omitempty"`
	IssueNumber     string          `json:"issue_number,omitempty"`
	FilePath        string          `json:"file_path,omitempty"`
	IsPublic        bool            `json:"is_public"`
	IsCompiled      bool            `json:"is_compiled"`
	StartYear       *int            `json:"start_year,omitempty"`
	EndYear         *int            `json:"end_year,omitempty"`
	Authors         []string        `json:"authors"`
	Topics          []TopicRef      `json:"topics"`
	ChildDocuments  []Entry         `json:"child_documents,omitempty"`
}

type AggregateOptions struct {
	Page     int
	PageSize int
	Sort     SortOrder
}

type Page struct {
	Documents   []Entry `json:"documents"`
	TotalCount  int     `json:"total_count"`
	TotalPages  int     `json:"total_pages"`
	CurrentPage int     `json:"current_page"`
}

type ListParams struct {
	Category domain.Category
	Volume   string
	Page     int
	Size     int
	Sort     SortOrder
}

// Detail is a single active document with its authors and topics.
type Detail struct {
	domain.Document
	Authors         []string   `json:"authors"`
	Topics          []TopicRef `json:"topics"`
	CompiledParents []uint64   `json:"compiled_parents"`
}

// UploadInput is a validated upload ready for storage.
type UploadInput struct {
	Title           string
	Abstract        string
	PublicationDate *time.Time
	Category        domain.Category
	Volume          string
	IssueNumber     string
	IsPublic        bool
	Authors         []string
	Topics          []string
	FileName        string
	ContentType     string
	Data            []byte
}

type CompiledInput struct {
	Category    string   `json:"category" binding:"required,doccategory"`
	Volume      string   `json:"volume" binding:"required,max=32"`
	IssueNumber string   `json:"issue_number" binding:"max=32"`
	StartYear   *int     `json:"start_year" binding:"omitempty,gte=1900,lte=2100"`
	EndYear     *int     `json:"end_year" binding:"omitempty,gte=1900,lte=2100"`
	DocumentIDs []uint64 `json:"document_ids" binding:"required,min=1,dive,gt=0,max=9223372036854775807"`
	IsPublic    *bool    `json:"is_public"`
}

type CompiledResult struct {
	domain.CompiledDocument
	Title          string   `json:"title"`
	ChildDocuments []uint64 `json:"child_documents"`
}

type SearchResult struct {
	Query string      `json:"query"`
	Hits  []SearchHit `json:"hits"`
}

type SearchHit struct {
	ID       uint64          `json:"id"`
	Title    string          `json:"title"`
	Category domain.Category `json:"category"`
	Score    float64         `json:"score"`
}
