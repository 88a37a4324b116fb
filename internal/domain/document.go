package domain

import (
	"time"
)

type Category string

const (
	CategoryThesis        Category = "THESIS"
	CategoryDissertation  Category = "DISSERTATION"
	CategoryConfluence    Category = "CONFLUENCE"
	CategorySynergy       Category = "SYNERGY"
	CategoryResearchStudy Category = "RESEARCH_STUDY"
)

var Categories = []Category{
	CategoryThesis,
	CategoryDissertation,
	CategoryConfluence,
	CategorySynergy,
	CategoryResearchStudy,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Document is a standalone archived paper. DeletedAt is the archive tombstone;
// it is a plain nullable column so every query spells out its archive filter.
type Document struct {
	ID               uint64     `gorm:"primaryKey" json:"id"`
	Title            string     `gorm:"size:500;not null;index" json:"title"`
	Abstract         string     `gorm:"type:text" json:"abstract"`
	PublicationDate  *time.Time `json:"publication_date"`
	Category         Category   `gorm:"size:32;not null;index" json:"category"`
	Volume           string     `gorm:"size:32" json:"volume"`
	IssueNumber      string     `gorm:"size:32" json:"issue_number"`
	FilePath         string     `gorm:"size:1024" json:"file_path"`
	IsPublic         bool       `gorm:"not null;default:true" json:"is_public"`
	CompiledParentID *uint64    `gorm:"index" json:"compiled_parent_id"`
	DeletedAt        *time.Time `gorm:"index" json:"deleted_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// CompiledDocument groups several documents, e.g. a journal volume.
type CompiledDocument struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	StartYear   *int       `json:"start_year"`
	EndYear     *int       `json:"end_year"`
	Volume      string     `gorm:"size:32" json:"volume"`
	IssueNumber string     `gorm:"size:32" json:"issue_number"`
	Category    Category   `gorm:"size:32;not null;index" json:"category"`
	DeletedAt   *time.Time `gorm:"index" json:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// CompiledDocumentItem is the canonical membership of a document in a compiled group.
type CompiledDocumentItem struct {
	CompiledDocumentID uint64 `gorm:"primaryKey;autoIncrement:false" json:"compiled_document_id"`
	DocumentID         uint64 `gorm:"primaryKey;autoIncrement:false;index" json:"document_id"`
}

type Author struct {
	ID          uint64     `gorm:"primaryKey" json:"id"`
	FullName    string     `gorm:"size:255;not null" json:"full_name"`
	Affiliation string     `gorm:"size:255" json:"affiliation"`
	Department  string     `gorm:"size:255" json:"department"`
	Email       string     `gorm:"size:255" json:"email"`
	OrcidID     string     `gorm:"size:64" json:"orcid_id"`
	Biography   string     `gorm:"type:text" json:"biography"`
	DeletedAt   *time.Time `json:"deleted_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type DocumentAuthor struct {
	DocumentID  uint64 `gorm:"primaryKey;autoIncrement:false" json:"document_id"`
	AuthorID    uint64 `gorm:"primaryKey;autoIncrement:false" json:"author_id"`
	AuthorOrder int    `gorm:"not null;default:0" json:"author_order"`
}

type Topic struct {
	ID   uint64 `gorm:"primaryKey" json:"id"`
	Name string `gorm:"size:255;not null;uniqueIndex" json:"name"`
}

type DocumentTopic struct {
	DocumentID uint64 `gorm:"primaryKey;autoIncrement:false" json:"document_id"`
	TopicID    uint64 `gorm:"primaryKey;autoIncrement:false" json:"topic_id"`
}

// CategoryCount is derived, never persisted.
type CategoryCount struct {
	Category Category `json:"category"`
	Count    int      `json:"count"`
}
