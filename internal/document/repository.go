package document

import (
	"context"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"document-archive/internal/search"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrInvalidMembers means a compiled group was given members that are missing,
// archived, groups themselves or already in another group.
var ErrInvalidMembers = errors.New("invalid compiled document members")

type DocumentRepository interface {
	ListRows(ctx context.Context, params ListParams) ([]Row, error)
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
	FindActive(ctx context.Context, id uint64) (*domain.Document, error)
	Authors(ctx context.Context, documentID uint64) ([]string, error)
	Topics(ctx context.Context, documentID uint64) ([]TopicRef, error)
	CompiledParents(ctx context.Context, documentID uint64) ([]uint64, error)
	HasActiveDuplicate(ctx context.Context, title string, category domain.Category) (bool, error)
	HasActiveCompiledDuplicate(ctx context.Context, category domain.Category, volume string) (bool, error)
	Create(ctx context.Context, doc *domain.Document, authors, topics []string) error
	CreateCompiled(ctx context.Context, compiled *domain.CompiledDocument, mirror *domain.Document, memberIDs []uint64) error
	SearchDocuments(ctx context.Context, ids []uint64) ([]search.Document, error)
}

type DocumentRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) DocumentRepository {
	return &DocumentRepositoryImpl{db: db}
}

// notMirror drops documents rows that stand for a compiled group.
const notMirror = "NOT EXISTS (SELECT 1 FROM compiled_documents m WHERE m.id = d.id)"

// notGrouped drops documents that already belong to a compiled group, archived
// or not.
const notGrouped = `NOT EXISTS (SELECT 1 FROM compiled_document_items gi
	JOIN compiled_documents g ON g.id = gi.compiled_document_id
	WHERE gi.document_id = d.id)`

const listColumns = `d.id, d.title, d.abstract, d.publication_date, d.category, d.volume,
	d.issue_number, d.file_path, d.is_public,
	COALESCE(cdi.compiled_document_id, d.compiled_parent_id) AS compiled_document_id,
	cd.category AS compiled_category, cd.volume AS compiled_volume,
	cd.start_year AS compiled_start_year, cd.end_year AS compiled_end_year,
	(cd.deleted_at IS NOT NULL) AS compiled_archived,
	a.full_name AS author_name, t.id AS topic_id, t.name AS topic_name`

// ListRows loads the flat document × author × topic rows of every active
// document. Group membership comes from the item table first and falls back to
// documents.compiled_parent_id.
func (r *DocumentRepositoryImpl) ListRows(ctx context.Context, params ListParams) ([]Row, error) {
	query := r.db.WithContext(ctx).
		Table("documents AS d").
		Select(listColumns).
		Joins("LEFT JOIN compiled_document_items cdi ON cdi.document_id = d.id AND cdi.compiled_document_id <> d.id").
		Joins("LEFT JOIN compiled_documents cd ON cd.id = COALESCE(cdi.compiled_document_id, d.compiled_parent_id)").
		Joins("LEFT JOIN document_authors da ON da.document_id = d.id").
		Joins("LEFT JOIN authors a ON a.id = da.author_id").
		Joins("LEFT JOIN document_topics dt ON dt.document_id = d.id").
		Joins("LEFT JOIN topics t ON t.id = dt.topic_id").
		Where("d.deleted_at IS NULL").
		Where(notMirror)

	if params.Category != "" {
		query = query.Where("d.category = ?", params.Category)
	}
	if params.Volume != "" {
		query = query.Where("d.volume = ?", params.Volume)
	}

	switch params.Sort {
	case SortEarliest:
		query = query.Order("d.publication_date ASC")
	case SortTitle:
		query = query.Order("LOWER(d.title) ASC")
	default:
		query = query.Order("d.publication_date DESC")
	}

	var rows []Row
	err := query.Order("d.id, da.author_order, a.id, t.id").Scan(&rows).Error
	return rows, err
}

func (r *DocumentRepositoryImpl) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	err := r.db.WithContext(ctx).
		Table("documents AS d").
		Select("d.category AS category, COUNT(*) AS total").
		Where("d.deleted_at IS NULL").
		Where(notMirror).
		Group("d.category").
		Order("d.category").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]domain.CategoryCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, domain.CategoryCount{Category: domain.Category(row.Category), Count: db.Count(row.Total)})
	}
	return counts, nil
}

func (r *DocumentRepositoryImpl) FindActive(ctx context.Context, id uint64) (*domain.Document, error) {
	var doc domain.Document
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&doc).Error; err != nil {
		return nil, err
	}
	return &doc, nil
}

func (r *DocumentRepositoryImpl) Authors(ctx context.Context, documentID uint64) ([]string, error) {
	var names []string
	err := r.db.WithContext(ctx).
		Table("document_authors").
		Joins("JOIN authors ON authors.id = document_authors.author_id").
		Where("document_authors.document_id = ?", documentID).
		Order("document_authors.author_order, authors.id").
		Pluck("authors.full_name", &names).Error
	return names, err
}

func (r *DocumentRepositoryImpl) Topics(ctx context.Context, documentID uint64) ([]TopicRef, error) {
	var topics []TopicRef
	err := r.db.WithContext(ctx).
		Table("document_topics").
		Select("topics.id AS id, topics.name AS name").
		Joins("JOIN topics ON topics.id = document_topics.topic_id").
		Where("document_topics.document_id = ?", documentID).
		Order("topics.name").
		Scan(&topics).Error
	return topics, err
}

func (r *DocumentRepositoryImpl) CompiledParents(ctx context.Context, documentID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&domain.CompiledDocumentItem{}).
		Where("document_id = ? AND compiled_document_id <> document_id", documentID).
		Order("compiled_document_id").
		Pluck("compiled_document_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		return ids, nil
	}

	var doc domain.Document
	err = r.db.WithContext(ctx).Select("compiled_parent_id").Where("id = ?", documentID).First(&doc).Error
	if err != nil || doc.CompiledParentID == nil {
		return []uint64{}, err
	}
	return []uint64{*doc.CompiledParentID}, nil
}

func (r *DocumentRepositoryImpl) HasActiveDuplicate(ctx context.Context, title string, category domain.Category) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("deleted_at IS NULL AND LOWER(title) = LOWER(?) AND category = ?", title, category).
		Count(&n).Error
	return n > 0, err
}

func (r *DocumentRepositoryImpl) HasActiveCompiledDuplicate(ctx context.Context, category domain.Category, volume string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.CompiledDocument{}).
		Where("deleted_at IS NULL AND category = ? AND volume = ?", category, volume).
		Count(&n).Error
	return n > 0, err
}

// Create stores doc with its authors and topics, reusing authors and topics
// that already exist under the same name.
func (r *DocumentRepositoryImpl) Create(ctx context.Context, doc *domain.Document, authors, topics []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := createDocument(tx, doc); err != nil {
			return err
		}

		for i, name := range authors {
			var author domain.Author
			err := tx.Where("LOWER(full_name) = ?", strings.ToLower(name)).
				Attrs(domain.Author{FullName: name}).
				FirstOrCreate(&author).Error
			if err != nil {
				return err
			}
			link := domain.DocumentAuthor{DocumentID: doc.ID, AuthorID: author.ID, AuthorOrder: i + 1}
			if err := tx.Create(&link).Error; err != nil {
				return err
			}
		}

		for _, name := range topics {
			var topic domain.Topic
			if err := tx.Where(domain.Topic{Name: name}).FirstOrCreate(&topic).Error; err != nil {
				return err
			}
			if err := tx.Create(&domain.DocumentTopic{DocumentID: doc.ID, TopicID: topic.ID}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// createDocument inserts doc. gorm leaves a false is_public out of the insert
// and reads the column default back into doc, so the requested value is kept
// aside and written afterwards.
func createDocument(tx *gorm.DB, doc *domain.Document) error {
	public := doc.IsPublic
	if err := tx.Create(doc).Error; err != nil {
		return err
	}
	if public {
		return nil
	}
	if err := tx.Model(doc).UpdateColumn("is_public", false).Error; err != nil {
		return err
	}
	doc.IsPublic = false
	return nil
}

// CreateCompiled writes the mirrored documents row, the group row sharing its
// id, the item rows and each member's parent pointer in one transaction.
func (r *DocumentRepositoryImpl) CreateCompiled(ctx context.Context, compiled *domain.CompiledDocument, mirror *domain.Document, memberIDs []uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var valid int64
		err := tx.Table("documents AS d").
			Where("d.id IN ? AND d.deleted_at IS NULL", memberIDs).
			Where(notMirror).
			Where(notGrouped).
			Count(&valid).Error
		if err != nil {
			return err
		}
		if db.Count(valid) != len(memberIDs) {
			return ErrInvalidMembers
		}

		if err := createDocument(tx, mirror); err != nil {
			return err
		}
		compiled.ID = mirror.ID
		if err := tx.Create(compiled).Error; err != nil {
			return err
		}

		items := make([]domain.CompiledDocumentItem, 0, len(memberIDs))
		for _, id := range memberIDs {
			items = append(items, domain.CompiledDocumentItem{CompiledDocumentID: compiled.ID, DocumentID: id})
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}

		return tx.Model(&domain.Document{}).
			Where("id IN ?", memberIDs).
			UpdateColumn("compiled_parent_id", compiled.ID).Error
	})
}

// SearchDocuments loads the indexable form of active documents, all of them
// when ids is nil.
func (r *DocumentRepositoryImpl) SearchDocuments(ctx context.Context, ids []uint64) ([]search.Document, error) {
	query := r.db.WithContext(ctx).
		Table("documents AS d").
		Where("d.deleted_at IS NULL").
		Where(notMirror)
	if ids != nil {
		if len(ids) == 0 {
			return []search.Document{}, nil
		}
		query = query.Where("d.id IN ?", ids)
	}

	var docs []domain.Document
	if err := query.Order("d.id").Find(&docs).Error; err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return []search.Document{}, nil
	}

	docIDs := make([]uint64, 0, len(docs))
	for _, d := range docs {
		docIDs = append(docIDs, d.ID)
	}

	var authorRows []struct {
		DocumentID uint64
		Name       string
	}
	err := r.db.WithContext(ctx).
		Table("document_authors").
		Select("document_authors.document_id, authors.full_name AS name").
		Joins("JOIN authors ON authors.id = document_authors.author_id").
		Where("document_authors.document_id IN ?", docIDs).
		Order("document_authors.document_id, document_authors.author_order").
		Scan(&authorRows).Error
	if err != nil {
		return nil, err
	}

	var topicRows []struct {
		DocumentID uint64
		Name       string
	}
	err = r.db.WithContext(ctx).
		Table("document_topics").
		Select("document_topics.document_id, topics.name AS name").
		Joins("JOIN topics ON topics.id = document_topics.topic_id").
		Where("document_topics.document_id IN ?", docIDs).
		Order("document_topics.document_id, topics.name").
		Scan(&topicRows).Error
	if err != nil {
		return nil, err
	}

	authors := map[uint64][]string{}
	for _, a := range authorRows {
		authors[a.DocumentID] = append(authors[a.DocumentID], a.Name)
	}
	topics := map[uint64][]string{}
	for _, t := range topicRows {
		topics[t.DocumentID] = append(topics[t.DocumentID], t.Name)
	}

	out := make([]search.Document, 0, len(docs))
	for _, d := range docs {
		out = append(out, search.Document{
			ID:       d.ID,
			Title:    d.Title,
			Abstract: d.Abstract,
			Category: string(d.Category),
			Volume:   d.Volume,
			Authors:  authors[d.ID],
			Topics:   topics[d.ID],
		})
	}
	return out, nil
}
