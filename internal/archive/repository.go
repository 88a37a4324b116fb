package archive

import (
	"context"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"strings"
	"time"

	"gorm.io/gorm"
)

type memberState int

const (
	membersActive memberState = iota
	membersArchived
)

type ArchiveRepository interface {
	// Transaction runs fn against a repository bound to one database transaction.
	Transaction(ctx context.Context, fn func(tx ArchiveRepository) error) error

	FindRecord(ctx context.Context, id uint64) (Record, error)
	FindDocuments(ctx context.Context, ids []uint64) (map[uint64]domain.Document, error)
	FindCompiled(ctx context.Context, ids []uint64) (map[uint64]domain.CompiledDocument, error)
	MemberIDs(ctx context.Context, compiledID uint64, state memberState) ([]uint64, error)
	MemberCounts(ctx context.Context, compiledIDs []uint64) (map[uint64]int, error)
	ArchivedMembers(ctx context.Context, compiledID uint64) ([]domain.Document, error)
	AuthorNames(ctx context.Context, documentIDs []uint64) (map[uint64]string, error)

	ArchiveDocuments(ctx context.Context, ids []uint64, at time.Time) error
	ArchiveCompiled(ctx context.Context, id uint64, at time.Time) error
	RestoreDocuments(ctx context.Context, ids []uint64) error
	RestoreCompiled(ctx context.Context, id uint64) error
	HasActiveDocumentDuplicate(ctx context.Context, title string, category domain.Category, excludeID uint64) (bool, error)
	HasActiveCompiledDuplicate(ctx context.Context, category domain.Category, volume string, excludeID uint64) (bool, error)
	DeleteRecord(ctx context.Context, id uint64) error

	CountArchived(ctx context.Context, params ListParams) (int, error)
	ListArchived(ctx context.Context, params ListParams) ([]RecordRef, error)
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
}

type ArchiveRepositoryImpl struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) ArchiveRepository {
	return &ArchiveRepositoryImpl{db: db}
}

func (r *ArchiveRepositoryImpl) Transaction(ctx context.Context, fn func(tx ArchiveRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&ArchiveRepositoryImpl{db: tx})
	})
}

func (r *ArchiveRepositoryImpl) FindRecord(ctx context.Context, id uint64) (Record, error) {
	rec := Record{ID: id}

	var docs []domain.Document
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&docs).Error; err != nil {
		return rec, err
	}
	if len(docs) == 1 {
		rec.Document = &docs[0]
	}

	var compiled []domain.CompiledDocument
	if err := r.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&compiled).Error; err != nil {
		return rec, err
	}
	if len(compiled) == 1 {
		rec.Compiled = &compiled[0]
	}
	return rec, nil
}

func (r *ArchiveRepositoryImpl) FindDocuments(ctx context.Context, ids []uint64) (map[uint64]domain.Document, error) {
	result := make(map[uint64]domain.Document, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var docs []domain.Document
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&docs).Error; err != nil {
		return nil, err
	}
	for _, d := range docs {
		result[d.ID] = d
	}
	return result, nil
}

func (r *ArchiveRepositoryImpl) FindCompiled(ctx context.Context, ids []uint64) (map[uint64]domain.CompiledDocument, error) {
	result := make(map[uint64]domain.CompiledDocument, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	var rows []domain.CompiledDocument
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, c := range rows {
		result[c.ID] = c
	}
	return result, nil
}

// MemberIDs resolves members through the item table, never through
// documents.compiled_parent_id. A mirrored row is not its own member.
func (r *ArchiveRepositoryImpl) MemberIDs(ctx context.Context, compiledID uint64, state memberState) ([]uint64, error) {
	query := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Joins("JOIN compiled_document_items ON compiled_document_items.document_id = documents.id").
		Where("compiled_document_items.compiled_document_id = ? AND documents.id <> ?", compiledID, compiledID)
	if state == membersActive {
		query = query.Where("documents.deleted_at IS NULL")
	} else {
		query = query.Where("documents.deleted_at IS NOT NULL")
	}

	var ids []uint64
	err := query.Order("documents.id").Pluck("documents.id", &ids).Error
	return ids, err
}

func (r *ArchiveRepositoryImpl) MemberCounts(ctx context.Context, compiledIDs []uint64) (map[uint64]int, error) {
	result := make(map[uint64]int, len(compiledIDs))
	if len(compiledIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		CompiledDocumentID uint64
		Total              int64
	}
	err := r.db.WithContext(ctx).
		Model(&domain.CompiledDocumentItem{}).
		Select("compiled_document_id, COUNT(*) AS total").
		Where("compiled_document_id IN ? AND document_id <> compiled_document_id", compiledIDs).
		Group("compiled_document_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		result[row.CompiledDocumentID] = db.Count(row.Total)
	}
	return result, nil
}

func (r *ArchiveRepositoryImpl) ArchivedMembers(ctx context.Context, compiledID uint64) ([]domain.Document, error) {
	var docs []domain.Document
	err := r.db.WithContext(ctx).
		Joins("JOIN compiled_document_items ON compiled_document_items.document_id = documents.id").
		Where("compiled_document_items.compiled_document_id = ? AND documents.id <> ?", compiledID, compiledID).
		Where("documents.deleted_at IS NOT NULL").
		Order("documents.title ASC, documents.id ASC").
		Find(&docs).Error
	return docs, err
}

// AuthorNames returns each document's authors joined by ", " in author order.
func (r *ArchiveRepositoryImpl) AuthorNames(ctx context.Context, documentIDs []uint64) (map[uint64]string, error) {
	result := make(map[uint64]string, len(documentIDs))
	if len(documentIDs) == 0 {
		return result, nil
	}
	var rows []struct {
		DocumentID uint64
		FullName   string
	}
	err := r.db.WithContext(ctx).
		Table("document_authors").
		Select("document_authors.document_id, authors.full_name").
		Joins("JOIN authors ON authors.id = document_authors.author_id").
		Where("document_authors.document_id IN ?", documentIDs).
		Order("document_authors.document_id, document_authors.author_order, authors.id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	names := make(map[uint64][]string, len(documentIDs))
	for _, row := range rows {
		names[row.DocumentID] = append(names[row.DocumentID], row.FullName)
	}
	for id, list := range names {
		result[id] = strings.Join(list, ", ")
	}
	return result, nil
}

// Stamping uses UpdateColumn so updated_at keeps its pre-archive value.

func (r *ArchiveRepositoryImpl) ArchiveDocuments(ctx context.Context, ids []uint64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id IN ? AND deleted_at IS NULL", ids).
		UpdateColumn("deleted_at", at).Error
}

func (r *ArchiveRepositoryImpl) ArchiveCompiled(ctx context.Context, id uint64, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&domain.CompiledDocument{}).
		Where("id = ? AND deleted_at IS NULL", id).
		UpdateColumn("deleted_at", at).Error
}

func (r *ArchiveRepositoryImpl) RestoreDocuments(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id IN ? AND deleted_at IS NOT NULL", ids).
		UpdateColumn("deleted_at", gorm.Expr("NULL")).Error
}

func (r *ArchiveRepositoryImpl) RestoreCompiled(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).
		Model(&domain.CompiledDocument{}).
		Where("id = ? AND deleted_at IS NOT NULL", id).
		UpdateColumn("deleted_at", gorm.Expr("NULL")).Error
}

func (r *ArchiveRepositoryImpl) HasActiveDocumentDuplicate(ctx context.Context, title string, category domain.Category, excludeID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Document{}).
		Where("id <> ? AND deleted_at IS NULL", excludeID).
		Where("LOWER(title) = LOWER(?) AND category = ?", title, category).
		Count(&n).Error
	return n > 0, err
}

func (r *ArchiveRepositoryImpl) HasActiveCompiledDuplicate(ctx context.Context, category domain.Category, volume string, excludeID uint64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.CompiledDocument{}).
		Where("id <> ? AND deleted_at IS NULL", excludeID).
		Where("category = ? AND volume = ?", category, volume).
		Count(&n).Error
	return n > 0, err
}

// DeleteRecord hard-deletes both halves of a record and every link that points
// at it. Former members stay behind as unlinked documents.
func (r *ArchiveRepositoryImpl) DeleteRecord(ctx context.Context, id uint64) error {
	tx := r.db.WithContext(ctx)
	steps := []func() error{
		func() error { return tx.Where("document_id = ?", id).Delete(&domain.DocumentAuthor{}).Error },
		func() error { return tx.Where("document_id = ?", id).Delete(&domain.DocumentTopic{}).Error },
		func() error { return tx.Where("document_id = ?", id).Delete(&domain.DocumentRequest{}).Error },
		func() error {
			return tx.Where("compiled_document_id = ? OR document_id = ?", id, id).Delete(&domain.CompiledDocumentItem{}).Error
		},
		func() error {
			return tx.Model(&domain.Document{}).
				Where("compiled_parent_id = ?", id).
				UpdateColumn("compiled_parent_id", gorm.Expr("NULL")).Error
		},
		func() error { return tx.Where("id = ?", id).Delete(&domain.Document{}).Error },
		func() error { return tx.Where("id = ?", id).Delete(&domain.CompiledDocument{}).Error },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// archivedUnion selects (id, source, deleted_at) for every archived listing
// entry. source is 0 for documents rows and 1 for compiled groups that have no
// archived documents row, so a mirrored record is listed once.
func archivedUnion(p ListParams) (string, []any) {
	docConds := []string{"d.deleted_at IS NOT NULL"}
	cmpConds := []string{
		"cd.deleted_at IS NOT NULL",
		"NOT EXISTS (SELECT 1 FROM documents dm WHERE dm.id = cd.id AND dm.deleted_at IS NOT NULL)",
	}
	var docArgs, cmpArgs []any

	if p.Type != "" {
		docConds = append(docConds, "d.category = ?")
		docArgs = append(docArgs, p.Type)
		cmpConds = append(cmpConds, "cd.category = ?")
		cmpArgs = append(cmpArgs, p.Type)
	}
	if p.Search != "" {
		pattern := likePattern(p.Search)
		docConds = append(docConds, `(LOWER(d.title) LIKE ? ESCAPE '\' OR LOWER(d.abstract) LIKE ? ESCAPE '\')`)
		docArgs = append(docArgs, pattern, pattern)
		cmpConds = append(cmpConds, `(LOWER(cd.category) LIKE ? ESCAPE '\' OR LOWER(cd.volume) LIKE ? ESCAPE '\')`)
		cmpArgs = append(cmpArgs, pattern, pattern)
	}
	if p.CompiledOnly {
		docConds = append(docConds, "EXISTS (SELECT 1 FROM compiled_documents dc WHERE dc.id = d.id)")
	}

	query := "SELECT d.id AS id, 0 AS source, d.deleted_at AS deleted_at FROM documents d WHERE " +
		strings.Join(docConds, " AND ") +
		" UNION ALL " +
		"SELECT cd.id AS id, 1 AS source, cd.deleted_at AS deleted_at FROM compiled_documents cd WHERE " +
		strings.Join(cmpConds, " AND ")
	return query, append(docArgs, cmpArgs...)
}

func likePattern(search string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(strings.ToLower(search))
	return "%" + escaped + "%"
}

func (r *ArchiveRepositoryImpl) CountArchived(ctx context.Context, params ListParams) (int, error) {
	union, args := archivedUnion(params)
	var total int64
	err := r.db.WithContext(ctx).
		Raw("SELECT COUNT(*) FROM ("+union+") archived", args...).
		Scan(&total).Error
	return db.Count(total), err
}

func (r *ArchiveRepositoryImpl) ListArchived(ctx context.Context, params ListParams) ([]RecordRef, error) {
	union, args := archivedUnion(params)
	args = append(args, params.PageSize, params.offset())

	var rows []struct {
		ID     uint64
		Source int
	}
	err := r.db.WithContext(ctx).
		Raw("SELECT id, source FROM ("+union+") archived ORDER BY deleted_at DESC, id DESC LIMIT ? OFFSET ?", args...).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	refs := make([]RecordRef, 0, len(rows))
	for _, row := range rows {
		refs = append(refs, RecordRef{ID: row.ID, CompiledOnly: row.Source == 1})
	}
	return refs, nil
}

func (r *ArchiveRepositoryImpl) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	var rows []struct {
		Category string
		Total    int64
	}
	err := r.db.WithContext(ctx).Raw(`
		SELECT category, CAST(SUM(total) AS BIGINT) AS total FROM (
			SELECT d.category AS category, COUNT(*) AS total
			FROM documents d
			WHERE d.deleted_at IS NOT NULL
			GROUP BY d.category
			UNION ALL
			SELECT cd.category AS category, COUNT(*) AS total
			FROM compiled_documents cd
			WHERE cd.deleted_at IS NOT NULL
			  AND NOT EXISTS (SELECT 1 FROM documents dm WHERE dm.id = cd.id AND dm.deleted_at IS NOT NULL)
			GROUP BY cd.category
		) counts
		GROUP BY category
		ORDER BY category`).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make([]domain.CategoryCount, 0, len(rows))
	for _, row := range rows {
		counts = append(counts, domain.CategoryCount{
			Category: domain.Category(row.Category),
			Count:    db.Count(row.Total),
		})
	}
	return counts, nil
}
