package document

import (
	"context"
	"document-archive/internal/cache"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	"document-archive/internal/search"
	defError "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

// VersionKey is bumped whenever the listing may have changed.
const VersionKey = "documents:version"

const maxSearchLimit = 100

type Service interface {
	ListDocuments(ctx context.Context, params ListParams) (*Page, error)
	GetDocument(ctx context.Context, id uint64, email string) (*Detail, error)
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
	Search(ctx context.Context, query string, limit int) (*SearchResult, error)
	Upload(ctx context.Context, input UploadInput) (*Detail, error)
	CreateCompiled(ctx context.Context, input CompiledInput) (*CompiledResult, error)
	Reindex(ctx context.Context) (int, error)
}

type FileStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type Indexer interface {
	IndexDocuments(docs ...search.Document) error
	Delete(ids ...uint64) error
	Rebuild(docs []search.Document) error
	Search(query string, limit int) ([]search.Hit, error)
}

type AccessChecker interface {
	CheckAccess(ctx context.Context, documentID uint64, email string) (bool, error)
}

type DefaultService struct {
	repository DocumentRepository
	cache      *cache.Cache
	cacheTTL   time.Duration
	index      Indexer
	files      FileStore
	access     AccessChecker
	logger     *zap.Logger
}

func NewService(
	repository DocumentRepository,
	cache *cache.Cache,
	cacheTTL time.Duration,
	index Indexer,
	files FileStore,
	access AccessChecker,
	logger *zap.Logger,
) Service {
	return &DefaultService{
		repository: repository,
		cache:      cache,
		cacheTTL:   cacheTTL,
		index:      index,
		files:      files,
		access:     access,
		logger:     logger,
	}
}

func (s *DefaultService) ListDocuments(ctx context.Context, params ListParams) (*Page, error) {
	if params.Sort == "" {
		params.Sort = SortLatest
	}
	if !params.Sort.Valid() {
		return nil, errors.BadRequest("sort must be one of latest, earliest, title", nil)
	}
	if params.Category != "" && !params.Category.Valid() {
		return nil, errors.BadRequest("Unknown document category", nil)
	}

	version := s.cache.GetVersion(ctx, VersionKey)
	cacheKey := fmt.Sprintf("documents:v%d:%s:%s:%d:%d:%s",
		version, params.Category, params.Volume, params.Page, params.Size, params.Sort)

	var cached Page
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return &cached, nil
	}

	rows, err := s.repository.ListRows(ctx, params)
	if err != nil {
		return nil, errors.Storage(err)
	}
	page := Aggregate(rows, AggregateOptions{Page: params.Page, PageSize: params.Size, Sort: params.Sort})

	_ = s.cache.Set(ctx, cacheKey, page, s.cacheTTL)
	return &page, nil
}

func (s *DefaultService) GetDocument(ctx context.Context, id uint64, email string) (*Detail, error) {
	doc, err := s.repository.FindActive(ctx, id)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.NotFound("Document not found", err)
		}
		return nil, errors.Storage(err)
	}

	if !doc.IsPublic {
		if s.access == nil {
			return nil, errors.Forbidden("Access to this document requires an approved request", nil)
		}
		allowed, err := s.access.CheckAccess(ctx, id, email)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, errors.Forbidden("Access to this document requires an approved request", nil)
		}
	}

	return s.detail(ctx, doc)
}

func (s *DefaultService) detail(ctx context.Context, doc *domain.Document) (*Detail, error) {
	authors, err := s.repository.Authors(ctx, doc.ID)
	if err != nil {
		return nil, errors.Storage(err)
	}
	topics, err := s.repository.Topics(ctx, doc.ID)
	if err != nil {
		return nil, errors.Storage(err)
	}
	parents, err := s.repository.CompiledParents(ctx, doc.ID)
	if err != nil {
		return nil, errors.Storage(err)
	}

	if authors == nil {
		authors = []string{}
	}
	if topics == nil {
		topics = []TopicRef{}
	}
	return &Detail{Document: *doc, Authors: authors, Topics: topics, CompiledParents: parents}, nil
}

func (s *DefaultService) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	counts, err := s.repository.CategoryCounts(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	return counts, nil
}

func (s *DefaultService) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	if s.index == nil {
		return nil, errors.Unavailable("Search is not available")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.BadRequest("q is required", nil)
	}
	if limit <= 0 {
		limit = search.DefaultLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	hits, err := s.index.Search(query, limit)
	if err != nil {
		return nil, errors.BadRequest("Invalid search query", err)
	}

	result := &SearchResult{Query: query, Hits: make([]SearchHit, 0, len(hits))}
	for _, h := range hits {
		result.Hits = append(result.Hits, SearchHit{
			ID:       h.ID,
			Title:    h.Title,
			Category: domain.Category(h.Category),
			Score:    h.Score,
		})
	}
	return result, nil
}

func (s *DefaultService) Upload(ctx context.Context, input UploadInput) (*Detail, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return nil, errors.BadRequest("title is required", nil)
	}
	if !input.Category.Valid() {
		return nil, errors.BadRequest("Unknown document category", nil)
	}
	if len(input.Data) == 0 {
		return nil, errors.BadRequest("file is required", nil)
	}
	if s.files == nil {
		return nil, errors.Unavailable("File storage is not configured")
	}

	dup, err := s.repository.HasActiveDuplicate(ctx, input.Title, input.Category)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if dup {
		return nil, errors.Conflict("An active document with the same title and category already exists", nil)
	}

	key := fmt.Sprintf("documents/%s-%s%s", slug.Make(input.Title), uuid.NewString(), strings.ToLower(filepath.Ext(input.FileName)))
	location, err := s.files.Put(ctx, key, input.Data, input.ContentType)
	if err != nil {
		s.logger.Error("File upload failed", zap.String("key", key), zap.Error(err))
		return nil, errors.Storage(err)
	}

	doc := &domain.Document{
		Title:           input.Title,
		Abstract:        strings.TrimSpace(input.Abstract),
		PublicationDate: input.PublicationDate,
		Category:        input.Category,
		Volume:          input.Volume,
		IssueNumber:     input.IssueNumber,
		FilePath:        location,
		IsPublic:        input.IsPublic,
	}
	authors := cleanNames(input.Authors)
	topics := cleanNames(input.Topics)
	if err := s.repository.Create(ctx, doc, authors, topics); err != nil {
		if db.IsUniqueViolation(err) {
			return nil, errors.Conflict("Document already exists", err)
		}
		return nil, errors.Storage(err)
	}

	s.logger.Info("Document uploaded",
		zap.Uint64("id", doc.ID),
		zap.String("path", location),
		zap.String("size", humanize.Bytes(uint64(len(input.Data)))))

	s.cache.IncrementVersion(ctx, VersionKey)
	s.reindex(ctx, doc.ID)

	return s.detail(ctx, doc)
}

func (s *DefaultService) CreateCompiled(ctx context.Context, input CompiledInput) (*CompiledResult, error) {
	category := domain.Category(strings.ToUpper(strings.TrimSpace(input.Category)))
	if !category.Valid() {
		return nil, errors.BadRequest("Unknown document category", nil)
	}
	volume := strings.TrimSpace(input.Volume)
	if volume == "" {
		return nil, errors.BadRequest("volume is required", nil)
	}
	if input.StartYear != nil && input.EndYear != nil && *input.EndYear < *input.StartYear {
		return nil, errors.BadRequest("end_year must not be before start_year", nil)
	}

	memberIDs := uniqueIDs(input.DocumentIDs)
	if len(memberIDs) == 0 {
		return nil, errors.BadRequest("document_ids must not be empty", nil)
	}

	dup, err := s.repository.HasActiveCompiledDuplicate(ctx, category, volume)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if dup {
		return nil, errors.Conflict("An active compiled document with the same category and volume already exists", nil)
	}

	compiled := &domain.CompiledDocument{
		StartYear:   input.StartYear,
		EndYear:     input.EndYear,
		Volume:      volume,
		IssueNumber: strings.TrimSpace(input.IssueNumber),
		Category:    category,
	}
	mirror := &domain.Document{
		Title:       compiled.Title(),
		Category:    category,
		Volume:      volume,
		IssueNumber: compiled.IssueNumber,
		IsPublic:    input.IsPublic == nil || *input.IsPublic,
	}

	if err := s.repository.CreateCompiled(ctx, compiled, mirror, memberIDs); err != nil {
		if defError.Is(err, ErrInvalidMembers) {
			return nil, errors.BadRequest("Every child document must exist, be active and not belong to another compiled document", err)
		}
		return nil, errors.Storage(err)
	}

	s.logger.Info("Compiled document created",
		zap.Uint64("id", compiled.ID),
		zap.Int("children", len(memberIDs)))
	s.cache.IncrementVersion(ctx, VersionKey)

	return &CompiledResult{CompiledDocument: *compiled, Title: mirror.Title, ChildDocuments: memberIDs}, nil
}

// Reindex rebuilds the search index from the database and returns how many
// documents it now holds.
func (s *DefaultService) Reindex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, errors.Unavailable("Search is not available")
	}
	docs, err := s.repository.SearchDocuments(ctx, nil)
	if err != nil {
		return 0, errors.Storage(err)
	}
	if err := s.index.Rebuild(docs); err != nil {
		return 0, errors.Internal(err)
	}
	return len(docs), nil
}

// reindex refreshes ids in the search index. Failures are logged only.
func (s *DefaultService) reindex(ctx context.Context, ids ...uint64) {
	if s.index == nil {
		return
	}
	docs, err := s.repository.SearchDocuments(ctx, ids)
	if err == nil {
		err = s.index.IndexDocuments(docs...)
	}
	if err != nil {
		s.logger.Warn("Search index update failed", zap.Uint64s("ids", ids), zap.Error(err))
	}
}

func cleanNames(names []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}

func uniqueIDs(ids []uint64) []uint64 {
	seen := map[uint64]struct{}{}
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
