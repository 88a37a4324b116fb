package archive

import (
	"context"
	"document-archive/internal/db"
	"document-archive/internal/domain"
	"document-archive/internal/errors"
	defError "errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const MaxPageSize = 100

type Service interface {
	ListArchived(ctx context.Context, params ListParams) (*ListResult, error)
	GetArchived(ctx context.Context, id uint64) (*ArchivedRecord, error)
	Archive(ctx context.Context, id uint64, opts ArchiveOptions) (*ArchiveResult, error)
	Restore(ctx context.Context, id uint64) (*RestoreResult, error)
	ArchivedChildren(ctx context.Context, id uint64) ([]ArchivedChild, error)
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
	Purge(ctx context.Context, id uint64) error
}

// Observer is told about archive changes after they are committed. It must not
// fail the request, so it has no error to return.
type Observer interface {
	Changed(ctx context.Context, change Change)
}

type DefaultService struct {
	repository ArchiveRepository
	logger     *zap.Logger
	observers  []Observer
	now        func() time.Time
}

func NewService(repository ArchiveRepository, logger *zap.Logger, observers ...Observer) Service {
	return &DefaultService{
		repository: repository,
		logger:     logger,
		observers:  observers,
		now:        time.Now,
	}
}

// timestamp is shared by every row one operation touches.
func (s *DefaultService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *DefaultService) ListArchived(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Page < 1 {
		return nil, errors.BadRequest("page must be at least 1", nil)
	}
	if params.PageSize < 1 || params.PageSize > MaxPageSize {
		return nil, errors.BadRequest("size must be between 1 and 100", nil)
	}
	if params.Type != "" && !params.Type.Valid() {
		return nil, errors.BadRequest("Unknown document type", nil)
	}

	var (
		total  int
		refs   []RecordRef
		counts []domain.CategoryCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		total, err = s.repository.CountArchived(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		refs, err = s.repository.ListArchived(gctx, params)
		return err
	})
	g.Go(func() error {
		var err error
		counts, err = s.repository.CategoryCounts(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Storage(err)
	}

	records, err := s.hydrate(ctx, refs)
	if err != nil {
		return nil, errors.Storage(err)
	}

	if counts == nil {
		counts = []domain.CategoryCount{}
	}
	return &ListResult{
		Documents:      records,
		TotalDocuments: total,
		CurrentPage:    params.Page,
		TotalPages:     db.TotalPages(total, params.PageSize),
		CategoryCounts: counts,
	}, nil
}

// hydrate turns listing refs into records, keeping the ref order.
func (s *DefaultService) hydrate(ctx context.Context, refs []RecordRef) ([]ArchivedRecord, error) {
	records := make([]ArchivedRecord, 0, len(refs))
	if len(refs) == 0 {
		return records, nil
	}

	ids := make([]uint64, 0, len(refs))
	var docIDs []uint64
	for _, ref := range refs {
		ids = append(ids, ref.ID)
		if !ref.CompiledOnly {
			docIDs = append(docIDs, ref.ID)
		}
	}

	docs, err := s.repository.FindDocuments(ctx, docIDs)
	if err != nil {
		return nil, err
	}
	compiled, err := s.repository.FindCompiled(ctx, ids)
	if err != nil {
		return nil, err
	}

	compiledIDs := make([]uint64, 0, len(compiled))
	var standaloneIDs []uint64
	for _, id := range ids {
		if _, ok := compiled[id]; ok {
			compiledIDs = append(compiledIDs, id)
		} else {
			standaloneIDs = append(standaloneIDs, id)
		}
	}
	childCounts, err := s.repository.MemberCounts(ctx, compiledIDs)
	if err != nil {
		return nil, err
	}
	authors, err := s.repository.AuthorNames(ctx, standaloneIDs)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		rec := Record{ID: ref.ID}
		if doc, ok := docs[ref.ID]; ok && !ref.CompiledOnly {
			rec.Document = &doc
		}
		if c, ok := compiled[ref.ID]; ok {
			rec.Compiled = &c
		}
		if !rec.Found() {
			// Purged between the page query and hydration.
			continue
		}
		records = append(records, toArchivedRecord(rec, childCounts[ref.ID], authors[ref.ID]))
	}
	return records, nil
}

func toArchivedRecord(rec Record, childCount int, authors string) ArchivedRecord {
	out := ArchivedRecord{ID: rec.ID, IsCompilation: rec.IsCompilation()}

	if rec.Document != nil {
		out.Title = rec.Document.Title
		out.Type = rec.Document.Category
		out.Volume = rec.Document.Volume
		if rec.Document.DeletedAt != nil {
			out.DeletedAt = *rec.Document.DeletedAt
		}
	}
	if rec.Compiled != nil {
		if strings.TrimSpace(out.Title) == "" {
			out.Title = rec.Compiled.Title()
		}
		if out.Type == "" {
			out.Type = rec.Compiled.Category
		}
		if out.Volume == "" {
			out.Volume = rec.Compiled.Volume
		}
		if rec.Document == nil && rec.Compiled.DeletedAt != nil {
			out.DeletedAt = *rec.Compiled.DeletedAt
		}
		out.ChildCount = childCount
	} else {
		out.Authors = authors
	}
	return out
}

func (s *DefaultService) GetArchived(ctx context.Context, id uint64) (*ArchivedRecord, error) {
	rec, err := s.repository.FindRecord(ctx, id)
	if err != nil {
		return nil, errors.Storage(err)
	}

	ref := RecordRef{ID: id}
	switch {
	case rec.Document != nil && rec.Document.DeletedAt != nil:
	case rec.Compiled != nil && rec.Compiled.DeletedAt != nil:
		ref.CompiledOnly = true
	default:
		return nil, errors.NotFound("Archived document not found", nil)
	}

	records, err := s.hydrate(ctx, []RecordRef{ref})
	if err != nil {
		return nil, errors.Storage(err)
	}
	if len(records) == 0 {
		return nil, errors.NotFound("Archived document not found", nil)
	}
	return &records[0], nil
}

func (s *DefaultService) Archive(ctx context.Context, id uint64, opts ArchiveOptions) (*ArchiveResult, error) {
	at := s.timestamp()
	var result *ArchiveResult

	err := s.repository.Transaction(ctx, func(tx ArchiveRepository) error {
		rec, err := tx.FindRecord(ctx, id)
		if err != nil {
			return err
		}
		if !rec.Found() {
			return errors.NotFound("Document not found", nil)
		}

		compiledPath := opts.IsCompiled || rec.Document == nil
		if compiledPath {
			if rec.Compiled == nil {
				return errors.NotFound("Compiled document not found", nil)
			}
			if rec.Compiled.DeletedAt != nil {
				return errors.AlreadyArchived("Compiled document is already archived")
			}
		} else if rec.Document.DeletedAt != nil {
			return errors.AlreadyArchived("Document is already archived")
		}

		var docIDs []uint64
		if rec.Document != nil && rec.Document.DeletedAt == nil {
			docIDs = append(docIDs, id)
		}

		children := []uint64{}
		if rec.Compiled != nil {
			if err := tx.ArchiveCompiled(ctx, id, at); err != nil {
				return err
			}
			if opts.ArchiveChildren {
				active, err := tx.MemberIDs(ctx, id, membersActive)
				if err != nil {
					return err
				}
				children = append(children, active...)
			}
		}

		if err := tx.ArchiveDocuments(ctx, append(docIDs, children...), at); err != nil {
			return err
		}

		result = &ArchiveResult{
			DocumentID:     id,
			IsCompilation:  rec.IsCompilation(),
			ArchivedAt:     at,
			ChildCount:     len(children),
			ChildDocuments: children,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("archive", id, err)
	}

	s.logger.Info("Record archived",
		zap.Uint64("id", id),
		zap.Bool("compilation", result.IsCompilation),
		zap.Int("children", result.ChildCount))
	s.publish(ctx, Change{
		Action:      ActionArchived,
		RecordID:    id,
		DocumentIDs: append([]uint64{id}, result.ChildDocuments...),
	})
	return result, nil
}

func (s *DefaultService) Restore(ctx context.Context, id uint64) (*RestoreResult, error) {
	var result *RestoreResult

	err := s.repository.Transaction(ctx, func(tx ArchiveRepository) error {
		rec, err := tx.FindRecord(ctx, id)
		if err != nil {
			return err
		}
		if !rec.Found() {
			return errors.NotFound("Document not found", nil)
		}
		if rec.primaryDeletedAt() == nil {
			return errors.NotArchived("Document is not archived")
		}

		if rec.Document != nil && strings.TrimSpace(rec.Document.Title) != "" {
			dup, err := tx.HasActiveDocumentDuplicate(ctx, rec.Document.Title, rec.Document.Category, id)
			if err != nil {
				return err
			}
			if dup {
				return errors.Conflict("An active document with the same title and category already exists", nil)
			}
		}
		if rec.Compiled != nil {
			dup, err := tx.HasActiveCompiledDuplicate(ctx, rec.Compiled.Category, rec.Compiled.Volume, id)
			if err != nil {
				return err
			}
			if dup {
				return errors.Conflict("An active compiled document with the same category and volume already exists", nil)
			}
		}

		var docIDs []uint64
		if rec.Document != nil && rec.Document.DeletedAt != nil {
			docIDs = append(docIDs, id)
		}

		children := []uint64{}
		if rec.Compiled != nil {
			if err := tx.RestoreCompiled(ctx, id); err != nil {
				return err
			}
			archived, err := tx.MemberIDs(ctx, id, membersArchived)
			if err != nil {
				return err
			}
			children = append(children, archived...)
		}

		if err := tx.RestoreDocuments(ctx, append(docIDs, children...)); err != nil {
			return err
		}

		result = &RestoreResult{
			DocumentID:       id,
			IsCompilation:    rec.IsCompilation(),
			RestoredChildren: children,
		}
		return nil
	})
	if err != nil {
		return nil, s.fail("restore", id, err)
	}

	s.logger.Info("Record restored",
		zap.Uint64("id", id),
		zap.Bool("compilation", result.IsCompilation),
		zap.Int("children", len(result.RestoredChildren)))
	s.publish(ctx, Change{
		Action:      ActionRestored,
		RecordID:    id,
		DocumentIDs: append([]uint64{id}, result.RestoredChildren...),
	})
	return result, nil
}

func (s *DefaultService) ArchivedChildren(ctx context.Context, id uint64) ([]ArchivedChild, error) {
	rec, err := s.repository.FindRecord(ctx, id)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if !rec.Found() {
		return nil, errors.NotFound("Document not found", nil)
	}
	if rec.Compiled == nil {
		return nil, errors.InvalidRequest("Document is not a compiled document")
	}

	members, err := s.repository.ArchivedMembers(ctx, id)
	if err != nil {
		return nil, errors.Storage(err)
	}
	ids := make([]uint64, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.ID)
	}
	authors, err := s.repository.AuthorNames(ctx, ids)
	if err != nil {
		return nil, errors.Storage(err)
	}

	children := make([]ArchivedChild, 0, len(members))
	for _, m := range members {
		child := ArchivedChild{
			ID:      m.ID,
			Title:   m.Title,
			Type:    m.Category,
			Authors: authors[m.ID],
		}
		if m.DeletedAt != nil {
			child.DeletedAt = *m.DeletedAt
		}
		children = append(children, child)
	}
	return children, nil
}

func (s *DefaultService) CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error) {
	counts, err := s.repository.CategoryCounts(ctx)
	if err != nil {
		return nil, errors.Storage(err)
	}
	if counts == nil {
		counts = []domain.CategoryCount{}
	}
	return counts, nil
}

// Purge hard-deletes an archived record. Members of a purged group are
// unlinked, not deleted.
func (s *DefaultService) Purge(ctx context.Context, id uint64) error {
	err := s.repository.Transaction(ctx, func(tx ArchiveRepository) error {
		rec, err := tx.FindRecord(ctx, id)
		if err != nil {
			return err
		}
		if !rec.Found() {
			return errors.NotFound("Document not found", nil)
		}
		if rec.primaryDeletedAt() == nil {
			return errors.NotArchived("Only archived documents can be deleted permanently")
		}
		return tx.DeleteRecord(ctx, id)
	})
	if err != nil {
		return s.fail("purge", id, err)
	}

	s.logger.Warn("Record purged", zap.Uint64("id", id))
	s.publish(ctx, Change{Action: ActionPurged, RecordID: id, DocumentIDs: []uint64{id}})
	return nil
}

// fail keeps domain errors as they are and turns anything else into a storage error.
func (s *DefaultService) fail(op string, id uint64, err error) error {
	var apiErr *errors.APIError
	if defError.As(err, &apiErr) {
		return apiErr
	}
	s.logger.Error("Archive transaction failed",
		zap.String("op", op),
		zap.Uint64("id", id),
		zap.Error(err))
	return errors.Storage(err)
}

func (s *DefaultService) publish(ctx context.Context, change Change) {
	for _, o := range s.observers {
		o.Changed(ctx, change)
	}
}
