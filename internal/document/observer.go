package document

import (
	"context"
	"document-archive/internal/archive"
	"document-archive/internal/cache"
	"document-archive/internal/search"

	"go.uber.org/zap"
)

// ArchiveObserver keeps the listing cache and the search index in line with
// archive changes.
type ArchiveObserver struct {
	repository DocumentRepository
	cache      *cache.Cache
	index      Indexer
	logger     *zap.Logger
}

func NewArchiveObserver(repository DocumentRepository, cache *cache.Cache, index Indexer, logger *zap.Logger) *ArchiveObserver {
	return &ArchiveObserver{repository: repository, cache: cache, index: index, logger: logger}
}

func (o *ArchiveObserver) Changed(ctx context.Context, change archive.Change) {
	o.cache.IncrementVersion(ctx, VersionKey)
	if o.index == nil || len(change.DocumentIDs) == 0 {
		return
	}

	var err error
	switch change.Action {
	case archive.ActionArchived, archive.ActionPurged:
		err = o.index.Delete(change.DocumentIDs...)
	case archive.ActionRestored:
		var docs []search.Document
		docs, err = o.repository.SearchDocuments(ctx, change.DocumentIDs)
		if err == nil {
			err = o.index.IndexDocuments(docs...)
		}
	}
	if err != nil {
		o.logger.Warn("Search index update failed",
			zap.String("action", change.Action),
			zap.Uint64("record_id", change.RecordID),
			zap.Error(err))
	}
}
