package main

import (
	"context"
	"document-archive/internal/archive"
	"document-archive/internal/auth"
	"document-archive/internal/cache"
	"document-archive/internal/config"
	"document-archive/internal/document"
	"document-archive/internal/filestore"
	"document-archive/internal/metrics"
	"document-archive/internal/notify"
	"document-archive/internal/request"
	"document-archive/internal/search"
	"document-archive/internal/user"
	"document-archive/internal/worker"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// services holds everything the router and the background jobs share.
type services struct {
	users     user.Service
	documents document.Service
	requests  request.Service
	archive   archive.Service
	signer    *auth.Signer
	metrics   *metrics.Metrics
}

type infra struct {
	db      *gorm.DB
	cache   *cache.Cache
	index   *search.Index
	files   *filestore.S3Store
	pool    *worker.WorkerPool
	metrics *metrics.Metrics
}

func newServices(cfg *config.Config, logger *zap.Logger, in infra) *services {
	// keep interfaces nil when the backing store is missing
	var indexer document.Indexer
	if in.index != nil {
		indexer = in.index
	}
	var files document.FileStore
	if in.files != nil {
		files = in.files
	}

	var mailer notify.Mailer = notify.NewLogMailer(logger)
	if cfg.MailerURL != "" {
		mailer = notify.NewRelayClient(cfg.MailerURL, cfg.MailerToken)
	}
	notifier := notify.NewNotifier(mailer, in.pool, cfg.MailFrom, logger)

	userService := user.NewService(user.NewRepository(in.db))
	requestService := request.NewService(request.NewRepository(in.db), notifier, logger)

	docRepo := document.NewRepository(in.db)
	docService := document.NewService(docRepo, in.cache, cfg.CacheTTL, indexer, files, requestService, logger)

	observers := []archive.Observer{document.NewArchiveObserver(docRepo, in.cache, indexer, logger)}
	if in.metrics != nil {
		observers = append(observers, in.metrics)
	}
	archiveService := archive.NewService(archive.NewRepository(in.db), logger, observers...)

	return &services{
		users:     userService,
		documents: docService,
		requests:  requestService,
		archive:   archiveService,
		signer:    auth.NewSigner(cfg.JWTSecret, cfg.JWTTTL),
		metrics:   in.metrics,
	}
}

// openIndex opens the search index, or returns nil when it cannot be used.
func openIndex(cfg *config.Config, logger *zap.Logger) *search.Index {
	index, err := search.Open(cfg.SearchIndexPath)
	if err != nil {
		logger.Warn("Search index not available. Running without search.",
			zap.String("path", cfg.SearchIndexPath), zap.Error(err))
		return nil
	}
	return index
}

// openFileStore connects the upload bucket, or returns nil when S3 is not configured.
func openFileStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) *filestore.S3Store {
	if !cfg.S3Enabled() {
		logger.Warn("S3 not configured. Uploads are disabled.")
		return nil
	}
	store, err := filestore.NewS3Store(ctx, cfg)
	if err != nil {
		logger.Error("S3 client failed. Uploads are disabled.", zap.Error(err))
		return nil
	}
	return store
}
