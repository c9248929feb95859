package catalog

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/geocoder89/libraryhub/internal/cache"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/job"
	"github.com/geocoder89/libraryhub/internal/jobs"
	"github.com/geocoder89/libraryhub/internal/utils"
)

type Repository interface {
	CreateBook(ctx context.Context, b book.Book) error
	GetBook(ctx context.Context, id string) (book.Book, error)
	ListBooks(ctx context.Context, filter book.ListFilter) ([]book.Book, error)
	UpdateBook(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type Enqueuer interface {
	Enqueue(ctx context.Context, req job.CreateRequest) (job.Job, bool, error)
}

type CacheRecorder interface {
	ObserveCacheLookup(hit bool)
}

type Service struct {
	repo    Repository
	cache   cache.Cache
	jobs    Enqueuer
	metrics CacheRecorder
	log     *slog.Logger
}

type Option func(*Service)

func WithCache(c cache.Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithJobs enables the catalog mirror: every change enqueues a snapshot job.
func WithJobs(q Enqueuer) Option {
	return func(s *Service) { s.jobs = q }
}

func WithMetrics(m CacheRecorder) Option {
	return func(s *Service) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.log = l }
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo: repo,
		log:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, req book.CreateRequest) (book.Book, error) {
	b := book.NewFromCreateRequest(req)

	if err := s.repo.CreateBook(ctx, b); err != nil {
		return book.Book{}, err
	}

	s.log.InfoContext(ctx, "book created", "book_id", b.ID)
	s.CatalogChanged(ctx, "book.created")
	return b, nil
}

func (s *Service) Get(ctx context.Context, id string) (book.Book, error) {
	return s.repo.GetBook(ctx, id)
}

// List returns books in insertion order, optionally only available ones.
// A nil page returns the whole catalog.
func (s *Service) List(ctx context.Context, availableOnly bool, page *utils.Page) ([]book.Book, error) {
	filter := book.ListFilter{}
	if availableOnly {
		status := book.StatusAvailable
		filter.Status = &status
	}
	if page != nil {
		filter.Limit = page.Limit
		filter.Offset = page.Offset()
	}

	key := utils.BuildBooksListCacheKey(filter)

	if books, ok := s.cached(ctx, key); ok {
		return books, nil
	}

	books, err := s.repo.ListBooks(ctx, filter)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, books)
	return books, nil
}

func (s *Service) Update(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error) {
	b, err := s.repo.UpdateBook(ctx, id, req)
	if err != nil {
		return book.Book{}, err
	}

	s.log.InfoContext(ctx, "book updated", "book_id", b.ID, "status", b.Status.String())
	s.CatalogChanged(ctx, "book.updated")
	return b, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "book deleted", "book_id", id)
	s.CatalogChanged(ctx, "book.deleted")
	return nil
}

// CatalogChanged drops cached listings and schedules a mirror refresh. The
// change is already committed, so failures here are logged, not returned.
func (s *Service) CatalogChanged(ctx context.Context, reason string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx); err != nil {
			s.log.WarnContext(ctx, "catalog cache invalidate failed", "err", err)
		}
	}

	if s.jobs == nil {
		return
	}

	req, err := jobs.NewCatalogSnapshotRequest(reason, "")
	if err != nil {
		s.log.ErrorContext(ctx, "build snapshot job", "err", err)
		return
	}

	j, created, err := s.jobs.Enqueue(ctx, req)
	if err != nil {
		s.log.WarnContext(ctx, "enqueue catalog snapshot failed", "reason", reason, "err", err)
		return
	}
	if created {
		s.log.DebugContext(ctx, "catalog snapshot enqueued", "job_id", j.ID, "reason", reason)
	}
}

func (s *Service) cached(ctx context.Context, key string) ([]book.Book, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "catalog cache get failed", "key", key, "err", err)
	}

	var books []book.Book
	if ok && err == nil {
		if uerr := json.Unmarshal(raw, &books); uerr != nil {
			ok = false
		}
	}

	hit := ok && err == nil
	if s.metrics != nil {
		s.metrics.ObserveCacheLookup(hit)
	}
	return books, hit
}

func (s *Service) store(ctx context.Context, key string, books []book.Book) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(books)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw); err != nil {
		s.log.WarnContext(ctx, "catalog cache set failed", "key", key, "err", err)
	}
}
