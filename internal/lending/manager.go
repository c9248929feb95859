// Package lending owns the loan lifecycle: a loan goes from nonexistent to
// active on Create and is removed for good on Delete. Every create or delete
// runs as a single store transaction so the book status flip and the loan
// write either both happen or neither does.
package lending

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/utils"
)

// Tx is the set of store operations available inside one transaction.
type Tx interface {
	// LockUser fails with user.ErrNotFound when the user does not exist.
	LockUser(ctx context.Context, userID string) error
	CountActiveLoans(ctx context.Context, userID string) (int, error)
	GetBookForUpdate(ctx context.Context, bookID string) (book.Book, error)
	// ClaimBook flips available -> unavailable and reports whether the
	// book was still available at write time.
	ClaimBook(ctx context.Context, bookID string) (bool, error)
	// ReleaseBook sets the status to available regardless of the prior value.
	ReleaseBook(ctx context.Context, bookID string) error
	InsertLoan(ctx context.Context, l loan.Loan) error
	GetLoanForUpdate(ctx context.Context, loanID string) (loan.Loan, error)
	DeleteLoan(ctx context.Context, loanID string) error
}

type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	ListLoans(ctx context.Context, filter loan.ListFilter) ([]loan.Loan, error)
}

// CatalogObserver is told about every committed availability change.
type CatalogObserver interface {
	CatalogChanged(ctx context.Context, reason string)
}

type Recorder interface {
	ObserveLoanOperation(op, result string)
}

type Manager struct {
	store    Store
	observer CatalogObserver
	metrics  Recorder
	log      *slog.Logger
}

type Option func(*Manager)

func WithObserver(o CatalogObserver) Option {
	return func(m *Manager) { m.observer = o }
}

func WithRecorder(r Recorder) Option {
	return func(m *Manager) { m.metrics = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func NewManager(store Store, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create checks, in order, the user's loan count and the book's status, then
// claims the book and records the loan.
func (m *Manager) Create(ctx context.Context, req loan.CreateRequest) (created loan.Loan, err error) {
	defer func() { m.record("create", err) }()

	err = m.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		if err := tx.LockUser(ctx, req.UserID); err != nil {
			return err
		}

		active, err := tx.CountActiveLoans(ctx, req.UserID)
		if err != nil {
			return fmt.Errorf("count loans: %w", err)
		}
		if active >= loan.MaxActivePerUser {
			return loan.ErrLimitExceeded
		}

		b, err := tx.GetBookForUpdate(ctx, req.BookID)
		if err != nil {
			return err
		}
		if b.Status != book.StatusAvailable {
			return loan.ErrBookUnavailable
		}

		claimed, err := tx.ClaimBook(ctx, b.ID)
		if err != nil {
			return fmt.Errorf("claim book: %w", err)
		}
		if !claimed {
			return loan.ErrBookUnavailable
		}

		l := loan.New(req.UserID, b.ID)
		if err := tx.InsertLoan(ctx, l); err != nil {
			return fmt.Errorf("insert loan: %w", err)
		}

		created = l
		return nil
	})
	if err != nil {
		return loan.Loan{}, err
	}

	m.log.InfoContext(ctx, "loan created", "loan_id", created.ID, "user_id", created.UserID, "book_id", created.BookID)
	m.notify(ctx, "loan.created")

	return created, nil
}

func (m *Manager) List(ctx context.Context, page utils.Page) ([]loan.Loan, error) {
	return m.store.ListLoans(ctx, loan.ListFilter{
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
}

// ListForUser returns only the loans owned by userID.
func (m *Manager) ListForUser(ctx context.Context, userID string, page utils.Page) ([]loan.Loan, error) {
	return m.store.ListLoans(ctx, loan.ListFilter{
		UserID: &userID,
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
}

// Delete removes any loan and makes its book available again.
func (m *Manager) Delete(ctx context.Context, loanID string) (err error) {
	defer func() { m.record("delete", err) }()

	return m.delete(ctx, loanID, nil)
}

// DeleteOwn is Delete restricted to the caller's loans. A loan owned by
// someone else is reported as not found and nothing is written.
func (m *Manager) DeleteOwn(ctx context.Context, userID, loanID string) (err error) {
	defer func() { m.record("delete_own", err) }()

	return m.delete(ctx, loanID, &userID)
}

func (m *Manager) delete(ctx context.Context, loanID string, ownerID *string) error {
	var deleted loan.Loan

	err := m.store.WithinTx(ctx, func(ctx context.Context, tx Tx) error {
		l, err := tx.GetLoanForUpdate(ctx, loanID)
		if err != nil {
			return err
		}

		if ownerID != nil && l.UserID != *ownerID {
			return loan.ErrNotFound
		}

		err = tx.ReleaseBook(ctx, l.BookID)
		if err != nil && !errors.Is(err, book.ErrNotFound) {
			return fmt.Errorf("release book: %w", err)
		}

		if err := tx.DeleteLoan(ctx, l.ID); err != nil {
			return fmt.Errorf("delete loan: %w", err)
		}

		deleted = l
		return nil
	})
	if err != nil {
		return err
	}

	m.log.InfoContext(ctx, "loan deleted", "loan_id", deleted.ID, "user_id", deleted.UserID, "book_id", deleted.BookID)
	m.notify(ctx, "loan.deleted")

	return nil
}

func (m *Manager) notify(ctx context.Context, reason string) {
	if m.observer != nil {
		m.observer.CatalogChanged(ctx, reason)
	}
}

func (m *Manager) record(op string, err error) {
	if m.metrics == nil {
		return
	}
	m.metrics.ObserveLoanOperation(op, Outcome(err))
}

// Outcome maps an operation error to a low-cardinality label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, loan.ErrLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, loan.ErrBookUnavailable):
		return "book_unavailable"
	case errors.Is(err, loan.ErrNotFound), errors.Is(err, book.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
