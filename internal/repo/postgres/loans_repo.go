package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/lending"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// LoansRepo is the Postgres lending store. Each WithinTx call is one
// database transaction; rows read "for update" stay locked until commit.
type LoansRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewLoansRepo(pool *pgxpool.Pool, prom *observability.Prom) *LoansRepo {
	return &LoansRepo{pool: pool, prom: prom}
}

func (r *LoansRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func (r *LoansRepo) WithinTx(ctx context.Context, fn func(ctx context.Context, tx lending.Tx) error) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err = fn(ctx, &lendingTx{tx: tx, observe: r.observe}); err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func (r *LoansRepo) ListLoans(ctx context.Context, filter loan.ListFilter) ([]loan.Loan, error) {
	q := `SELECT id, user_id, book_id, created_at FROM loans`
	args := []any{}

	if filter.UserID != nil {
		q += ` WHERE user_id = $1`
		args = append(args, *filter.UserID)
	}

	q += ` ORDER BY seq ASC`

	if filter.Limit > 0 {
		q += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows pgx.Rows
	err := r.observe("loans.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]loan.Loan, 0, filter.Limit)
	for rows.Next() {
		var l loan.Loan
		if err := rows.Scan(&l.ID, &l.UserID, &l.BookID, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

type lendingTx struct {
	tx      pgx.Tx
	observe func(op string, fn func() error) error
}

func (t *lendingTx) LockUser(ctx context.Context, userID string) error {
	var id string
	err := t.observe("loans.tx.lock_user", func() error {
		return t.tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return user.ErrNotFound
	}
	return err
}

func (t *lendingTx) CountActiveLoans(ctx context.Context, userID string) (n int, err error) {
	err = t.observe("loans.tx.count_active", func() error {
		return t.tx.QueryRow(ctx, `SELECT COUNT(*) FROM loans WHERE user_id = $1`, userID).Scan(&n)
	})
	return
}

func (t *lendingTx) GetBookForUpdate(ctx context.Context, bookID string) (b book.Book, err error) {
	err = t.observe("loans.tx.lock_book", func() error {
		b, err = scanBook(t.tx.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1 FOR UPDATE`, bookID))
		return err
	})
	return
}

func (t *lendingTx) ClaimBook(ctx context.Context, bookID string) (bool, error) {
	var affected int64
	err := t.observe("loans.tx.claim_book", func() error {
		tag, e := t.tx.Exec(ctx, `
			UPDATE books
			SET status = 0, updated_at = NOW()
			WHERE id = $1 AND status = 1
		`, bookID)
		affected = tag.RowsAffected()
		return e
	})
	return affected == 1, err
}

func (t *lendingTx) ReleaseBook(ctx context.Context, bookID string) error {
	var affected int64
	err := t.observe("loans.tx.release_book", func() error {
		tag, e := t.tx.Exec(ctx, `UPDATE books SET status = 1, updated_at = NOW() WHERE id = $1`, bookID)
		affected = tag.RowsAffected()
		return e
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return book.ErrNotFound
	}
	return nil
}

func (t *lendingTx) InsertLoan(ctx context.Context, l loan.Loan) error {
	return t.observe("loans.tx.insert", func() error {
		_, e := t.tx.Exec(ctx, `
			INSERT INTO loans (id, user_id, book_id, created_at)
			VALUES ($1,$2,$3,$4)
		`, l.ID, l.UserID, l.BookID, l.CreatedAt)
		return e
	})
}

func (t *lendingTx) GetLoanForUpdate(ctx context.Context, loanID string) (l loan.Loan, err error) {
	err = t.observe("loans.tx.lock_loan", func() error {
		return t.tx.QueryRow(ctx, `
			SELECT id, user_id, book_id, created_at
			FROM loans
			WHERE id = $1
			FOR UPDATE
		`, loanID).Scan(&l.ID, &l.UserID, &l.BookID, &l.CreatedAt)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return loan.Loan{}, loan.ErrNotFound
	}
	return
}

func (t *lendingTx) DeleteLoan(ctx context.Context, loanID string) error {
	var affected int64
	err := t.observe("loans.tx.delete", func() error {
		tag, e := t.tx.Exec(ctx, `DELETE FROM loans WHERE id = $1`, loanID)
		affected = tag.RowsAffected()
		return e
	})
	if err != nil {
		return err
	}
	if affected == 0 {
		return loan.ErrNotFound
	}
	return nil
}
