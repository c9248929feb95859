package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bookColumns = `id, title, author, status, created_at, updated_at`

type BooksRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewBooksRepo(pool *pgxpool.Pool, prom *observability.Prom) *BooksRepo {
	return &BooksRepo{pool: pool, prom: prom}
}

func (r *BooksRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanBook(row pgx.Row) (book.Book, error) {
	var (
		b      book.Book
		status int16
	)
	err := row.Scan(&b.ID, &b.Title, &b.Author, &status, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return book.Book{}, book.ErrNotFound
	}
	b.Status = book.Status(status)
	return b, err
}

func (r *BooksRepo) CreateBook(ctx context.Context, b book.Book) error {
	return r.observe("books.create", func() error {
		_, err := r.pool.Exec(ctx, `
			INSERT INTO books (id, title, author, status, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6)
		`, b.ID, b.Title, b.Author, int16(b.Status), b.CreatedAt, b.UpdatedAt)
		return err
	})
}

func (r *BooksRepo) GetBook(ctx context.Context, id string) (b book.Book, err error) {
	err = r.observe("books.get_by_id", func() error {
		b, err = scanBook(r.pool.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
		return err
	})
	return
}

// ListBooks returns books in insertion order. A zero Limit means no limit.
func (r *BooksRepo) ListBooks(ctx context.Context, filter book.ListFilter) ([]book.Book, error) {
	q := `SELECT ` + bookColumns + ` FROM books`

	var (
		conds   []string
		args    []any
		argsPos = 1
	)

	if filter.Status != nil {
		conds = append(conds, fmt.Sprintf("status = $%d", argsPos))
		args = append(args, int16(*filter.Status))
		argsPos++
	}

	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}

	q += " ORDER BY seq ASC"

	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argsPos, argsPos+1)
		args = append(args, filter.Limit, filter.Offset)
	}

	var rows pgx.Rows
	err := r.observe("books.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, q, args...)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]book.Book, 0, filter.Limit)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	if err := rows.Err(); err != nil {
		if r.prom != nil {
			r.prom.DbErrorsTotal.WithLabelValues("books.list", "rows_err").Inc()
		}
		return nil, err
	}
	return out, nil
}

func (r *BooksRepo) AllBooks(ctx context.Context) ([]book.Book, error) {
	return r.ListBooks(ctx, book.ListFilter{})
}

func (r *BooksRepo) UpdateBook(ctx context.Context, id string, req book.UpdateRequest) (b book.Book, err error) {
	status := book.StatusAvailable
	if req.Status != nil {
		status = *req.Status
	}

	err = r.observe("books.update", func() error {
		b, err = scanBook(r.pool.QueryRow(ctx, `
			UPDATE books
			SET title = $2, author = $3, status = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING `+bookColumns,
			id, req.Title, req.Author, int16(status),
		))
		return err
	})
	return
}

// DeleteBook refuses to remove a book that is still referenced by a loan.
func (r *BooksRepo) DeleteBook(ctx context.Context, id string) error {
	var tag pgconn.CommandTag

	err := r.observe("books.delete", func() error {
		var e error
		tag, e = r.pool.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		return e
	})

	if IsForeignKeyViolation(err) {
		return book.ErrOnLoan
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return book.ErrNotFound
	}
	return nil
}
