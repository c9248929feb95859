package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// bootstrapLockKey serializes first-admin creation across API instances.
const bootstrapLockKey = 7302

const userColumns = `id, name, email, password_hash, role, created_at, updated_at`

type UsersRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{pool: pool, prom: prom}
}

func (r *UsersRepo) observe(op string, fn func() error) error {
	if r.prom != nil {
		return r.prom.ObserveDB(op, fn)
	}
	return fn()
}

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertUser(ctx context.Context, db execer, u user.User) error {
	_, err := db.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, u.ID, u.Name, u.Email, u.PasswordHash, string(u.Role), u.CreatedAt, u.UpdatedAt)

	if IsUniqueViolation(err) {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UsersRepo) CreateUser(ctx context.Context, u user.User) error {
	return r.observe("users.create", func() error {
		return insertUser(ctx, r.pool, u)
	})
}

// CreateFirstAdmin inserts u only while no administrator exists.
func (r *UsersRepo) CreateFirstAdmin(ctx context.Context, u user.User) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("users.bootstrap.lock", func() error {
		_, e := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, bootstrapLockKey)
		return e
	})
	if err != nil {
		return
	}

	var exists bool
	err = r.observe("users.bootstrap.admin_exists", func() error {
		return tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`).Scan(&exists)
	})
	if err != nil {
		return
	}
	if exists {
		err = user.ErrAdminExists
		return
	}

	err = r.observe("users.bootstrap.insert", func() error {
		return insertUser(ctx, tx, u)
	})
	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	return
}

func (r *UsersRepo) GetUserByID(ctx context.Context, id string) (u user.User, err error) {
	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return
}

func (r *UsersRepo) GetUserByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})
	return
}

func (r *UsersRepo) ListUsers(ctx context.Context, limit, offset int) ([]user.User, error) {
	var rows pgx.Rows

	err := r.observe("users.list", func() error {
		var qerr error
		rows, qerr = r.pool.Query(ctx, `
			SELECT `+userColumns+`
			FROM users
			ORDER BY seq ASC
			LIMIT $1 OFFSET $2
		`, limit, offset)
		return qerr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]user.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *UsersRepo) UpdateUser(ctx context.Context, u user.User) (updated user.User, err error) {
	err = r.observe("users.update", func() error {
		updated, err = scanUser(r.pool.QueryRow(ctx, `
			UPDATE users
			SET name = $2, email = $3, password_hash = $4, updated_at = NOW()
			WHERE id = $1
			RETURNING `+userColumns,
			u.ID, u.Name, u.Email, u.PasswordHash,
		))
		return err
	})

	if IsUniqueViolation(err) {
		return user.User{}, user.ErrEmailTaken
	}
	return
}

// DeleteUser returns the user's borrowed books to the shelf and removes the
// user; loans go with it through ON DELETE CASCADE.
func (r *UsersRepo) DeleteUser(ctx context.Context, id string) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("users.delete.release_books", func() error {
		_, e := tx.Exec(ctx, `
			UPDATE books
			SET status = 1, updated_at = NOW()
			WHERE id IN (SELECT book_id FROM loans WHERE user_id = $1)
		`, id)
		return e
	})
	if err != nil {
		return fmt.Errorf("release books: %w", err)
	}

	var tag pgconn.CommandTag
	err = r.observe("users.delete", func() error {
		var e error
		tag, e = tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
		return e
	})
	if err != nil {
		return
	}
	if tag.RowsAffected() == 0 {
		err = user.ErrNotFound
		return
	}

	err = tx.Commit(ctx)
	return
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
