package memory

import (
	"context"
	"sync"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/lending"
)

// Store keeps users, books and loans in process memory. Every table keeps
// an insertion-order index so listings match the Postgres seq ordering.
// Transactions run under the store mutex and are rolled back by restoring
// a snapshot taken before fn runs.
type Store struct {
	mu   sync.Mutex
	data state
}

type state struct {
	users     map[string]user.User
	userOrder []string
	books     map[string]book.Book
	bookOrder []string
	loans     map[string]loan.Loan
	loanOrder []string
}

func NewStore() *Store {
	return &Store{
		data: state{
			users: make(map[string]user.User),
			books: make(map[string]book.Book),
			loans: make(map[string]loan.Loan),
		},
	}
}

func (s state) clone() state {
	out := state{
		users:     make(map[string]user.User, len(s.users)),
		userOrder: append([]string(nil), s.userOrder...),
		books:     make(map[string]book.Book, len(s.books)),
		bookOrder: append([]string(nil), s.bookOrder...),
		loans:     make(map[string]loan.Loan, len(s.loans)),
		loanOrder: append([]string(nil), s.loanOrder...),
	}
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.books {
		out.books[k] = v
	}
	for k, v := range s.loans {
		out.loans[k] = v
	}
	return out
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx lending.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()

	if err := fn(ctx, &lendingTx{st: &s.data}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

func removeID(order []string, id string) []string {
	out := order[:0]
	for _, v := range order {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

// window bounds [offset, offset+limit) to [0, total). A limit of 0 means
// no limit.
func window(total, limit, offset int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if offset >= total {
		return total, total
	}
	end := total
	if limit > 0 && limit < total-offset {
		end = offset + limit
	}
	return offset, end
}
