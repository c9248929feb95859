package memory

import (
	"context"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/domain/user"
)

// lendingTx operates on state while the store mutex is held.
type lendingTx struct {
	st *state
}

func (tx *lendingTx) LockUser(_ context.Context, userID string) error {
	if _, ok := tx.st.users[userID]; !ok {
		return user.ErrNotFound
	}
	return nil
}

func (tx *lendingTx) CountActiveLoans(_ context.Context, userID string) (int, error) {
	n := 0
	for _, l := range tx.st.loans {
		if l.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (tx *lendingTx) GetBookForUpdate(_ context.Context, bookID string) (book.Book, error) {
	b, ok := tx.st.books[bookID]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (tx *lendingTx) ClaimBook(_ context.Context, bookID string) (bool, error) {
	b, ok := tx.st.books[bookID]
	if !ok || b.Status != book.StatusAvailable {
		return false, nil
	}
	b.Status = book.StatusUnavailable
	b.UpdatedAt = time.Now().UTC()
	tx.st.books[bookID] = b
	return true, nil
}

func (tx *lendingTx) ReleaseBook(_ context.Context, bookID string) error {
	b, ok := tx.st.books[bookID]
	if !ok {
		return book.ErrNotFound
	}
	b.Status = book.StatusAvailable
	b.UpdatedAt = time.Now().UTC()
	tx.st.books[bookID] = b
	return nil
}

func (tx *lendingTx) InsertLoan(_ context.Context, l loan.Loan) error {
	tx.st.loans[l.ID] = l
	tx.st.loanOrder = append(tx.st.loanOrder, l.ID)
	return nil
}

func (tx *lendingTx) GetLoanForUpdate(_ context.Context, loanID string) (loan.Loan, error) {
	l, ok := tx.st.loans[loanID]
	if !ok {
		return loan.Loan{}, loan.ErrNotFound
	}
	return l, nil
}

func (tx *lendingTx) DeleteLoan(_ context.Context, loanID string) error {
	if _, ok := tx.st.loans[loanID]; !ok {
		return loan.ErrNotFound
	}
	delete(tx.st.loans, loanID)
	tx.st.loanOrder = removeID(tx.st.loanOrder, loanID)
	return nil
}
