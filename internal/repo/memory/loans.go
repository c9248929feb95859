package memory

import (
	"context"

	"github.com/geocoder89/libraryhub/internal/domain/loan"
)

func (s *Store) ListLoans(_ context.Context, filter loan.ListFilter) ([]loan.Loan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]loan.Loan, 0, len(s.data.loanOrder))
	for _, id := range s.data.loanOrder {
		l := s.data.loans[id]
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		matched = append(matched, l)
	}

	start, end := window(len(matched), filter.Limit, filter.Offset)
	out := make([]loan.Loan, end-start)
	copy(out, matched[start:end])
	return out, nil
}
