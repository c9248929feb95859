package memory

import (
	"context"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/book"
)

func (s *Store) CreateBook(_ context.Context, b book.Book) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data.books[b.ID] = b
	s.data.bookOrder = append(s.data.bookOrder, b.ID)
	return nil
}

func (s *Store) GetBook(_ context.Context, id string) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}
	return b, nil
}

func (s *Store) ListBooks(_ context.Context, filter book.ListFilter) ([]book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]book.Book, 0, len(s.data.bookOrder))
	for _, id := range s.data.bookOrder {
		b := s.data.books[id]
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		matched = append(matched, b)
	}

	start, end := window(len(matched), filter.Limit, filter.Offset)
	out := make([]book.Book, end-start)
	copy(out, matched[start:end])
	return out, nil
}

func (s *Store) AllBooks(ctx context.Context) ([]book.Book, error) {
	return s.ListBooks(ctx, book.ListFilter{})
}

func (s *Store) UpdateBook(_ context.Context, id string, req book.UpdateRequest) (book.Book, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.data.books[id]
	if !ok {
		return book.Book{}, book.ErrNotFound
	}

	b.Title = req.Title
	b.Author = req.Author
	if req.Status != nil {
		b.Status = *req.Status
	}
	b.UpdatedAt = time.Now().UTC()
	s.data.books[id] = b
	return b, nil
}

func (s *Store) DeleteBook(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.books[id]; !ok {
		return book.ErrNotFound
	}
	for _, l := range s.data.loans {
		if l.BookID == id {
			return book.ErrOnLoan
		}
	}

	delete(s.data.books, id)
	s.data.bookOrder = removeID(s.data.bookOrder, id)
	return nil
}
