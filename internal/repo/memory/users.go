package memory

import (
	"context"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/user"
)

func (s *Store) CreateUser(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertUserLocked(u)
}

func (s *Store) CreateFirstAdmin(_ context.Context, u user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.data.users {
		if existing.IsAdmin() {
			return user.ErrAdminExists
		}
	}
	return s.insertUserLocked(u)
}

func (s *Store) insertUserLocked(u user.User) error {
	if s.emailTakenLocked(u.Email, "") {
		return user.ErrEmailTaken
	}
	s.data.users[u.ID] = u
	s.data.userOrder = append(s.data.userOrder, u.ID)
	return nil
}

func (s *Store) emailTakenLocked(email, exceptID string) bool {
	for id, existing := range s.data.users {
		if id != exceptID && existing.Email == email {
			return true
		}
	}
	return false
}

func (s *Store) GetUserByID(_ context.Context, id string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.data.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range s.data.userOrder {
		if u := s.data.users[id]; u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context, limit, offset int) ([]user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start, end := window(len(s.data.userOrder), limit, offset)
	out := make([]user.User, 0, end-start)
	for _, id := range s.data.userOrder[start:end] {
		out = append(out, s.data.users[id])
	}
	return out, nil
}

func (s *Store) UpdateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.data.users[u.ID]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	if s.emailTakenLocked(u.Email, u.ID) {
		return user.User{}, user.ErrEmailTaken
	}

	existing.Name = u.Name
	existing.Email = u.Email
	existing.PasswordHash = u.PasswordHash
	existing.UpdatedAt = time.Now().UTC()
	s.data.users[u.ID] = existing
	return existing, nil
}

// DeleteUser removes the user together with their loans, returning the
// borrowed books to the shelf.
func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data.users[id]; !ok {
		return user.ErrNotFound
	}

	now := time.Now().UTC()
	for loanID, l := range s.data.loans {
		if l.UserID != id {
			continue
		}
		if b, ok := s.data.books[l.BookID]; ok {
			b.Status = book.StatusAvailable
			b.UpdatedAt = now
			s.data.books[l.BookID] = b
		}
		delete(s.data.loans, loanID)
		s.data.loanOrder = removeID(s.data.loanOrder, loanID)
	}

	delete(s.data.users, id)
	s.data.userOrder = removeID(s.data.userOrder, id)
	return nil
}
