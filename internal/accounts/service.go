package accounts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/utils"
)

var (
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrBootstrapNotConfigured = errors.New("bootstrap administrator is not configured")
)

type Users interface {
	CreateUser(ctx context.Context, u user.User) error
	CreateFirstAdmin(ctx context.Context, u user.User) error
	GetUserByID(ctx context.Context, id string) (user.User, error)
	GetUserByEmail(ctx context.Context, email string) (user.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]user.User, error)
	UpdateUser(ctx context.Context, u user.User) (user.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type Hasher interface {
	Hash(plain string) (string, error)
	Verify(hash, plain string) error
}

type TokenIssuer interface {
	GenerateAccessToken(userID string) (string, error)
}

// AdminCredentials configure the administrator created by Bootstrap.
type AdminCredentials struct {
	Name     string
	Email    string
	Password string
}

type Service struct {
	users  Users
	hasher Hasher
	tokens TokenIssuer
	admin  AdminCredentials
	log    *slog.Logger
}

func NewService(users Users, hasher Hasher, tokens TokenIssuer, admin AdminCredentials, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		admin:  admin,
		log:    log,
	}
}

func (s *Service) Register(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
	return s.create(ctx, req, user.RoleUser)
}

// ProvisionAdmin creates another administrator on behalf of an existing one.
func (s *Service) ProvisionAdmin(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
	return s.create(ctx, req, user.RoleAdmin)
}

func (s *Service) create(ctx context.Context, req user.CredentialsRequest, role user.Role) (user.User, error) {
	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.New(req, hash, role)

	if err := s.users.CreateUser(ctx, u); err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user created", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Bootstrap creates the configured first administrator. It succeeds at
// most once per store.
func (s *Service) Bootstrap(ctx context.Context) (user.User, error) {
	if s.admin.Email == "" || len(s.admin.Password) < 4 {
		return user.User{}, ErrBootstrapNotConfigured
	}

	name := s.admin.Name
	if name == "" {
		name = "Administrator"
	}

	hash, err := s.hasher.Hash(s.admin.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	u := user.New(user.CredentialsRequest{Name: name, Email: s.admin.Email}, hash, user.RoleAdmin)

	if err := s.users.CreateFirstAdmin(ctx, u); err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "bootstrap administrator created", "user_id", u.ID)
	return u, nil
}

// Login returns a signed access token. An unknown email is reported as
// user.ErrNotFound; a wrong password as ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, req user.LoginRequest) (string, user.User, error) {
	u, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return "", user.User{}, err
	}

	if err := s.hasher.Verify(u.PasswordHash, req.Password); err != nil {
		s.log.InfoContext(ctx, "login rejected", "user_id", u.ID)
		return "", user.User{}, ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(u.ID)
	if err != nil {
		return "", user.User{}, fmt.Errorf("issue token: %w", err)
	}

	return token, u, nil
}

// Update replaces name, email and password. The password is always
// re-hashed.
func (s *Service) Update(ctx context.Context, id string, req user.CredentialsRequest) (user.User, error) {
	existing, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, fmt.Errorf("hash password: %w", err)
	}

	existing.Name = req.Name
	existing.Email = req.Email
	existing.PasswordHash = hash
	existing.UpdatedAt = time.Now().UTC()

	updated, err := s.users.UpdateUser(ctx, existing)
	if err != nil {
		return user.User{}, err
	}

	s.log.InfoContext(ctx, "user updated", "user_id", updated.ID)
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.users.DeleteUser(ctx, id); err != nil {
		return err
	}

	s.log.InfoContext(ctx, "user deleted", "user_id", id)
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (user.User, error) {
	return s.users.GetUserByID(ctx, id)
}

func (s *Service) List(ctx context.Context, page utils.Page) ([]user.User, error) {
	return s.users.ListUsers(ctx, page.Limit, page.Offset())
}
