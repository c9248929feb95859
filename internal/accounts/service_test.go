package accounts_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/geocoder89/libraryhub/internal/accounts"
	"github.com/geocoder89/libraryhub/internal/auth"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/repo/memory"
	"github.com/geocoder89/libraryhub/internal/security"
	"github.com/geocoder89/libraryhub/internal/utils"
)

func newService(t *testing.T, admin accounts.AdminCredentials) (*accounts.Service, *auth.Manager) {
	t.Helper()

	tokens := auth.NewManager("test-secret", 0)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := accounts.NewService(memory.NewStore(), security.NewBcrypt(bcrypt.MinCost), tokens, admin, log)
	return svc, tokens
}

func creds(name, email, password string) user.CredentialsRequest {
	return user.CredentialsRequest{Name: name, Email: email, Password: password, PasswordConfirm: password}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, tokens := newService(t, accounts.AdminCredentials{})
	ctx := context.Background()

	u, err := svc.Register(ctx, creds("Ana", "ana@x.com", "abcd"))
	require.NoError(t, err)
	assert.Equal(t, user.RoleUser, u.Role)
	assert.NotEqual(t, "abcd", u.PasswordHash)

	token, got, err := svc.Login(ctx, user.LoginRequest{Email: "ana@x.com", Password: "abcd"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	claims, err := tokens.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.WithinDuration(t, claims.IssuedAt.Add(auth.DefaultAccessTTL), claims.ExpiresAt.Time, time.Second)
}

func TestLogin_Failures(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{})
	ctx := context.Background()

	_, err := svc.Register(ctx, creds("Ana", "ana@x.com", "abcd"))
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, user.LoginRequest{Email: "ana@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, user.LoginRequest{Email: "nobody@x.com", Password: "abcd"})
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{})
	ctx := context.Background()

	_, err := svc.Register(ctx, creds("Ana", "ana@x.com", "abcd"))
	require.NoError(t, err)

	_, err = svc.Register(ctx, creds("Ana 2", "ana@x.com", "efgh"))
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestBootstrap_OnlyOnce(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{Name: "Root", Email: "root@x.com", Password: "s3cret"})
	ctx := context.Background()

	admin, err := svc.Bootstrap(ctx)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = svc.Bootstrap(ctx)
	assert.ErrorIs(t, err, user.ErrAdminExists)

	_, _, err = svc.Login(ctx, user.LoginRequest{Email: "root@x.com", Password: "s3cret"})
	assert.NoError(t, err)
}

func TestBootstrap_ConcurrentCallsCreateOneAdmin(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{Email: "root@x.com", Password: "s3cret"})
	ctx := context.Background()

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Bootstrap(ctx); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
}

func TestBootstrap_NotConfigured(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{})

	_, err := svc.Bootstrap(context.Background())
	assert.ErrorIs(t, err, accounts.ErrBootstrapNotConfigured)
}

func TestUpdate_RehashesPassword(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{})
	ctx := context.Background()

	u, err := svc.Register(ctx, creds("Ana", "ana@x.com", "abcd"))
	require.NoError(t, err)

	updated, err := svc.Update(ctx, u.ID, creds("Ana Maria", "ana.maria@x.com", "wxyz"))
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.NotEqual(t, u.PasswordHash, updated.PasswordHash)

	_, _, err = svc.Login(ctx, user.LoginRequest{Email: "ana.maria@x.com", Password: "abcd"})
	assert.ErrorIs(t, err, accounts.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, user.LoginRequest{Email: "ana.maria@x.com", Password: "wxyz"})
	assert.NoError(t, err)

	_, err = svc.Update(ctx, "00000000-0000-0000-0000-000000000000", creds("x", "x@x.com", "abcd"))
	assert.ErrorIs(t, err, user.ErrNotFound)
}

func TestProvisionAdminAndList(t *testing.T) {
	svc, _ := newService(t, accounts.AdminCredentials{})
	ctx := context.Background()

	_, err := svc.Register(ctx, creds("Ana", "ana@x.com", "abcd"))
	require.NoError(t, err)
	admin, err := svc.ProvisionAdmin(ctx, creds("Bia", "bia@x.com", "abcd"))
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	all, err := svc.List(ctx, utils.Page{Limit: 5, Number: 1})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "ana@x.com", all[0].Email)

	require.NoError(t, svc.Delete(ctx, admin.ID))
	assert.ErrorIs(t, svc.Delete(ctx, admin.ID), user.ErrNotFound)
}
