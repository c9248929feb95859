package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/geocoder89/libraryhub/internal/accounts"
	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/loan"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/handlers"
	"github.com/geocoder89/libraryhub/internal/http/middlewares"
	"github.com/geocoder89/libraryhub/internal/security"
	"github.com/geocoder89/libraryhub/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeAccounts struct {
	registerFn  func(ctx context.Context, req user.CredentialsRequest) (user.User, error)
	bootstrapFn func(ctx context.Context) (user.User, error)
	loginFn     func(ctx context.Context, req user.LoginRequest) (string, user.User, error)
	updateFn    func(ctx context.Context, id string, req user.CredentialsRequest) (user.User, error)
	deleteFn    func(ctx context.Context, id string) error
	listFn      func(ctx context.Context, page utils.Page) ([]user.User, error)
}

func (f *fakeAccounts) Register(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
	if f.registerFn != nil {
		return f.registerFn(ctx, req)
	}
	return user.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Role: user.RoleUser}, nil
}

func (f *fakeAccounts) ProvisionAdmin(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
	return user.User{ID: uuid.NewString(), Name: req.Name, Email: req.Email, Role: user.RoleAdmin}, nil
}

func (f *fakeAccounts) Bootstrap(ctx context.Context) (user.User, error) {
	if f.bootstrapFn != nil {
		return f.bootstrapFn(ctx)
	}
	return user.User{ID: uuid.NewString(), Role: user.RoleAdmin}, nil
}

func (f *fakeAccounts) Login(ctx context.Context, req user.LoginRequest) (string, user.User, error) {
	if f.loginFn != nil {
		return f.loginFn(ctx, req)
	}
	return "token", user.User{}, nil
}

func (f *fakeAccounts) Update(ctx context.Context, id string, req user.CredentialsRequest) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return user.User{ID: id, Name: req.Name, Email: req.Email}, nil
}

func (f *fakeAccounts) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeAccounts) List(ctx context.Context, page utils.Page) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx, page)
	}
	return nil, nil
}

type fakeCatalog struct {
	createFn func(ctx context.Context, req book.CreateRequest) (book.Book, error)
	listFn   func(ctx context.Context, availableOnly bool, page *utils.Page) ([]book.Book, error)
	updateFn func(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error)
	deleteFn func(ctx context.Context, id string) error
}

func (f *fakeCatalog) Create(ctx context.Context, req book.CreateRequest) (book.Book, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return book.NewFromCreateRequest(req), nil
}

func (f *fakeCatalog) List(ctx context.Context, availableOnly bool, page *utils.Page) ([]book.Book, error) {
	if f.listFn != nil {
		return f.listFn(ctx, availableOnly, page)
	}
	return nil, nil
}

func (f *fakeCatalog) Update(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return book.Book{ID: id, Title: req.Title, Author: req.Author, Status: *req.Status}, nil
}

func (f *fakeCatalog) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeLoans struct {
	createFn      func(ctx context.Context, req loan.CreateRequest) (loan.Loan, error)
	listFn        func(ctx context.Context, page utils.Page) ([]loan.Loan, error)
	listForUserFn func(ctx context.Context, userID string, page utils.Page) ([]loan.Loan, error)
	deleteFn      func(ctx context.Context, loanID string) error
	deleteOwnFn   func(ctx context.Context, userID, loanID string) error
}

func (f *fakeLoans) Create(ctx context.Context, req loan.CreateRequest) (loan.Loan, error) {
	if f.createFn != nil {
		return f.createFn(ctx, req)
	}
	return loan.New(req.UserID, req.BookID), nil
}

func (f *fakeLoans) List(ctx context.Context, page utils.Page) ([]loan.Loan, error) {
	if f.listFn != nil {
		return f.listFn(ctx, page)
	}
	return nil, nil
}

func (f *fakeLoans) ListForUser(ctx context.Context, userID string, page utils.Page) ([]loan.Loan, error) {
	if f.listForUserFn != nil {
		return f.listForUserFn(ctx, userID, page)
	}
	return nil, nil
}

func (f *fakeLoans) Delete(ctx context.Context, loanID string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, loanID)
	}
	return nil
}

func (f *fakeLoans) DeleteOwn(ctx context.Context, userID, loanID string) error {
	if f.deleteOwnFn != nil {
		return f.deleteOwnFn(ctx, userID, loanID)
	}
	return nil
}

var caller = user.User{ID: uuid.NewString(), Name: "Ana", Email: "ana@example.com", Role: user.RoleUser}

// setupRouter mounts the handlers without the auth gate; the caller is
// injected directly into the context.
func setupRouter(acc handlers.AccountService, cat handlers.CatalogService, ln handlers.LoanService) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middlewares.CtxUser, caller)
		c.Next()
	})

	u := handlers.NewUsersHandler(acc)
	r.POST("/usuarios", u.Register)
	r.POST("/usuarios/login", u.Login)
	r.GET("/usuarios", u.List)
	r.PUT("/usuarios", u.UpdateSelf)
	r.PUT("/usuarios/admin/:id", u.UpdateByAdmin)
	r.DELETE("/usuarios/admin/:id", u.DeleteByAdmin)
	r.GET("/install", u.Install)

	b := handlers.NewBooksHandler(cat)
	r.GET("/livros", b.List)
	r.GET("/livros/disponiveis", b.ListAvailable)
	r.POST("/livros", b.Create)
	r.PUT("/livros/:id", b.Update)
	r.DELETE("/livros/:id", b.Delete)

	l := handlers.NewLoansHandler(ln)
	r.POST("/emprestimos", l.Create)
	r.GET("/emprestimos", l.List)
	r.DELETE("/emprestimos/:id", l.Delete)
	r.GET("/emprestimos/meus", l.ListMine)
	r.DELETE("/emprestimos/meus/:id", l.DeleteMine)

	return r
}

func do(r *gin.Engine, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to unmarshal body: %v body=%s", err, w.Body.String())
	}
	return body
}

const validCredentials = `{"nome":"Ana","email":"ana@example.com","senha":"abcd","senha2":"abcd"}`

func TestUsersHandlers(t *testing.T) {
	tests := []struct {
		name       string
		acc        *fakeAccounts
		method     string
		path       string
		body       string
		wantStatus int
		wantKey    string
	}{
		{
			name:       "register created",
			acc:        &fakeAccounts{},
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       validCredentials,
			wantStatus: http.StatusCreated,
			wantKey:    "message",
		},
		{
			name:       "register password mismatch",
			acc:        &fakeAccounts{},
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       `{"nome":"Ana","email":"ana@example.com","senha":"abcd","senha2":"abce"}`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "message",
		},
		{
			name: "register duplicate email",
			acc: &fakeAccounts{registerFn: func(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
				return user.User{}, user.ErrEmailTaken
			}},
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       validCredentials,
			wantStatus: http.StatusBadRequest,
			wantKey:    "message",
		},
		{
			name:       "register password over 72 characters",
			acc:        &fakeAccounts{},
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       `{"nome":"Ana","email":"ana@example.com","senha":"` + strings.Repeat("a", 73) + `","senha2":"` + strings.Repeat("a", 73) + `"}`,
			wantStatus: http.StatusBadRequest,
			wantKey:    "message",
		},
		{
			name: "register password over 72 bytes",
			acc: &fakeAccounts{registerFn: func(ctx context.Context, req user.CredentialsRequest) (user.User, error) {
				return user.User{}, fmt.Errorf("hash password: %w", security.ErrPasswordTooLong)
			}},
			method:     http.MethodPost,
			path:       "/usuarios",
			body:       validCredentials,
			wantStatus: http.StatusBadRequest,
			wantKey:    "message",
		},
		{
			name:       "login returns token",
			acc:        &fakeAccounts{},
			method:     http.MethodPost,
			path:       "/usuarios/login",
			body:       `{"email":"ana@example.com","senha":"abcd"}`,
			wantStatus: http.StatusOK,
			wantKey:    "token",
		},
		{
			name: "login wrong password",
			acc: &fakeAccounts{loginFn: func(ctx context.Context, req user.LoginRequest) (string, user.User, error) {
				return "", user.User{}, accounts.ErrInvalidCredentials
			}},
			method:     http.MethodPost,
			path:       "/usuarios/login",
			body:       `{"email":"ana@example.com","senha":"nope"}`,
			wantStatus: http.StatusUnauthorized,
			wantKey:    "message",
		},
		{
			name: "login unknown email",
			acc: &fakeAccounts{loginFn: func(ctx context.Context, req user.LoginRequest) (string, user.User, error) {
				return "", user.User{}, user.ErrNotFound
			}},
			method:     http.MethodPost,
			path:       "/usuarios/login",
			body:       `{"email":"ghost@example.com","senha":"abcd"}`,
			wantStatus: http.StatusNotFound,
			wantKey:    "message",
		},
		{
			name:       "list rejects page size",
			acc:        &fakeAccounts{},
			method:     http.MethodGet,
			path:       "/usuarios?limite=7",
			wantStatus: http.StatusBadRequest,
			wantKey:    "message",
		},
		{
			name: "update self uses caller id",
			acc: &fakeAccounts{updateFn: func(ctx context.Context, id string, req user.CredentialsRequest) (user.User, error) {
				if id != caller.ID {
					return user.User{}, errors.New("wrong id")
				}
				return user.User{ID: id}, nil
			}},
			method:     http.MethodPut,
			path:       "/usuarios",
			body:       validCredentials,
			wantStatus: http.StatusOK,
			wantKey:    "user",
		},
		{
			name:       "admin update malformed id",
			acc:        &fakeAccounts{},
			method:     http.MethodPut,
			path:       "/usuarios/admin/not-a-uuid",
			body:       validCredentials,
			wantStatus: http.StatusNotFound,
			wantKey:    "message",
		},
		{
			name: "admin delete unknown user",
			acc: &fakeAccounts{deleteFn: func(ctx context.Context, id string) error {
				return user.ErrNotFound
			}},
			method:     http.MethodDelete,
			path:       "/usuarios/admin/" + uuid.NewString(),
			wantStatus: http.StatusNotFound,
			wantKey:    "message",
		},
		{
			name: "store failure is reported as errorMessage",
			acc: &fakeAccounts{deleteFn: func(ctx context.Context, id string) error {
				return errors.New("connection reset")
			}},
			method:     http.MethodDelete,
			path:       "/usuarios/admin/" + uuid.NewString(),
			wantStatus: http.StatusInternalServerError,
			wantKey:    "errorMessage",
		},
		{
			name:       "install created",
			acc:        &fakeAccounts{},
			method:     http.MethodGet,
			path:       "/install",
			wantStatus: http.StatusCreated,
			wantKey:    "user",
		},
		{
			name: "install twice",
			acc: &fakeAccounts{bootstrapFn: func(ctx context.Context) (user.User, error) {
				return user.User{}, user.ErrAdminExists
			}},
			method:     http.MethodGet,
			path:       "/install",
			wantStatus: http.StatusBadRequest,
			wantKey:    "message",
		},
		{
			name: "install without credentials",
			acc: &fakeAccounts{bootstrapFn: func(ctx context.Context) (user.User, error) {
				return user.User{}, accounts.ErrBootstrapNotConfigured
			}},
			method:     http.MethodGet,
			path:       "/install",
			wantStatus: http.StatusInternalServerError,
			wantKey:    "errorMessage",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(tt.acc, &fakeCatalog{}, &fakeLoans{})
			w := do(r, tt.method, tt.path, tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}

			body := decodeBody(t, w)
			if _, ok := body[tt.wantKey]; !ok {
				t.Fatalf("expected key %q in body=%s", tt.wantKey, w.Body.String())
			}
		})
	}
}

func TestListUsersReturnsEmptyArray(t *testing.T) {
	r := setupRouter(&fakeAccounts{}, &fakeCatalog{}, &fakeLoans{})
	w := do(r, http.MethodGet, "/usuarios", "", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if w.Body.String() != "[]" {
		t.Fatalf("expected empty array, got %s", w.Body.String())
	}
}

func TestBooksHandlers(t *testing.T) {
	tests := []struct {
		name       string
		cat        *fakeCatalog
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "create defaults",
			cat:        &fakeCatalog{},
			method:     http.MethodPost,
			path:       "/livros",
			body:       `{"titulo":"Dom Casmurro","autor":"Machado de Assis"}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "create missing author",
			cat:        &fakeCatalog{},
			method:     http.MethodPost,
			path:       "/livros",
			body:       `{"titulo":"Dom Casmurro"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "update requires status",
			cat:        &fakeCatalog{},
			method:     http.MethodPut,
			path:       "/livros/" + uuid.NewString(),
			body:       `{"titulo":"t","autor":"a"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "update with status zero",
			cat:        &fakeCatalog{},
			method:     http.MethodPut,
			path:       "/livros/" + uuid.NewString(),
			body:       `{"titulo":"t","autor":"a","status":0}`,
			wantStatus: http.StatusOK,
		},
		{
			name: "update unknown book",
			cat: &fakeCatalog{updateFn: func(ctx context.Context, id string, req book.UpdateRequest) (book.Book, error) {
				return book.Book{}, book.ErrNotFound
			}},
			method:     http.MethodPut,
			path:       "/livros/" + uuid.NewString(),
			body:       `{"titulo":"t","autor":"a","status":1}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name: "delete book on loan",
			cat: &fakeCatalog{deleteFn: func(ctx context.Context, id string) error {
				return book.ErrOnLoan
			}},
			method:     http.MethodDelete,
			path:       "/livros/" + uuid.NewString(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "delete malformed id",
			cat:        &fakeCatalog{},
			method:     http.MethodDelete,
			path:       "/livros/42",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "list invalid page",
			cat:        &fakeCatalog{},
			method:     http.MethodGet,
			path:       "/livros?pagina=0",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&fakeAccounts{}, tt.cat, &fakeLoans{})
			w := do(r, tt.method, tt.path, tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestListBooksPassesFilterAndPage(t *testing.T) {
	var (
		gotAvailable bool
		gotPage      *utils.Page
	)
	cat := &fakeCatalog{listFn: func(ctx context.Context, availableOnly bool, page *utils.Page) ([]book.Book, error) {
		gotAvailable = availableOnly
		gotPage = page
		return []book.Book{{ID: "b1", Title: "t", Author: "a", Status: book.StatusAvailable}}, nil
	}}
	r := setupRouter(&fakeAccounts{}, cat, &fakeLoans{})

	w := do(r, http.MethodGet, "/livros/disponiveis?limite=10&pagina=2", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200, body=%s", w.Code, w.Body.String())
	}
	if !gotAvailable {
		t.Fatalf("expected available-only filter")
	}
	if gotPage == nil || gotPage.Limit != 10 || gotPage.Number != 2 {
		t.Fatalf("unexpected page: %+v", gotPage)
	}

	w = do(r, http.MethodGet, "/livros", "", nil)
	if gotAvailable || gotPage != nil {
		t.Fatalf("expected whole catalog, got available=%v page=%+v", gotAvailable, gotPage)
	}

	etag := w.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header")
	}

	w = do(r, http.MethodGet, "/livros", "", map[string]string{"If-None-Match": etag})
	if w.Code != http.StatusNotModified {
		t.Fatalf("got status %d, want 304", w.Code)
	}
}

func TestListBooksETagFollowsStatus(t *testing.T) {
	updated := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	current := []book.Book{{ID: "b1", Title: "t", Author: "a", Status: book.StatusAvailable, UpdatedAt: updated}}

	cat := &fakeCatalog{listFn: func(ctx context.Context, availableOnly bool, page *utils.Page) ([]book.Book, error) {
		return current, nil
	}}
	r := setupRouter(&fakeAccounts{}, cat, &fakeLoans{})

	w := do(r, http.MethodGet, "/livros", "", nil)
	before := w.Header().Get("ETag")
	if before == "" {
		t.Fatalf("expected ETag header")
	}

	w = do(r, http.MethodGet, "/livros", "", map[string]string{"If-None-Match": `W/` + before + `, "other"`})
	if w.Code != http.StatusNotModified {
		t.Fatalf("weak tag in a list: got status %d, want 304", w.Code)
	}

	current = []book.Book{{ID: "b1", Title: "t", Author: "a", Status: book.StatusUnavailable, UpdatedAt: updated.Add(time.Second)}}

	w = do(r, http.MethodGet, "/livros", "", map[string]string{"If-None-Match": before})
	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want 200 after the book was lent", w.Code)
	}
	if after := w.Header().Get("ETag"); after == before {
		t.Fatalf("ETag did not change with the book status: %s", after)
	}
}

func TestLoansHandlers(t *testing.T) {
	userID, bookID := uuid.NewString(), uuid.NewString()
	createBody := `{"idUsuario":"` + userID + `","idLivro":"` + bookID + `"}`

	tests := []struct {
		name       string
		ln         *fakeLoans
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{
			name:       "create",
			ln:         &fakeLoans{},
			method:     http.MethodPost,
			path:       "/emprestimos",
			body:       createBody,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "create with malformed ids",
			ln:         &fakeLoans{},
			method:     http.MethodPost,
			path:       "/emprestimos",
			body:       `{"idUsuario":"1","idLivro":"2"}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "create over limit",
			ln: &fakeLoans{createFn: func(ctx context.Context, req loan.CreateRequest) (loan.Loan, error) {
				return loan.Loan{}, loan.ErrLimitExceeded
			}},
			method:     http.MethodPost,
			path:       "/emprestimos",
			body:       createBody,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "create unavailable book",
			ln: &fakeLoans{createFn: func(ctx context.Context, req loan.CreateRequest) (loan.Loan, error) {
				return loan.Loan{}, loan.ErrBookUnavailable
			}},
			method:     http.MethodPost,
			path:       "/emprestimos",
			body:       createBody,
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "create unknown book",
			ln: &fakeLoans{createFn: func(ctx context.Context, req loan.CreateRequest) (loan.Loan, error) {
				return loan.Loan{}, book.ErrNotFound
			}},
			method:     http.MethodPost,
			path:       "/emprestimos",
			body:       createBody,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "list bad limit",
			ln:         &fakeLoans{},
			method:     http.MethodGet,
			path:       "/emprestimos?limite=7",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "delete unknown loan",
			ln: &fakeLoans{deleteFn: func(ctx context.Context, loanID string) error {
				return loan.ErrNotFound
			}},
			method:     http.MethodDelete,
			path:       "/emprestimos/" + uuid.NewString(),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "delete malformed id",
			ln:         &fakeLoans{},
			method:     http.MethodDelete,
			path:       "/emprestimos/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "delete own passes caller",
			ln: &fakeLoans{deleteOwnFn: func(ctx context.Context, uid, loanID string) error {
				if uid != caller.ID {
					return errors.New("wrong caller")
				}
				return nil
			}},
			method:     http.MethodDelete,
			path:       "/emprestimos/meus/" + uuid.NewString(),
			wantStatus: http.StatusOK,
		},
		{
			name: "list mine passes caller",
			ln: &fakeLoans{listForUserFn: func(ctx context.Context, uid string, page utils.Page) ([]loan.Loan, error) {
				if uid != caller.ID {
					return nil, errors.New("wrong caller")
				}
				return nil, nil
			}},
			method:     http.MethodGet,
			path:       "/emprestimos/meus",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(&fakeAccounts{}, &fakeCatalog{}, tt.ln)
			w := do(r, tt.method, tt.path, tt.body, nil)

			if w.Code != tt.wantStatus {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
		})
	}
}

func TestHealthHandler(t *testing.T) {
	down := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"db": func(ctx context.Context) error { return errors.New("dial tcp: refused") },
	})
	up := handlers.NewHealthHandler(map[string]handlers.Pinger{
		"db": func(ctx context.Context) error { return nil },
	})

	r := gin.New()
	r.GET("/healthz", down.Healthz)
	r.GET("/down/readyz", down.Readyz)
	r.GET("/up/readyz", up.Readyz)

	if w := do(r, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("healthz: got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/down/readyz", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz down: got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/up/readyz", "", nil); w.Code != http.StatusOK {
		t.Fatalf("readyz up: got %d", w.Code)
	}
}

func TestDocsRoutes(t *testing.T) {
	r := gin.New()
	r.GET("/docs", handlers.SwaggerUI)
	r.GET("/docs/openapi.yaml", handlers.OpenAPISpec)

	w := do(r, http.MethodGet, "/docs", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("/docs/openapi.yaml")) {
		t.Fatalf("unexpected docs page: %d", w.Code)
	}

	w = do(r, http.MethodGet, "/docs/openapi.yaml", "", nil)
	if w.Code != http.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("/emprestimos/meus/{id}")) {
		t.Fatalf("unexpected openapi document: %d", w.Code)
	}
}
