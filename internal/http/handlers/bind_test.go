package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/user"
	"github.com/geocoder89/libraryhub/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

type bindErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details struct {
		JSON   string                `json:"json"`
		Field  string                `json:"field"`
		Fields []handlers.FieldError `json:"fields"`
	} `json:"details"`
}

func TestBindJSON_ValidationErrorsUseJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/usuarios", func(ctx *gin.Context) {
		var req user.CredentialsRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	body := `{"email":"not-an-email","senha":"abc","senha2":"abd"}`
	req := httptest.NewRequest(http.MethodPost, "/usuarios", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Code != "invalid_request" {
		t.Fatalf("unexpected code: %s", resp.Code)
	}
	if resp.Message == "" {
		t.Fatalf("expected a message naming the first failing field")
	}

	wantRules := map[string]string{
		"nome":   "required",
		"email":  "email",
		"senha":  "min",
		"senha2": "eqfield",
	}

	found := map[string]handlers.FieldError{}
	for _, fieldErr := range resp.Details.Fields {
		found[fieldErr.Field] = fieldErr
	}

	for field, rule := range wantRules {
		fieldErr, ok := found[field]
		if !ok {
			t.Fatalf("missing field error for %q: %+v", field, resp.Details.Fields)
		}
		if fieldErr.Rule != rule {
			t.Fatalf("field %q rule mismatch: got %q want %q", field, fieldErr.Rule, rule)
		}
		if fieldErr.Message == "" {
			t.Fatalf("field %q should include a non-empty message", field)
		}
	}
}

func TestBindJSON_TypeMismatchUsesJSONFieldNames(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/livros", func(ctx *gin.Context) {
		var req book.CreateRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	body := `{"titulo":"Dom Casmurro","autor":"Machado de Assis","status":"yes"}`
	req := httptest.NewRequest(http.MethodPost, "/livros", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}

	var resp bindErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal error response: %v body=%s", err, w.Body.String())
	}

	if resp.Details.JSON != "invalid_json_type" {
		t.Fatalf("expected invalid_json_type, got %q", resp.Details.JSON)
	}
	if resp.Details.Field != "status" {
		t.Fatalf("expected detail field to be status, got %q", resp.Details.Field)
	}
	if len(resp.Details.Fields) == 0 || resp.Details.Fields[0].Rule != "type" {
		t.Fatalf("expected a type rule in details.fields, got %+v", resp.Details.Fields)
	}
}

func TestBindJSON_StatusOutOfRange(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/livros", func(ctx *gin.Context) {
		var req book.CreateRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/livros", bytes.NewBufferString(`{"titulo":"t","autor":"a","status":2}`))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestBindJSON_PasswordLimits(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.POST("/usuarios", func(ctx *gin.Context) {
		var req user.CredentialsRequest
		if !handlers.BindJSON(ctx, &req) {
			return
		}
		ctx.Status(http.StatusCreated)
	})

	tests := []struct {
		name      string
		password  string
		confirm   string
		wantCode  int
		wantField string
		wantRule  string
		wantParam string
	}{
		{name: "at_limit", password: strings.Repeat("a", 72), confirm: strings.Repeat("a", 72), wantCode: http.StatusCreated},
		{name: "over_limit", password: strings.Repeat("a", 73), confirm: strings.Repeat("a", 73), wantCode: http.StatusBadRequest, wantField: "senha", wantRule: "max", wantParam: "72"},
		{name: "mismatch_names_json_field", password: "abcd", confirm: "abce", wantCode: http.StatusBadRequest, wantField: "senha2", wantRule: "eqfield", wantParam: "senha"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{
				"nome": "Ana", "email": "ana@example.com", "senha": tt.password, "senha2": tt.confirm,
			})
			req := httptest.NewRequest(http.MethodPost, "/usuarios", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantCode, w.Body.String())
			}
			if tt.wantCode != http.StatusBadRequest {
				return
			}

			var resp bindErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal error response: %v", err)
			}
			if len(resp.Details.Fields) != 1 {
				t.Fatalf("expected one field error, got %+v", resp.Details.Fields)
			}
			got := resp.Details.Fields[0]
			if got.Field != tt.wantField || got.Rule != tt.wantRule || got.Param != tt.wantParam {
				t.Fatalf("got %+v, want field=%s rule=%s param=%s", got, tt.wantField, tt.wantRule, tt.wantParam)
			}
		})
	}
}
