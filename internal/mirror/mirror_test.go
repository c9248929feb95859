package mirror

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/job"
	"github.com/geocoder89/libraryhub/internal/jobs"
)

func TestWriteThenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arquivos", "livros.json")

	books := []book.Book{
		book.NewFromCreateRequest(book.CreateRequest{Title: "Iracema", Author: "Alencar"}),
		book.NewFromCreateRequest(book.CreateRequest{Title: "Memórias", Author: "Assis"}),
	}

	if err := WriteCatalog(path, books); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read raw: %v", err)
	}
	if !strings.Contains(string(raw), "\n    {") {
		t.Fatalf("expected 4-space indentation, got:\n%s", raw)
	}

	got, err := ReadCatalog(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].Title != "Iracema" || got[1].Status != book.StatusAvailable {
		t.Fatalf("unexpected catalog: %+v", got)
	}
}

func TestReadCatalog_Fallbacks(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content *string
	}{
		{name: "missing file"},
		{name: "malformed json", content: ptr("{not json")},
		{name: "object instead of array", content: ptr(`{"titulo":"x"}`)},
		{name: "null", content: ptr("null")},
	}

	for i, tt := range tests {
		tt := tt
		path := filepath.Join(dir, "case"+string(rune('a'+i))+".json")
		t.Run(tt.name, func(t *testing.T) {
			if tt.content != nil {
				if err := os.WriteFile(path, []byte(*tt.content), 0o644); err != nil {
					t.Fatalf("seed: %v", err)
				}
			}

			got, err := ReadCatalog(path)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got == nil || len(got) != 0 {
				t.Fatalf("expected empty catalog, got %+v", got)
			}
		})
	}
}

func TestWriteCatalog_EmptyIsArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "livros.json")

	if err := WriteCatalog(path, nil); err != nil {
		t.Fatalf("write: %v", err)
	}

	raw, _ := os.ReadFile(path)
	if string(raw) != "[]" {
		t.Fatalf("expected [], got %q", raw)
	}
}

type fakeSource struct {
	books []book.Book
	err   error
}

func (f fakeSource) AllBooks(context.Context) ([]book.Book, error) { return f.books, f.err }

func TestSnapshotHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	req, err := jobs.NewCatalogSnapshotRequest("book.created", "")
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	j := job.New(req)

	t.Run("writes mirror", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "livros.json")
		src := fakeSource{books: []book.Book{book.NewFromCreateRequest(book.CreateRequest{Title: "t", Author: "a"})}}

		if err := SnapshotHandler(src, path, log)(context.Background(), j); err != nil {
			t.Fatalf("handler: %v", err)
		}

		got, _ := ReadCatalog(path)
		if len(got) != 1 {
			t.Fatalf("expected 1 book in mirror, got %d", len(got))
		}
	})

	t.Run("source error propagates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "livros.json")
		boom := errors.New("db down")

		err := SnapshotHandler(fakeSource{err: boom}, path, log)(context.Background(), j)
		if !errors.Is(err, boom) {
			t.Fatalf("expected source error, got %v", err)
		}
	})
}

func ptr(s string) *string { return &s }
