// Package mirror keeps a JSON copy of the book catalog on disk, in the
// layout older tooling reads: a 4-space indented array of books.
package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/geocoder89/libraryhub/internal/domain/book"
	"github.com/geocoder89/libraryhub/internal/domain/job"
	"github.com/geocoder89/libraryhub/internal/jobs"
)

// WriteCatalog replaces the file at path with books. The write goes to a
// temp file in the same directory and is renamed into place.
func WriteCatalog(path string, books []book.Book) error {
	if books == nil {
		books = []book.Book{}
	}

	b, err := json.MarshalIndent(books, "", "    ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".catalog-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}

// ReadCatalog returns an empty catalog when the file is missing or does
// not hold a JSON array of books.
func ReadCatalog(path string) ([]book.Book, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return []book.Book{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror: %w", err)
	}

	var books []book.Book
	if err := json.Unmarshal(b, &books); err != nil || books == nil {
		return []book.Book{}, nil
	}
	return books, nil
}

type BookSource interface {
	AllBooks(ctx context.Context) ([]book.Book, error)
}

// SnapshotHandler returns the worker handler for catalog.snapshot jobs.
func SnapshotHandler(src BookSource, path string, log *slog.Logger) func(ctx context.Context, j job.Job) error {
	return func(ctx context.Context, j job.Job) error {
		decoded, err := jobs.DecodePayload(j)
		if err != nil {
			return err
		}
		p, _ := decoded.(jobs.CatalogSnapshotPayload)

		books, err := src.AllBooks(ctx)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}

		if err := WriteCatalog(path, books); err != nil {
			return err
		}

		log.InfoContext(ctx, "catalog mirror written", "path", path, "books", len(books), "reason", p.Reason)
		return nil
	}
}
