package handlers

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/geocoder89/libraryhub/internal/domain/book"
)

// respondBooks writes a book list tagged with a fingerprint of its rows and
// answers 304 when the client already holds that list.
func respondBooks(ctx *gin.Context, books []book.Book) {
	tag := booksETag(books)
	ctx.Header("ETag", tag)

	if etagListed(ctx.GetHeader("If-None-Match"), tag) {
		ctx.Status(http.StatusNotModified)
		return
	}

	ctx.JSON(http.StatusOK, books)
}

// every write to a book bumps UpdatedAt, so id, status and UpdatedAt in list
// order identify the page.
func booksETag(books []book.Book) string {
	h := sha256.New()
	for _, b := range books {
		fmt.Fprintf(h, "%s|%d|%d;", b.ID, b.Status, b.UpdatedAt.UnixNano())
	}
	return `"` + hex.EncodeToString(h.Sum(nil)[:16]) + `"`
}

func etagListed(header, tag string) bool {
	header = strings.TrimSpace(header)
	if header == "" {
		return false
	}
	if header == "*" {
		return true
	}

	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == tag {
			return true
		}
	}
	return false
}
