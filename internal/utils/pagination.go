package utils

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize   = 5
	DefaultPageNumber = 1
)

var allowedPageSizes = []int{5, 10, 30}

var (
	ErrInvalidLimit = errors.New("limit must be 5, 10 or 30")
	ErrInvalidPage  = errors.New("page must be greater than 0")
)

// Page is a validated limite/pagina pair.
type Page struct {
	Limit  int
	Number int
}

func (p Page) Offset() int {
	return p.Limit * (p.Number - 1)
}

// ParsePage validates the raw query values. Empty values fall back to the
// defaults (5 per page, first page).
func ParsePage(limitRaw, pageRaw string) (Page, error) {
	p := Page{Limit: DefaultPageSize, Number: DefaultPageNumber}

	if s := strings.TrimSpace(limitRaw); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || !isAllowedPageSize(n) {
			return Page{}, ErrInvalidLimit
		}
		p.Limit = n
	}

	if s := strings.TrimSpace(pageRaw); s != "" {
		n, err := strconv.Atoi(s)
		// the offset Limit*(n-1) must fit in an int
		if err != nil || n < 1 || n-1 > math.MaxInt/p.Limit {
			return Page{}, ErrInvalidPage
		}
		p.Number = n
	}

	return p, nil
}

func isAllowedPageSize(n int) bool {
	for _, allowed := range allowedPageSizes {
		if n == allowed {
			return true
		}
	}
	return false
}
