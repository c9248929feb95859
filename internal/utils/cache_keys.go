package utils

import (
	"strconv"

	"github.com/geocoder89/libraryhub/internal/domain/book"
)

func BuildBooksListCacheKey(filter book.ListFilter) string {
	status := "all"
	if filter.Status != nil {
		status = strconv.Itoa(int(*filter.Status))
	}

	return "books:list:v1:status=" + status +
		":limit=" + strconv.Itoa(filter.Limit) +
		":offset=" + strconv.Itoa(filter.Offset)
}
