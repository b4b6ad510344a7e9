package models

import (
	"fmt"
	"strings"
)

// SortField names a favorite attribute that favorites can be ordered by.
type SortField string

const (
	SortByFavoritedAt SortField = "favoritedAt"
	SortByCreatedAt   SortField = "createdAt"
	SortByName        SortField = "name"
)

type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

func ParseSortField(s string) (SortField, error) {
	for _, f := range []SortField{SortByFavoritedAt, SortByCreatedAt, SortByName} {
		if strings.EqualFold(s, string(f)) {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown sort field %q", s)
}

func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToLower(s) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q", s)
}
