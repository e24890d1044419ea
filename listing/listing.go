// Package listing filters, sorts and pages the admin tables (couriers,
// restaurants, menus) with one generic implementation.
package listing

import (
	"cmp"
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Schema describes how records of one table are searched and sorted.
type Schema[T any] struct {
	// Text returns the fields a search term is matched against.
	Text func(T) []string
	// Sort maps a column name to its comparison.
	Sort map[string]func(a, b T) int
	// DefaultSort is used when a query names no column.
	DefaultSort string
}

type Query struct {
	Search   string
	SortBy   string
	Desc     bool
	Page     int // 1-based; 0 means 1
	PageSize int // 0 means everything on one page
}

type Page[T any] struct {
	Items []T
	Total int // matches before paging
	Page  int
	Pages int
}

// Columns lists the sortable column names in order.
func (s Schema[T]) Columns() []string {
	cols := make([]string, 0, len(s.Sort))
	for name := range s.Sort {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// Apply returns the page of items matching q. The input is not modified.
// Search is a case-insensitive substring match over the schema's text fields.
func Apply[T any](items []T, s Schema[T], q Query) (Page[T], error) {
	column := q.SortBy
	if column == "" {
		column = s.DefaultSort
	}
	var compare func(a, b T) int
	if column != "" {
		var ok bool
		if compare, ok = s.Sort[column]; !ok {
			return Page[T]{}, fmt.Errorf("unknown sort column %q (have %s)", column, strings.Join(s.Columns(), ", "))
		}
	}

	term := strings.ToLower(strings.TrimSpace(q.Search))
	matched := make([]T, 0, len(items))
	for _, it := range items {
		if term == "" || matches(s.Text(it), term) {
			matched = append(matched, it)
		}
	}

	if compare != nil {
		slices.SortStableFunc(matched, func(a, b T) int {
			if q.Desc {
				return compare(b, a)
			}
			return compare(a, b)
		})
	}

	page := Page[T]{Total: len(matched), Page: max(q.Page, 1), Pages: 1}
	if q.PageSize <= 0 {
		page.Items = matched
		return page, nil
	}
	page.Pages = max((len(matched)+q.PageSize-1)/q.PageSize, 1)
	start := min((page.Page-1)*q.PageSize, len(matched))
	end := min(start+q.PageSize, len(matched))
	page.Items = matched[start:end]
	return page, nil
}

func matches(fields []string, term string) bool {
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Fold compares strings case-insensitively.
func Fold(a, b string) int {
	return cmp.Compare(strings.ToLower(a), strings.ToLower(b))
}
