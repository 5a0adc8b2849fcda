package reports

import (
	"errors"
	"fmt"
	"math"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
	// MaxOffset bounds (page-1)*per_page so the row offset always fits.
	MaxOffset = math.MaxInt32
)

// Page is a 1-based page request.
type Page struct {
	Number  int
	PerPage int
}

func DefaultPage() Page {
	return Page{Number: 1, PerPage: DefaultPerPage}
}

// PageError names the pagination parameter that is out of range.
type PageError struct {
	Param  string
	Detail string
}

func (e *PageError) Error() string {
	return fmt.Sprintf("%s %s", e.Param, e.Detail)
}

// Validate returns every out of range parameter joined, each as a
// *PageError.
func (p Page) Validate() error {
	var errs []error
	if p.Number < 1 {
		errs = append(errs, &PageError{Param: "page", Detail: "must be >= 1"})
	}
	if p.PerPage < 1 || p.PerPage > MaxPerPage {
		errs = append(errs, &PageError{Param: "per_page", Detail: fmt.Sprintf("must be between 1 and %d", MaxPerPage)})
	} else if p.Number > 1 && int64(p.Number-1) > MaxOffset/int64(p.PerPage) {
		errs = append(errs, &PageError{Param: "page", Detail: fmt.Sprintf("must be <= %d for per_page %d", MaxOffset/p.PerPage+1, p.PerPage)})
	}
	return errors.Join(errs...)
}

// PageErrors unpacks the errors returned by Validate.
func PageErrors(err error) []*PageError {
	var out []*PageError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, PageErrors(e)...)
		}
		return out
	}
	var pe *PageError
	if errors.As(err, &pe) {
		out = append(out, pe)
	}
	return out
}

func (p Page) Limit() int {
	return p.PerPage
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int64 `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

// NewPagination derives total_pages from the item count. totalItems must be
// the number of result rows after any grouping.
func NewPagination(p Page, totalItems int64) Pagination {
	return Pagination{
		Page:       p.Number,
		PerPage:    p.PerPage,
		TotalPages: TotalPages(totalItems, p.PerPage),
		TotalItems: totalItems,
	}
}

func TotalPages(totalItems int64, perPage int) int64 {
	if perPage <= 0 || totalItems <= 0 {
		return 0
	}
	return (totalItems + int64(perPage) - 1) / int64(perPage)
}

// List is the envelope every listing endpoint answers with.
type List[T any] struct {
	Items      []T            `json:"items"`
	Pagination Pagination     `json:"pagination"`
	Filters    map[string]any `json:"filters"`
}

func NewList[T any](items []T, p Page, totalItems int64, filters map[string]any) List[T] {
	if items == nil {
		items = []T{}
	}
	if filters == nil {
		filters = map[string]any{}
	}
	return List[T]{
		Items:      items,
		Pagination: NewPagination(p, totalItems),
		Filters:    filters,
	}
}
