// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultLimit is the page size when ?limit is absent.
const DefaultLimit = 10

// MaxLimit caps ?limit.
const MaxLimit = 100

// Page is a 1-based offset window.
type Page struct {
	Page  int
	Limit int
}

// Parse reads ?page and ?limit. Missing or invalid values fall back to page
// 1 and DefaultLimit; limit is capped at MaxLimit.
func Parse(r *http.Request) Page {
	return Page{
		Page:  positive(query.Get(r, "page"), 1),
		Limit: min(positive(query.Get(r, "limit"), DefaultLimit), MaxLimit),
	}
}

func positive(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Skip is the number of documents before this page.
func (p Page) Skip() int64 { return int64((p.Page - 1) * p.Limit) }

// FindOptions returns skip/limit options sorted by sortField descending.
func (p Page) FindOptions(sortField string) *options.FindOptions {
	return options.Find().
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit)).
		SetSort(map[string]int{sortField: -1})
}

// TotalPages is ceil(total/limit).
func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}
