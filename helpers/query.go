package helpers

import (
	"net/url"
	"strings"
	"time"

	"github.com/joaovasc10/bora/types"
)

// BuildEventsQuery translates filter state into the backend's query
// parameters for GET /api/events/.
//
// The backend only supports a single category parameter, so exactly one
// selected category becomes a server-side filter; zero means no filter and
// two or more are left for the client-side merge step. Date filters resolve
// against today via ResolveDateRange. An empty filter state yields empty
// values, i.e. an unparameterized request.
func BuildEventsQuery(filters *types.FilterState, today time.Time) url.Values {
	query := url.Values{}
	if filters == nil {
		return query
	}

	if filters.CategoryCount() == 1 {
		query.Set("category", filters.SelectedCategories()[0])
	}

	if filters.IsFree {
		query.Set("is_free", "true")
	}

	if q := strings.TrimSpace(filters.SearchQuery); q != "" {
		query.Set("q", q)
	}

	if start, end, ok := ResolveDateRange(filters.DateFilter, today); ok {
		query.Set("start_date", start)
		query.Set("end_date", end)
	}

	return query
}
