package types

import "sort"

// FilterState is the single source of truth for active map filters. It is a
// plain mutable record: after changing a field the caller is responsible
// for re-running the fetch pipeline.
type FilterState struct {
	categories  map[string]bool
	DateFilter  string // "", "today", "weekend", "week", or a literal ISO date
	IsFree      bool
	SearchQuery string
}

func NewFilterState() *FilterState {
	return &FilterState{categories: map[string]bool{}}
}

// ToggleCategory adds or removes a category slug and reports whether it is
// selected afterwards.
func (f *FilterState) ToggleCategory(slug string) bool {
	if f.categories[slug] {
		delete(f.categories, slug)
		return false
	}
	f.categories[slug] = true
	return true
}

func (f *FilterState) HasCategory(slug string) bool {
	return f.categories[slug]
}

func (f *FilterState) CategoryCount() int {
	return len(f.categories)
}

// SelectedCategories returns the active category slugs in sorted order.
func (f *FilterState) SelectedCategories() []string {
	slugs := make([]string, 0, len(f.categories))
	for slug := range f.categories {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)
	return slugs
}

func (f *FilterState) ClearCategories() {
	f.categories = map[string]bool{}
}

// Reset returns every dimension to its unfiltered state.
func (f *FilterState) Reset() {
	f.categories = map[string]bool{}
	f.DateFilter = ""
	f.IsFree = false
	f.SearchQuery = ""
}
