package shared

// Filter carries list-query options through the repository ports. Filters
// holds context-specific predicates keyed by column-ish names; repositories
// whitelist the keys they understand.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
	Filters  map[string]interface{}
}

// Offset returns the row offset implied by the page settings
func (f Filter) Offset() int {
	if f.Page < 1 || f.PageSize < 1 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// WithFilter sets a predicate, allocating the map on first use
func (f *Filter) WithFilter(key string, value interface{}) {
	if f.Filters == nil {
		f.Filters = make(map[string]interface{})
	}
	f.Filters[key] = value
}
