package shared

// Filter carries the pagination and ordering options list queries accept.
// Repositories whitelist the fields OrderBy may name.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// DefaultFilter pages newest-first, twenty rows at a time
func DefaultFilter() Filter {
	return Filter{
		Page:     1,
		PageSize: 20,
		OrderBy:  "created_at",
		OrderDir: "desc",
	}
}
