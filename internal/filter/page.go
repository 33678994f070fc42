package filter

// PageInfo describes one page of a list
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 200
)

// Paginate returns the requested page of items. Page numbers start at 1;
// out-of-range values are clamped. A page past the end is empty.
func Paginate[T any](items []T, page, perPage int) ([]T, PageInfo) {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	if page < 1 {
		page = 1
	}

	total := len(items)
	info := PageInfo{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: (total + perPage - 1) / perPage,
	}

	if page-1 >= info.TotalPages {
		return make([]T, 0), info
	}
	start := (page - 1) * perPage
	end := min(start+perPage, total)
	return items[start:end], info
}
