package pagination

// WindowSize is how many page numbers the pager shows at once.
const WindowSize = 5

// Window describes the pager rendered under a product grid: a bounded run of
// page numbers around the current page plus boundary affordances.
type Window struct {
	Pages            []int `json:"pages"`
	CurrentPage      int   `json:"current_page"`
	TotalPages       int   `json:"total_pages"`
	HasPrevious      bool  `json:"has_previous"`
	HasNext          bool  `json:"has_next"`
	LeadingEllipsis  bool  `json:"leading_ellipsis"`
	TrailingEllipsis bool  `json:"trailing_ellipsis"`
}

// TotalPages returns ceil(totalItems / pageSize); 0 when there are no items.
func TotalPages(totalItems, pageSize int) int {
	if totalItems <= 0 || pageSize <= 0 {
		return 0
	}
	return (totalItems + pageSize - 1) / pageSize
}

// Clamp bounds a requested page to [1, max(totalPages, 1)].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	upper := totalPages
	if upper < 1 {
		upper = 1
	}
	if page > upper {
		return upper
	}
	return page
}

// NewWindow computes the page-number window centered on currentPage where
// possible and clamped to [1, totalPages]. Pages is empty when a pager is not
// worth rendering (one page or fewer).
func NewWindow(currentPage, totalPages int) Window {
	currentPage = Clamp(currentPage, totalPages)
	w := Window{
		CurrentPage: currentPage,
		TotalPages:  totalPages,
	}
	if totalPages <= 1 {
		return w
	}

	start := currentPage - WindowSize/2
	if start+WindowSize-1 > totalPages {
		start = totalPages - WindowSize + 1
	}
	if start < 1 {
		start = 1
	}
	end := start + WindowSize - 1
	if end > totalPages {
		end = totalPages
	}

	for page := start; page <= end; page++ {
		w.Pages = append(w.Pages, page)
	}
	w.HasPrevious = currentPage > 1
	w.HasNext = currentPage < totalPages
	w.LeadingEllipsis = start > 1
	w.TrailingEllipsis = end < totalPages
	return w
}
