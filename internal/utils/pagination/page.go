package pagination

import "fmt"

// Window is the offset/limit view of one 1-based page.
type Window struct {
	Page     int
	PageSize int
	Offset   int
}

// NewWindow normalizes a requested page number into a query window.
// Page defaults to 1 and is defensively absolute-valued, so negative or
// zero input still lands on the first page.
func NewWindow(page, pageSize int) Window {
	if page < 0 {
		page = -page
	}
	if page == 0 {
		page = 1
	}
	return Window{
		Page:     page,
		PageSize: pageSize,
		Offset:   (page - 1) * pageSize,
	}
}

// Bounds returns the 1-based display range of the window within total,
// e.g. page 2 of 12 rows at size 5 → (6, 10).
func (w Window) Bounds(total int64) (start, end int64) {
	if total == 0 {
		return 0, 0
	}
	start = int64(w.Offset) + 1
	if start > total {
		// over-range page degrades to the last row instead of an
		// inverted range
		start = total
	}
	end = int64(w.Offset + w.PageSize)
	if end > total {
		end = total
	}
	return start, end
}

// Summary renders the human "X to Y of Z" line.
func (w Window) Summary(total int64) string {
	start, end := w.Bounds(total)
	return fmt.Sprintf("%d to %d of %d", start, end, total)
}

// PageCount returns how many pages total rows occupy.
func PageCount(total int64, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// PageNumbers lists every page link to render. Empty unless the rows
// overflow a single page.
func PageNumbers(total int64, pageSize int) []int {
	count := PageCount(total, pageSize)
	if count <= 1 {
		return nil
	}
	pages := make([]int, count)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
