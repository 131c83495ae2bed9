package utils

// PageWindow returns the page numbers to render around the current page,
// clamped to [1, totalPages].
func PageWindow(current, totalPages, radius int) []int {
	if totalPages <= 0 {
		return nil
	}
	start := max(current-radius, 1)
	end := min(current+radius, totalPages)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}
