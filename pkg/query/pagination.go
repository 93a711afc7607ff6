package query

// WindowWidth is the maximum number of page links shown at once
const WindowWidth = 5

// Window describes the pagination widget for a page view
type Window struct {
	Current     int
	Total       int
	Pages       []int // contiguous page numbers around Current
	ShowFirst   bool  // jump-to-first link, window doesn't reach page 1
	LeadingGap  bool  // elision between first link and window
	ShowLast    bool  // jump-to-last link, window doesn't reach the last page
	TrailingGap bool  // elision between window and last link
	HasPrev     bool
	HasNext     bool
	Prev        int
	Next        int
}

// NewWindow computes up to WindowWidth pages centered on current, clamped to [1, total].
// Near the end the window shifts left to keep its width.
func NewWindow(current, total int) Window {
	total = max(total, 1)
	current = min(max(current, 1), total)

	start := max(1, current-WindowWidth/2)
	end := min(total, start+WindowWidth-1)
	start = max(1, end-WindowWidth+1)

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}

	return Window{
		Current:     current,
		Total:       total,
		Pages:       pages,
		ShowFirst:   start > 1,
		LeadingGap:  start > 2,
		ShowLast:    end < total,
		TrailingGap: end < total-1,
		HasPrev:     current > 1,
		HasNext:     current < total,
		Prev:        max(current-1, 1),
		Next:        min(current+1, total),
	}
}
