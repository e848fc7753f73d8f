package listing

import (
	"slices"
	"strconv"
)

// PageSizes are the page-size choices offered to the user
var PageSizes = []int{10, 15, 20, 50, 100}

// DefaultPageSize is used when a stored or configured size is not a choice
const DefaultPageSize = 15

// ValidPageSize reports whether size is one of PageSizes
func ValidPageSize(size int) bool {
	return slices.Contains(PageSizes, size)
}

// NextPageSize steps through PageSizes, clamping at both ends
func NextPageSize(size int, step int) int {
	i := slices.Index(PageSizes, size)
	if i < 0 {
		return DefaultPageSize
	}
	i += step
	if i < 0 {
		i = 0
	}
	if i >= len(PageSizes) {
		i = len(PageSizes) - 1
	}
	return PageSizes[i]
}

// Query is what a page translates to on the wire
type Query struct {
	Limit  int
	Offset int
}

// Descriptor is the UI-facing pagination state
type Descriptor struct {
	Current  int
	PageSize int
	Total    int
}

// LastPage is the last valid page; an empty listing still has page 1
func (d Descriptor) LastPage() int {
	return LastPage(d.Total, d.PageSize)
}

// Query returns the limit/offset pair for the current page
func (d Descriptor) Query() Query {
	return PageQuery(d.Current, d.PageSize)
}

// Range returns the 1-based item range shown on the current page, e.g. 11-20.
// A page past the end has no range.
func (d Descriptor) Range() (from, to int) {
	from = (d.Current-1)*d.PageSize + 1
	if d.Total == 0 || from > d.Total {
		return 0, 0
	}
	to = from + d.PageSize - 1
	if to > d.Total {
		to = d.Total
	}
	return from, to
}

// String renders "page X of Y"
func (d Descriptor) String() string {
	return "page " + strconv.Itoa(d.Current) + " of " + strconv.Itoa(d.LastPage())
}

// Paginate builds the descriptor for a total, page size and current page
func Paginate(total, pageSize, current int) Descriptor {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if current < 1 {
		current = 1
	}
	return Descriptor{Current: current, PageSize: pageSize, Total: total}
}

// PageQuery converts a 1-based page into limit/offset
func PageQuery(page, pageSize int) Query {
	if page < 1 {
		page = 1
	}
	return Query{Limit: pageSize, Offset: (page - 1) * pageSize}
}

// LastPage returns ceil(total/pageSize), at least 1
func LastPage(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 1
	}
	return (total + pageSize - 1) / pageSize
}

// Clamp moves current onto the last valid page when total no longer reaches
// it. The boolean reports whether the page changed and a re-fetch is needed.
func Clamp(total, pageSize, current int) (int, bool) {
	last := LastPage(total, pageSize)
	if current > last {
		return last, true
	}
	if current < 1 {
		return 1, true
	}
	return current, false
}

// NormalizePage fixes the paging half of the options: unknown page sizes are
// replaced and offsets are snapped onto a page boundary.
func NormalizePage(opts Options, defaultSize int) (Options, error) {
	var err error
	if !ValidPageSize(opts.PageSize) {
		if opts.PageSize != 0 {
			err = &ValidationError{Field: "pageSize", Value: strconv.Itoa(opts.PageSize), Reason: "not a page-size choice"}
		}
		if !ValidPageSize(defaultSize) {
			defaultSize = DefaultPageSize
		}
		opts.PageSize = defaultSize
	}

	if opts.Offset < 0 {
		opts.Offset = 0
	}
	opts.Offset -= opts.Offset % opts.PageSize

	return opts, err
}
