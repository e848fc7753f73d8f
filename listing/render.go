package listing

// RenderMode is the presentation used for a listing
type RenderMode int

const (
	// ModeTable is the dense, multi-column presentation
	ModeTable RenderMode = iota
	// ModeList is the condensed presentation for narrow terminals
	ModeList
)

func (m RenderMode) String() string {
	if m == ModeList {
		return "list"
	}
	return "table"
}

// SelectMode picks the presentation from a single breakpoint. An unknown
// width (zero) renders as a table.
func SelectMode(width, breakpoint int) RenderMode {
	if width > 0 && width < breakpoint {
		return ModeList
	}
	return ModeTable
}

// View is everything a presentation needs. Table and list render from the
// same value, so switching between them cannot change data or requests.
type View[T any] struct {
	Mode   RenderMode
	State  FetchState[T]
	Result Result[T]
	// ResultOptions are the options Result was fetched with. They lag
	// Options while a newer request is loading.
	ResultOptions Options
	HasResult     bool
	Options       Options
	Page          Descriptor
	SortOptions   []SortOption
	Locked        bool
}

// Shown describes the page Result actually holds
func (v View[T]) Shown() Descriptor {
	return Paginate(v.Result.Total, v.ResultOptions.PageSize, v.ResultOptions.Page())
}

// Column is one column of the dense presentation
type Column struct {
	Key   string
	Title string
	Width int

	// Requires hides the column unless these capabilities are present
	Requires Capability
}

// ColumnSet is a declarative column list with capability-gated variants
type ColumnSet []Column

// For returns the variant for the capabilities
func (cs ColumnSet) For(caps Capability) ColumnSet {
	out := make(ColumnSet, 0, len(cs))
	for _, c := range cs {
		if caps.Has(c.Requires) {
			out = append(out, c)
		}
	}
	return out
}

// Fit scales column widths so the set fits in width, keeping each column at
// least minWidth wide.
func (cs ColumnSet) Fit(width, minWidth int) ColumnSet {
	out := make(ColumnSet, len(cs))
	copy(out, cs)

	total := 0
	for _, c := range out {
		total += c.Width
	}
	if total == 0 || width <= 0 || total <= width {
		return out
	}

	for i := range out {
		w := out[i].Width * width / total
		if w < minWidth {
			w = minWidth
		}
		out[i].Width = w
	}
	return out
}
