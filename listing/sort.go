package listing

// Capability is a set of network feature flags that narrow sort options and
// columns.
type Capability uint

const (
	// CapMining is set when the sync node reports mining as enabled
	CapMining Capability = 1 << iota
)

// Has reports whether every flag in f is set. The zero set is always present.
func (c Capability) Has(f Capability) bool {
	return c&f == f
}

// SortOption is one sortable field of a listing
type SortOption struct {
	SortKey    string
	DisplayKey string

	// Requires hides the option unless these capabilities are present
	Requires Capability
}

// Kind declares what a listing type can be sorted by and how it is sorted
// when nothing valid was requested.
type Kind struct {
	Name           string
	Sortable       []SortOption
	DefaultOrderBy string
	DefaultOrder   Order
}

// SortOptions returns the variant of the sortable set for the capabilities
func (k Kind) SortOptions(caps Capability) []SortOption {
	out := make([]SortOption, 0, len(k.Sortable))
	for _, o := range k.Sortable {
		if caps.Has(o.Requires) {
			out = append(out, o)
		}
	}
	return out
}

// CanSortBy reports whether key is in the sortable set for the capabilities
func (k Kind) CanSortBy(key string, caps Capability) bool {
	for _, o := range k.SortOptions(caps) {
		if o.SortKey == key {
			return true
		}
	}
	return false
}

// WithDefault returns a copy of the kind with another default order, e.g. the
// newest-first variant of a listing.
func (k Kind) WithDefault(orderBy string, order Order) Kind {
	k.DefaultOrderBy = orderBy
	k.DefaultOrder = order
	return k
}

// Normalize validates the sort key and direction. An undeclared key falls
// back to the default pair; the returned error describes what was replaced
// and is meant for logs only.
func (k Kind) Normalize(opts Options, caps Capability) (Options, error) {
	opts = opts.Clone()

	if opts.OrderBy == "" {
		opts.OrderBy = k.DefaultOrderBy
		if opts.Order == "" {
			opts.Order = k.DefaultOrder
		}
	}

	if !k.CanSortBy(opts.OrderBy, caps) {
		bad := opts.OrderBy
		opts.OrderBy = k.DefaultOrderBy
		opts.Order = k.DefaultOrder
		return opts, &ValidationError{Field: "orderBy", Value: bad, Reason: "not sortable for " + k.Name}
	}

	order, ok := ParseOrder(string(opts.Order))
	if !ok {
		bad := string(opts.Order)
		opts.Order = k.DefaultOrder
		return opts, &ValidationError{Field: "order", Value: bad, Reason: "must be ASC or DESC"}
	}
	opts.Order = order

	return opts, nil
}

// NextSort cycles to the sort key after the current one
func (k Kind) NextSort(current string, caps Capability) string {
	opts := k.SortOptions(caps)
	if len(opts) == 0 {
		return current
	}
	for i, o := range opts {
		if o.SortKey == current {
			return opts[(i+1)%len(opts)].SortKey
		}
	}
	return opts[0].SortKey
}

// DisplayName returns the label of a sort key, or the key itself
func (k Kind) DisplayName(key string) string {
	for _, o := range k.Sortable {
		if o.SortKey == key {
			return o.DisplayKey
		}
	}
	return key
}
