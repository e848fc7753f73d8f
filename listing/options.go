package listing

import (
	"maps"
	"net/url"
	"slices"
	"sort"
	"strings"

	"github.com/google/go-querystring/query"
	"github.com/pkg/errors"
)

// Order is a sort direction understood by the Krist API
type Order string

const (
	OrderAsc  Order = "ASC"
	OrderDesc Order = "DESC"
)

// ParseOrder accepts either case and reports whether the value was valid
func ParseOrder(s string) (Order, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "ASCEND", "ASCENDING":
		return OrderAsc, true
	case "DESC", "DESCEND", "DESCENDING":
		return OrderDesc, true
	}
	return "", false
}

// Toggle returns the opposite direction
func (o Order) Toggle() Order {
	if o == OrderAsc {
		return OrderDesc
	}
	return OrderAsc
}

// Options are the parameters of one listing view. The page-level owner holds
// them; renderers only read them and ask for changes.
type Options struct {
	OrderBy  string
	Order    Order
	Offset   int
	PageSize int

	// Filters are extra query parameters such as includeMined. They are part
	// of what is fetched but are not stored in history.
	Filters map[string]string
}

// Equal deep-compares two option sets
func (o Options) Equal(other Options) bool {
	return o.OrderBy == other.OrderBy &&
		o.Order == other.Order &&
		o.Offset == other.Offset &&
		o.PageSize == other.PageSize &&
		maps.Equal(o.Filters, other.Filters)
}

// Clone copies the filters map so the result can be modified safely
func (o Options) Clone() Options {
	o.Filters = maps.Clone(o.Filters)
	return o
}

// Page is the 1-based page the offset points into
func (o Options) Page() int {
	if o.PageSize <= 0 {
		return 1
	}
	return o.Offset/o.PageSize + 1
}

// queryParams is the wire form sent to the lookup endpoints
type queryParams struct {
	Limit   int    `url:"limit"`
	Offset  int    `url:"offset"`
	OrderBy string `url:"orderBy,omitempty"`
	Order   Order  `url:"order,omitempty"`
}

// Query encodes the options as lookup query parameters
func (o Options) Query() (url.Values, error) {
	values, err := query.Values(queryParams{
		Limit:   o.PageSize,
		Offset:  o.Offset,
		OrderBy: o.OrderBy,
		Order:   o.Order,
	})
	if err != nil {
		return nil, errors.Wrap(err, "encoding listing query")
	}

	keys := make([]string, 0, len(o.Filters))
	for k := range o.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		values.Set(k, o.Filters[k])
	}

	return values, nil
}

// Filter narrows a listing to a subject: a set of addresses or a name
type Filter struct {
	Addresses []string

	// AddressScoped marks listings that show "everything owned by this
	// dynamic set of addresses". For those an empty set means no results,
	// not "no filter".
	AddressScoped bool

	Name string
}

// Equal deep-compares two filters
func (f Filter) Equal(other Filter) bool {
	return f.AddressScoped == other.AddressScoped &&
		f.Name == other.Name &&
		slices.Equal(f.Addresses, other.Addresses)
}

// Empty reports whether an address-scoped filter has no addresses
func (f Filter) Empty() bool {
	return f.AddressScoped && len(f.Addresses) == 0
}

// Result is one page of a listing
type Result[T any] struct {
	Items []T
	Count int
	Total int
}

// EmptyResult is the successful result for a listing with nothing to show
func EmptyResult[T any]() Result[T] {
	return Result[T]{Items: []T{}}
}
