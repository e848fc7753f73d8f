package api

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"krist-explorer/listing"
	"krist-explorer/models"
)

type namesPage struct {
	Count int           `json:"count"`
	Total int           `json:"total"`
	Names []models.Name `json:"names"`
}

type transactionsPage struct {
	Count        int                  `json:"count"`
	Total        int                  `json:"total"`
	Transactions []models.Transaction `json:"transactions"`
}

type addressesPage struct {
	Count     int              `json:"count"`
	Total     int              `json:"total"`
	Addresses []models.Address `json:"addresses"`
}

// addressPath joins addresses for the lookup endpoints. An empty set yields
// the unscoped endpoint, which lists the whole network.
func addressPath(base string, addresses []string) string {
	if len(addresses) == 0 {
		return base
	}
	escaped := make([]string, len(addresses))
	for i, a := range addresses {
		escaped[i] = url.PathEscape(a)
	}
	return base + "/" + strings.Join(escaped, ",")
}

// LookupNames lists names, optionally owned by the filter's addresses
func (c *Client) LookupNames(ctx context.Context, filter listing.Filter, opts listing.Options) (listing.Result[models.Name], error) {
	params, err := opts.Query()
	if err != nil {
		return listing.Result[models.Name]{}, err
	}

	var page namesPage
	if err := c.Get(ctx, addressPath("lookup/names", filter.Addresses), params, &page); err != nil {
		return listing.Result[models.Name]{}, err
	}
	return listing.Result[models.Name]{Items: page.Names, Count: page.Count, Total: page.Total}, nil
}

// TransactionScope selects which transactions a lookup lists
type TransactionScope int

const (
	// ScopeAddresses lists transactions of the filter's addresses, or of the
	// whole network when the filter has none
	ScopeAddresses TransactionScope = iota
	// ScopeNameHistory lists purchases, transfers and record updates of a name
	ScopeNameHistory
	// ScopeNameSent lists transactions sent to a name
	ScopeNameSent
)

// LookupTransactions lists transactions of the filter's addresses
func (c *Client) LookupTransactions(ctx context.Context, filter listing.Filter, opts listing.Options) (listing.Result[models.Transaction], error) {
	return c.lookupTransactions(ctx, addressPath("lookup/transactions", filter.Addresses), opts)
}

// LookupNameHistory lists the history of filter.Name
func (c *Client) LookupNameHistory(ctx context.Context, filter listing.Filter, opts listing.Options) (listing.Result[models.Transaction], error) {
	if filter.Name == "" {
		return listing.Result[models.Transaction]{}, &listing.ValidationError{Field: "name", Reason: "required"}
	}
	return c.lookupTransactions(ctx, "lookup/names/"+url.PathEscape(filter.Name)+"/history", opts)
}

// LookupNameTransactions lists transactions sent to filter.Name
func (c *Client) LookupNameTransactions(ctx context.Context, filter listing.Filter, opts listing.Options) (listing.Result[models.Transaction], error) {
	if filter.Name == "" {
		return listing.Result[models.Transaction]{}, &listing.ValidationError{Field: "name", Reason: "required"}
	}
	return c.lookupTransactions(ctx, "lookup/names/"+url.PathEscape(filter.Name)+"/transactions", opts)
}

// TransactionLookup returns the lookup function for a scope
func (c *Client) TransactionLookup(scope TransactionScope) listing.Lookup[models.Transaction] {
	switch scope {
	case ScopeNameHistory:
		return c.LookupNameHistory
	case ScopeNameSent:
		return c.LookupNameTransactions
	default:
		return c.LookupTransactions
	}
}

func (c *Client) lookupTransactions(ctx context.Context, path string, opts listing.Options) (listing.Result[models.Transaction], error) {
	params, err := opts.Query()
	if err != nil {
		return listing.Result[models.Transaction]{}, err
	}

	var page transactionsPage
	if err := c.Get(ctx, path, params, &page); err != nil {
		return listing.Result[models.Transaction]{}, err
	}
	return listing.Result[models.Transaction]{Items: page.Transactions, Count: page.Count, Total: page.Total}, nil
}

// RichAddresses lists addresses by balance. The endpoint takes no order
// parameters.
func (c *Client) RichAddresses(ctx context.Context, _ listing.Filter, opts listing.Options) (listing.Result[models.Address], error) {
	params, err := opts.Query()
	if err != nil {
		return listing.Result[models.Address]{}, err
	}
	params.Del("orderBy")
	params.Del("order")

	var page addressesPage
	if err := c.Get(ctx, "addresses/rich", params, &page); err != nil {
		return listing.Result[models.Address]{}, err
	}
	return listing.Result[models.Address]{Items: page.Addresses, Count: page.Count, Total: page.Total}, nil
}

// AddressesResult is the response of a multi-address lookup
type AddressesResult struct {
	Found     int                       `json:"found"`
	NotFound  int                       `json:"notFound"`
	Addresses map[string]models.Address `json:"addresses"`
}

// LookupAddresses fetches several addresses at once. Unknown addresses are
// missing from the map rather than failing the call.
func (c *Client) LookupAddresses(ctx context.Context, addresses []string, fetchNames bool) (*AddressesResult, error) {
	if len(addresses) == 0 {
		return &AddressesResult{Addresses: map[string]models.Address{}}, nil
	}

	params := url.Values{}
	if fetchNames {
		params.Set("fetchNames", "true")
	}

	var res AddressesResult
	if err := c.Get(ctx, addressPath("lookup/addresses", addresses), params, &res); err != nil {
		return nil, errors.WithMessage(err, "looking up wallet addresses")
	}
	if res.Addresses == nil {
		res.Addresses = map[string]models.Address{}
	}
	return &res, nil
}
