package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"krist-explorer/listing"
)

type recorded struct {
	path  string
	query url.Values
	agent string
}

func newTestServer(t *testing.T, status int, body string) (*Client, *[]recorded) {
	t.Helper()
	var calls []recorded
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, recorded{path: r.URL.EscapedPath(), query: r.URL.Query(), agent: r.UserAgent()})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(ClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second, UserAgent: "krist-explorer-test"}, nil)
	return c, &calls
}

func TestLookupNamesForAddresses(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{"ok":true,"count":1,"total":31,"names":[
		{"name":"example","owner":"kaaaaaaaaa","registered":"2021-02-01T10:00:00.000Z","unpaid":0}]}`)

	res, err := c.LookupNames(context.Background(),
		listing.Filter{Addresses: []string{"kaaaaaaaaa", "kbbbbbbbbb"}, AddressScoped: true},
		listing.Options{OrderBy: "registered", Order: listing.OrderDesc, Offset: 30, PageSize: 15})
	require.NoError(t, err)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/lookup/names/kaaaaaaaaa,kbbbbbbbbb", call.path)
	assert.Equal(t, "15", call.query.Get("limit"))
	assert.Equal(t, "30", call.query.Get("offset"))
	assert.Equal(t, "registered", call.query.Get("orderBy"))
	assert.Equal(t, "DESC", call.query.Get("order"))
	assert.Equal(t, "krist-explorer-test", call.agent)

	assert.Equal(t, 31, res.Total)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, "example", res.Items[0].Name)
	assert.Equal(t, 2021, res.Items[0].Registered.Year())
}

func TestLookupTransactionsIncludeMined(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{"ok":true,"count":0,"total":0,"transactions":[]}`)

	res, err := c.LookupTransactions(context.Background(), listing.Filter{},
		listing.Options{OrderBy: "id", Order: listing.OrderDesc, PageSize: 6, Filters: map[string]string{"includeMined": "true"}})
	require.NoError(t, err)

	assert.Equal(t, "/lookup/transactions", (*calls)[0].path)
	assert.Equal(t, "true", (*calls)[0].query.Get("includeMined"))
	assert.Equal(t, 0, res.Total)
}

func TestTransactionLookupScopes(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{"ok":true,"count":0,"total":0,"transactions":[]}`)
	ctx := context.Background()
	opts := listing.Options{PageSize: 10}

	_, err := c.TransactionLookup(ScopeNameHistory)(ctx, listing.Filter{Name: "example"}, opts)
	require.NoError(t, err)
	_, err = c.TransactionLookup(ScopeNameSent)(ctx, listing.Filter{Name: "example"}, opts)
	require.NoError(t, err)

	assert.Equal(t, "/lookup/names/example/history", (*calls)[0].path)
	assert.Equal(t, "/lookup/names/example/transactions", (*calls)[1].path)

	_, err = c.LookupNameHistory(ctx, listing.Filter{}, opts)
	var verr *listing.ValidationError
	assert.ErrorAs(t, err, &verr)
	assert.Len(t, *calls, 2, "validation fails before any request")
}

func TestRichAddressesDropsOrder(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{"ok":true,"count":1,"total":1,"addresses":[
		{"address":"kaaaaaaaaa","balance":1500,"totalin":2000,"totalout":500,"firstseen":"2020-01-01T00:00:00.000Z"}]}`)

	res, err := c.RichAddresses(context.Background(), listing.Filter{},
		listing.Options{OrderBy: "balance", Order: listing.OrderDesc, PageSize: 10})
	require.NoError(t, err)

	call := (*calls)[0]
	assert.Equal(t, "/addresses/rich", call.path)
	assert.Empty(t, call.query.Get("orderBy"))
	assert.Equal(t, "10", call.query.Get("limit"))
	assert.EqualValues(t, 1500, res.Items[0].Balance)
}

func TestAPIErrorCodes(t *testing.T) {
	c, _ := newTestServer(t, http.StatusNotFound, `{"ok":false,"error":"transaction_not_found"}`)

	_, err := c.GetTransaction(context.Background(), 999999)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeTransactionNotFound, apiErr.Code)
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.True(t, IsCode(err, CodeTransactionNotFound))
	assert.True(t, IsNotFound(err))
}

func TestOKFalseWithSuccessStatus(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"ok":false,"error":"invalid_parameter","parameter":"name"}`)

	_, err := c.CheckName(context.Background(), "BAD NAME")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, CodeInvalidParameter, apiErr.Code)
	assert.Equal(t, "name", apiErr.Parameter)
}

func TestServerErrorIsNetworkError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusBadGateway, `<html>bad gateway</html>`)

	_, err := c.GetMOTD(context.Background())
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusBadGateway, netErr.Status)
	assert.False(t, IsCode(err, CodeRateLimitHit))
}

func TestServerErrorWithCodeIsNetworkError(t *testing.T) {
	c, _ := newTestServer(t, http.StatusInternalServerError, `{"ok":false,"error":"database_error"}`)

	_, err := c.GetTransaction(context.Background(), 42)
	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, http.StatusInternalServerError, netErr.Status)
	assert.Contains(t, err.Error(), "database_error")

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestUnreachableNodeIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := NewClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	_, err := c.GetMOTD(context.Background())

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestCheckNameEscapes(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{"ok":true,"available":true}`)

	ok, err := c.CheckName(context.Background(), "a b")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/names/check/a%20b", (*calls)[0].path)
}

func TestGetMOTDCapabilities(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"ok":true,"motd":"hello","set":"2021-03-01T00:00:00.000Z","public_url":"krist.dev","mining_enabled":true,"debug_mode":false}`)

	motd, err := c.GetMOTD(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hello", motd.MOTD)
	assert.True(t, Capabilities(motd).Has(listing.CapMining))
	assert.False(t, Capabilities(nil).Has(listing.CapMining))
}

func TestLookupAddressesEmptySet(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{}`)

	res, err := c.LookupAddresses(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Empty(t, res.Addresses)
	assert.Empty(t, *calls)
}

func TestLookupAddresses(t *testing.T) {
	c, calls := newTestServer(t, http.StatusOK, `{"ok":true,"found":1,"notFound":1,"addresses":{
		"kaaaaaaaaa":{"address":"kaaaaaaaaa","balance":10,"names":2}}}`)

	res, err := c.LookupAddresses(context.Background(), []string{"kaaaaaaaaa", "kbbbbbbbbb"}, true)
	require.NoError(t, err)
	assert.Equal(t, "true", (*calls)[0].query.Get("fetchNames"))
	assert.Equal(t, 1, res.NotFound)
	assert.Equal(t, 2, res.Addresses["kaaaaaaaaa"].Names)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	c, _ := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c.limiter = rate.NewLimiter(rate.Limit(0.001), 1)
	require.NoError(t, c.Get(context.Background(), "motd", nil, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.Get(ctx, "motd", nil, nil)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}
