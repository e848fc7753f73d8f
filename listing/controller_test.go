package listing

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID int
}

func newTestController(t *testing.T, kind Kind, filter Filter, lookup Lookup[item]) (*Controller[item], *OptionStore) {
	t.Helper()
	h := NewHistory(nil, nil)
	entry := h.Push("test")
	store, err := h.Bind(entry.ID, kind.Name, Options{PageSize: 10})
	require.NoError(t, err)
	t.Cleanup(store.Release)

	c := NewController(Config[item]{
		Kind:     kind,
		Lookup:   lookup,
		Store:    store,
		Filter:   filter,
		PageSize: 10,
	})
	return c, store
}

func pageOf(total int) Lookup[item] {
	return func(_ context.Context, _ Filter, opts Options) (Result[item], error) {
		var items []item
		for i := opts.Offset; i < total && i < opts.Offset+opts.PageSize; i++ {
			items = append(items, item{ID: i})
		}
		return Result[item]{Items: items, Count: len(items), Total: total}, nil
	}
}

func TestControllerNormalizesStoredOptions(t *testing.T) {
	c, store := newTestController(t, Names, Filter{}, pageOf(0))

	assert.Equal(t, "name", c.Options().OrderBy)
	assert.Equal(t, OrderAsc, c.Options().Order)
	assert.Equal(t, "name", store.Options().OrderBy, "normalised options are written back")
}

func TestEmptyAddressSetSkipsLookup(t *testing.T) {
	var calls atomic.Int32
	lookup := func(context.Context, Filter, Options) (Result[item], error) {
		calls.Add(1)
		return Result[item]{}, nil
	}
	c, _ := newTestController(t, Transactions, Filter{AddressScoped: true}, lookup)

	res, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, calls.Load())
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Equal(t, StatusLoaded, c.State().Status)
}

func TestClampRefetchesOnce(t *testing.T) {
	total := 12
	var calls atomic.Int32
	lookup := func(ctx context.Context, f Filter, opts Options) (Result[item], error) {
		calls.Add(1)
		return pageOf(total)(ctx, f, opts)
	}
	c, store := newTestController(t, Transactions, Filter{}, lookup)

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)
	req := c.SetPage(2)
	require.NotNil(t, req)
	assert.Equal(t, 10, req.Options.Offset)

	calls.Store(0)
	total = 5
	res, err := c.Fetch(context.Background())
	require.NoError(t, err)

	assert.EqualValues(t, 2, calls.Load(), "one fetch plus exactly one clamp re-fetch")
	assert.Equal(t, 0, store.Options().Offset)
	assert.Equal(t, 1, c.Pagination().Current)
	assert.Len(t, res.Items, 5)
}

func TestStaleResponseDiscarded(t *testing.T) {
	c, _ := newTestController(t, Transactions, Filter{}, pageOf(100))

	first := c.Start()
	second := c.NextPage()
	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Greater(t, second.Seq, first.Seq)

	newer := c.Run(context.Background(), second)
	older := c.Run(context.Background(), first)

	_, applied := c.Apply(newer)
	assert.True(t, applied)
	_, applied = c.Apply(older)
	assert.False(t, applied, "response to a superseded request must be dropped")

	state := c.State()
	require.Equal(t, StatusLoaded, state.Status)
	assert.Equal(t, 10, state.Result.Items[0].ID)
}

func TestFailedLookupKeepsStaleResult(t *testing.T) {
	fail := false
	lookup := func(ctx context.Context, f Filter, opts Options) (Result[item], error) {
		if fail {
			return Result[item]{}, errors.New("boom")
		}
		return pageOf(30)(ctx, f, opts)
	}
	c, _ := newTestController(t, Transactions, Filter{}, lookup)

	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	fail = true
	_, err = c.Fetch(context.Background())
	assert.EqualError(t, err, "boom")
	assert.Equal(t, StatusFailed, c.State().Status)

	latest, ok := c.Latest()
	assert.True(t, ok)
	assert.Equal(t, 30, latest.Total)
}

func TestEqualOptionsAreNoOp(t *testing.T) {
	c, _ := newTestController(t, Names, Filter{}, pageOf(10))
	c.Start()

	assert.Nil(t, c.SetOptions(c.Options()))
	assert.Nil(t, c.SetSort("name", OrderAsc))
	assert.Nil(t, c.SetFilter(Filter{}))
	assert.NotNil(t, c.SetSort("owner", OrderAsc))
}

func TestSortAndPageSizeResetOffset(t *testing.T) {
	c, _ := newTestController(t, Names, Filter{}, pageOf(100))
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	c.SetPage(3)
	assert.Equal(t, 20, c.Options().Offset)

	req := c.SetSort("registered", OrderDesc)
	require.NotNil(t, req)
	assert.Equal(t, 0, req.Options.Offset)

	c.SetPage(2)
	req, err = c.SetPageSize(20)
	require.NoError(t, err)
	assert.Equal(t, 0, req.Options.Offset)
	assert.Equal(t, 20, req.Options.PageSize)

	_, err = c.SetPageSize(13)
	assert.Error(t, err)
	assert.Equal(t, 20, c.Options().PageSize)
}

func TestLockSuppressesFetches(t *testing.T) {
	c, _ := newTestController(t, Names, Filter{}, pageOf(100))
	c.Start()

	c.Lock()
	assert.True(t, c.Locked())
	assert.Nil(t, c.Refresh())
	assert.Nil(t, c.NextPage())
	assert.NotNil(t, c.Unlock(), "changes made while locked are fetched on unlock")
	assert.False(t, c.Locked())
}

func TestUnlockFetchesOnlyAfterChange(t *testing.T) {
	c, _ := newTestController(t, Names, Filter{}, pageOf(100))
	c.Start()

	c.Lock()
	assert.Nil(t, c.Unlock(), "nothing changed while locked")

	c.Lock()
	assert.Nil(t, c.SetSort("owner", OrderDesc))
	assert.Equal(t, "owner", c.Options().OrderBy, "options still update while locked")
	req := c.Unlock()
	require.NotNil(t, req)
	assert.Equal(t, "owner", req.Options.OrderBy)
}

func TestCapabilitiesNarrowSort(t *testing.T) {
	h := NewHistory(nil, nil)
	entry := h.Push("names")
	store, err := h.Bind(entry.ID, "names", Options{})
	require.NoError(t, err)

	c := NewController(Config[item]{
		Kind:         Names,
		Lookup:       pageOf(0),
		Store:        store,
		Capabilities: CapMining,
	})
	c.SetSort("unpaid", OrderDesc)
	assert.Equal(t, "unpaid", c.Options().OrderBy)

	req := c.SetCapabilities(0)
	require.NotNil(t, req)
	assert.Equal(t, "name", req.Options.OrderBy)
	assert.Equal(t, OrderAsc, req.Options.Order)
}

func TestViewSharesStateAcrossModes(t *testing.T) {
	c, _ := newTestController(t, Names, Filter{}, pageOf(42))
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	wide := c.View(140, 100)
	narrow := c.View(60, 100)

	assert.Equal(t, ModeTable, wide.Mode)
	assert.Equal(t, ModeList, narrow.Mode)
	assert.Equal(t, wide.Result, narrow.Result)
	assert.Equal(t, wide.Page, narrow.Page)
	assert.Equal(t, 5, wide.Page.LastPage())
	assert.True(t, wide.HasResult)
}

func TestViewNumbersRowsFromFetchedOffset(t *testing.T) {
	c, _ := newTestController(t, Transactions, Filter{}, pageOf(25))
	_, err := c.Fetch(context.Background())
	require.NoError(t, err)

	req := c.NextPage()
	require.NotNil(t, req)

	v := c.View(140, 100)
	assert.Equal(t, 10, v.Options.Offset)
	assert.Equal(t, 0, v.ResultOptions.Offset, "rows on screen still belong to page 1")
	from, to := v.Shown().Range()
	assert.Equal(t, 1, from)
	assert.Equal(t, 10, to)

	_, applied := c.Apply(c.Run(context.Background(), req))
	require.True(t, applied)
	v = c.View(140, 100)
	assert.Equal(t, 10, v.ResultOptions.Offset)
	from, to = v.Shown().Range()
	assert.Equal(t, 11, from)
	assert.Equal(t, 20, to)
}
