package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnpaidNeedsMining(t *testing.T) {
	assert.False(t, Names.CanSortBy("unpaid", 0))
	assert.True(t, Names.CanSortBy("unpaid", CapMining))
	assert.Len(t, Names.SortOptions(0), len(Names.Sortable)-1)
}

func TestNormalizeFallsBackToDefault(t *testing.T) {
	opts, err := Names.Normalize(Options{OrderBy: "unpaid", Order: OrderDesc, PageSize: 15}, 0)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "orderBy", verr.Field)
	assert.Equal(t, "name", opts.OrderBy)
	assert.Equal(t, OrderAsc, opts.Order)
	assert.Equal(t, 15, opts.PageSize)

	opts, err = Names.Normalize(Options{OrderBy: "unpaid", Order: OrderDesc}, CapMining)
	require.NoError(t, err)
	assert.Equal(t, "unpaid", opts.OrderBy)
}

func TestNormalizeEmptyUsesContextDefault(t *testing.T) {
	opts, err := RecentNames.Normalize(Options{}, 0)
	require.NoError(t, err)
	assert.Equal(t, "registered", opts.OrderBy)
	assert.Equal(t, OrderDesc, opts.Order)

	opts, err = Transactions.Normalize(Options{Order: "asc"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "id", opts.OrderBy)
	assert.Equal(t, OrderAsc, opts.Order)
}

func TestNormalizeBadOrder(t *testing.T) {
	opts, err := Transactions.Normalize(Options{OrderBy: "value", Order: "sideways"}, 0)
	assert.Error(t, err)
	assert.Equal(t, "value", opts.OrderBy)
	assert.Equal(t, OrderDesc, opts.Order)
}

func TestNextSort(t *testing.T) {
	assert.Equal(t, "owner", Names.NextSort("name", 0))
	assert.Equal(t, "registered", Names.NextSort("a", 0), "unpaid is skipped without mining")
	assert.Equal(t, "unpaid", Names.NextSort("a", CapMining))
	assert.Equal(t, "name", Names.NextSort("updated", 0))
	assert.Equal(t, "Sent name", Transactions.DisplayName("sent_name"))
}

func TestOrderToggleAndParse(t *testing.T) {
	assert.Equal(t, OrderDesc, OrderAsc.Toggle())
	o, ok := ParseOrder("descending")
	assert.True(t, ok)
	assert.Equal(t, OrderDesc, o)
	_, ok = ParseOrder("up")
	assert.False(t, ok)
}

func TestOptionsQuery(t *testing.T) {
	opts := Options{OrderBy: "id", Order: OrderDesc, Offset: 30, PageSize: 15, Filters: map[string]string{"includeMined": "true"}}
	values, err := opts.Query()
	require.NoError(t, err)
	assert.Equal(t, "includeMined=true&limit=15&offset=30&order=DESC&orderBy=id", values.Encode())
	assert.Equal(t, 3, opts.Page())
}
