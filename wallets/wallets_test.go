package wallets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krist-explorer/bus"
	"krist-explorer/models"
)

type memoryPersister struct {
	saved []models.Wallet
	saves int
}

func (p *memoryPersister) LoadWallets() ([]models.Wallet, error) { return p.saved, nil }

func (p *memoryPersister) SaveWallets(w []models.Wallet) error {
	p.saved = w
	p.saves++
	return nil
}

type recorder struct {
	events []any
}

func subscribe(t *testing.T, b *bus.Bus) *recorder {
	r := &recorder{}
	require.NoError(t, b.Subscribe(bus.TopicWalletsChanged, func(ev bus.WalletsEvent) { r.events = append(r.events, ev) }))
	require.NoError(t, b.Subscribe(bus.TopicListingLock, func(ev bus.LockEvent) { r.events = append(r.events, ev) }))
	return r
}

func TestNewStoreMergesSeeds(t *testing.T) {
	p := &memoryPersister{saved: []models.Wallet{{Address: "kbbbbbbbbb", Label: "savings"}}}
	s, err := NewStore(p, nil, nil, []string{"kaaaaaaaaa", "not-an-address", "kbbbbbbbbb"})
	require.NoError(t, err)

	assert.Equal(t, []string{"kaaaaaaaaa", "kbbbbbbbbb"}, s.Addresses())
	label, ok := s.Label("kbbbbbbbbb")
	assert.True(t, ok)
	assert.Equal(t, "savings", label)
	assert.Zero(t, p.saves, "seeds are not persisted")
}

func TestAddRemovePublishes(t *testing.T) {
	b := bus.New(nil)
	rec := subscribe(t, b)
	p := &memoryPersister{}
	s, err := NewStore(p, b, nil, nil)
	require.NoError(t, err)

	require.NoError(t, s.Add("kaaaaaaaaa", "main"))
	assert.Error(t, s.Add("nope", ""))
	require.NoError(t, s.Remove("kaaaaaaaaa"))
	assert.Error(t, s.Remove("kaaaaaaaaa"))

	assert.Equal(t, []any{
		bus.WalletsEvent{Addresses: []string{"kaaaaaaaaa"}},
		bus.WalletsEvent{Addresses: []string{}},
	}, rec.events)
	assert.Equal(t, 2, p.saves)
	assert.Empty(t, p.saved)
}

func TestImportLocksListings(t *testing.T) {
	b := bus.New(nil)
	rec := subscribe(t, b)
	p := &memoryPersister{}
	s, err := NewStore(p, b, nil, nil)
	require.NoError(t, err)

	added, rejected, err := s.Import([]models.Wallet{
		{Address: "kaaaaaaaaa"},
		{Address: "kbbbbbbbbb", Label: "b"},
		{Address: "bad"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"bad"}, rejected)
	assert.Equal(t, 1, p.saves, "a bulk import saves once")

	assert.Equal(t, []any{
		bus.LockEvent{Listing: bus.ListingNames, Locked: true},
		bus.LockEvent{Listing: bus.ListingTransactions, Locked: true},
		bus.WalletsEvent{Addresses: []string{"kaaaaaaaaa", "kbbbbbbbbb"}},
		bus.LockEvent{Listing: bus.ListingNames, Locked: false},
		bus.LockEvent{Listing: bus.ListingTransactions, Locked: false},
	}, rec.events)
}

func TestImportNothingNew(t *testing.T) {
	b := bus.New(nil)
	rec := subscribe(t, b)
	s, err := NewStore(nil, b, nil, []string{"kaaaaaaaaa"})
	require.NoError(t, err)

	added, _, err := s.Import([]models.Wallet{{Address: "kaaaaaaaaa"}})
	require.NoError(t, err)
	assert.Zero(t, added)
	for _, ev := range rec.events {
		_, isWallets := ev.(bus.WalletsEvent)
		assert.False(t, isWallets)
	}
}
