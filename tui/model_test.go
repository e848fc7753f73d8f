package tui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krist-explorer/api"
	"krist-explorer/bus"
	"krist-explorer/cache"
	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/wallets"
)

const (
	namesBody = `{"ok":true,"count":1,"total":1,"names":[
		{"name":"example","owner":"kaaaaaaaaa","registered":"2021-02-01T10:00:00.000Z","unpaid":0}]}`
	transactionsBody = `{"ok":true,"count":1,"total":1,"transactions":[
		{"id":42,"from":"kaaaaaaaaa","to":"kbbbbbbbbb","value":1500,"time":"2021-02-01T10:00:00.000Z","type":"transfer"}]}`
	richBody = `{"ok":true,"count":1,"total":1,"addresses":[
		{"address":"kaaaaaaaaa","balance":100,"totalin":100,"totalout":0,"firstseen":"2021-02-01T10:00:00.000Z"}]}`
	transactionBody = `{"ok":true,"transaction":
		{"id":42,"from":"kaaaaaaaaa","to":"kbbbbbbbbb","value":1500,"time":"2021-02-01T10:00:00.000Z","type":"transfer"}}`
	motdBody = `{"ok":true,"motd":"hello","mining_enabled":true}`
)

type memoryBackend struct {
	mu   sync.Mutex
	snap *listing.Snapshot
}

func (b *memoryBackend) LoadHistory() (*listing.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap, nil
}

func (b *memoryBackend) SaveHistory(s *listing.Snapshot) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.snap = s
	return nil
}

// syncNode fakes the Krist API and records request paths
type syncNode struct {
	mu    sync.Mutex
	calls []string
}

func (n *syncNode) paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.calls...)
}

func (n *syncNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.EscapedPath()
	n.mu.Lock()
	n.calls = append(n.calls, path)
	n.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	body := `{"ok":false,"error":"not_found"}`
	switch {
	case strings.HasPrefix(path, "/lookup/names"):
		body = namesBody
		if strings.HasSuffix(path, "/history") || strings.HasSuffix(path, "/transactions") {
			body = transactionsBody
		}
	case strings.HasPrefix(path, "/lookup/transactions"):
		body = transactionsBody
	case strings.HasPrefix(path, "/lookup/addresses"):
		body = `{"ok":true,"found":0,"notFound":0,"addresses":{}}`
	case path == "/addresses/rich":
		body = richBody
	case path == "/transactions/42":
		body = transactionBody
	case strings.HasPrefix(path, "/names/check/"):
		body = `{"ok":true,"available":true}`
	case path == "/motd":
		body = motdBody
	default:
		w.WriteHeader(http.StatusNotFound)
	}
	_, _ = w.Write([]byte(body))
}

func newTestModel(t *testing.T, backend listing.Backend, seeds ...string) (Model, *syncNode) {
	t.Helper()

	node := &syncNode{}
	srv := httptest.NewServer(node)
	t.Cleanup(srv.Close)

	b := bus.New(nil)
	store, err := wallets.NewStore(nil, b, nil, seeds)
	require.NoError(t, err)

	cfg := models.DefaultConfig
	// keep the recent-transactions throttle from firing during a test
	cfg.Throttle = time.Hour

	caches := cache.NewCaches()
	t.Cleanup(caches.Close)

	m := NewModel(context.Background(), Deps{
		Config:  &cfg,
		Client:  api.NewClient(api.ClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, nil),
		History: listing.NewHistory(backend, nil),
		Wallets: store,
		Bus:     b,
		Caches:  caches,
	})
	t.Cleanup(m.recent.stop)

	m = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, node
}

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

func updateCmd(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func goTo(t *testing.T, m Model, r route) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.navigate(r)
	return next.(Model), cmd
}

func TestRestoreStartsOnDashboard(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m = update(t, m, restoreMsg{})

	assert.Equal(t, StateDashboard, m.state)
	assert.Equal(t, 1, m.deps.History.Len())
	assert.Contains(t, m.View(), "Krist Explorer")
}

func TestListingFetchesAndRendersTable(t *testing.T) {
	m, node := newTestModel(t, nil)

	m, cmd := goTo(t, m, route{state: StateNames})
	require.NotNil(t, m.names)
	require.NotNil(t, cmd)

	m = update(t, m, cmd())

	res, ok := m.names.ctrl.Latest()
	require.True(t, ok)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, listing.ModeTable, m.names.mode)
	assert.Contains(t, m.View(), "example.kst")
	assert.Equal(t, []string{"/lookup/names"}, node.paths())
}

func TestNarrowTerminalRendersList(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m = update(t, m, tea.WindowSizeMsg{Width: 80, Height: 40})

	m, cmd := goTo(t, m, route{state: StateTransactions})
	m = update(t, m, cmd())

	assert.Equal(t, listing.ModeList, m.txs.mode)
	assert.Contains(t, m.View(), "#42 Transfer")
}

func TestWalletListingWithoutWalletsMakesNoRequest(t *testing.T) {
	m, node := newTestModel(t, nil)

	m, cmd := goTo(t, m, route{state: StateNames, scope: scopeWallets})
	m = update(t, m, cmd())

	res, ok := m.names.ctrl.Latest()
	require.True(t, ok)
	assert.Zero(t, res.Total)
	assert.Empty(t, node.paths())
	assert.Contains(t, m.View(), "Nothing to show")
}

func TestLockDefersWalletChangeUntilUnlock(t *testing.T) {
	m, node := newTestModel(t, nil, "kaaaaaaaaa")

	m, cmd := goTo(t, m, route{state: StateTransactions, scope: scopeWallets})
	m = update(t, m, cmd())
	require.Equal(t, []string{"/lookup/transactions/kaaaaaaaaa"}, node.paths())

	m, cmd = updateCmd(t, m, lockMsg{listing: bus.ListingTransactions, locked: true})
	assert.Nil(t, cmd)
	assert.True(t, m.txs.ctrl.Locked())

	m = update(t, m, walletsChangedMsg{addresses: []string{"kaaaaaaaaa", "kbbbbbbbbb"}})
	assert.Equal(t, []string{"kaaaaaaaaa", "kbbbbbbbbb"}, m.txs.ctrl.Filter().Addresses)

	m, cmd = updateCmd(t, m, lockMsg{listing: bus.ListingTransactions, locked: false})
	require.NotNil(t, cmd)
	msg, ok := cmd().(fetchedMsg[models.Transaction])
	require.True(t, ok)
	assert.Equal(t, []string{"kaaaaaaaaa", "kbbbbbbbbb"}, msg.resp.Request.Filter.Addresses)

	m = update(t, m, msg)
	assert.False(t, m.txs.ctrl.Locked())
	assert.Contains(t, node.paths(), "/lookup/transactions/kaaaaaaaaa,kbbbbbbbbb")
}

func TestLockIgnoresNetworkListings(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = goTo(t, m, route{state: StateNames})
	m = update(t, m, lockMsg{listing: bus.ListingNames, locked: true})

	assert.False(t, m.names.ctrl.Locked())
}

func TestResponseForClosedPaneIsDropped(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, first := goTo(t, m, route{state: StateNames})
	m, _ = goTo(t, m, route{state: StateAddresses})
	m, _ = updateCmd(t, m, keyMsg("b"))
	require.NotNil(t, m.names)

	m = update(t, m, first())

	_, ok := m.names.ctrl.Latest()
	assert.False(t, ok)
}

func TestSortSurvivesRestart(t *testing.T) {
	backend := &memoryBackend{}
	m, _ := newTestModel(t, backend)

	m, cmd := goTo(t, m, route{state: StateNames})
	m = update(t, m, cmd())
	before := m.names.ctrl.Options().Order

	m, cmd = updateCmd(t, m, keyMsg("o"))
	require.NotNil(t, cmd)
	assert.Equal(t, before.Toggle(), m.names.ctrl.Options().Order)

	restarted, _ := newTestModel(t, backend)
	restarted = update(t, restarted, restoreMsg{})

	require.Equal(t, StateNames, restarted.state)
	require.NotNil(t, restarted.names)
	assert.Equal(t, before.Toggle(), restarted.names.ctrl.Options().Order)
}

func TestMiningSortSurvivesRestart(t *testing.T) {
	backend := &memoryBackend{}
	m, _ := newTestModel(t, backend)
	m, _ = m.setCapabilities(listing.CapMining)

	m, cmd := goTo(t, m, route{state: StateNames})
	m = update(t, m, cmd())
	require.NotNil(t, m.names.ctrl.SetSort("unpaid", listing.OrderDesc))

	restarted, _ := newTestModel(t, backend)
	assert.Equal(t, listing.CapMining, restarted.caps, "capabilities are known before the MOTD loads")

	restarted = update(t, restarted, restoreMsg{})
	require.NotNil(t, restarted.names)
	assert.Equal(t, "unpaid", restarted.names.ctrl.Options().OrderBy)

	restarted, _ = restarted.setCapabilities(listing.CapMining)
	assert.Equal(t, "unpaid", restarted.names.ctrl.Options().OrderBy)
}

func TestStaleDashboardIsDropped(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, _ = m.refreshDashboard()
	older := m.dashboardSeq
	m, _ = m.refreshDashboard()

	fresh := &api.AddressesResult{Found: 2, Addresses: map[string]models.Address{
		"kaaaaaaaaa": {Address: "kaaaaaaaaa"},
		"kbbbbbbbbb": {Address: "kbbbbbbbbb"},
	}}
	stale := &api.AddressesResult{Found: 1, Addresses: map[string]models.Address{
		"kaaaaaaaaa": {Address: "kaaaaaaaaa"},
	}}

	m = update(t, m, dashboardMsg{seq: m.dashboardSeq, wallets: fresh, motd: &models.MOTD{MOTD: "hello"}})
	m = update(t, m, dashboardMsg{seq: older, wallets: stale, motdErr: errors.New("late")})

	assert.Same(t, fresh, m.walletData)
	assert.False(t, m.walletLoading)
	require.NotNil(t, m.motd)
	assert.Equal(t, "hello", m.motd.MOTD)
}

func TestFailedRefreshKeepsPage(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, cmd := goTo(t, m, route{state: StateNames})
	m = update(t, m, cmd())

	m, cmd = updateCmd(t, m, keyMsg("r"))
	require.NotNil(t, cmd)
	msg, ok := cmd().(fetchedMsg[models.Name])
	require.True(t, ok)
	msg.resp.Result = listing.Result[models.Name]{}
	msg.resp.Err = &api.NetworkError{Op: "GET lookup/names", Err: errors.New("connection refused")}
	m = update(t, m, msg)

	assert.Equal(t, listing.StatusFailed, m.names.ctrl.State().Status)
	view := m.View()
	assert.Contains(t, view, "example.kst")
	assert.Contains(t, view, "Network error")
}

func TestNameCheck(t *testing.T) {
	m, node := newTestModel(t, nil)
	m, _ = goTo(t, m, route{state: StateNameCheck})

	m.input.SetValue("not a name!")
	m, cmd := updateCmd(t, m, keyMsg("enter"))
	assert.Nil(t, cmd)
	assert.NotEmpty(t, m.inputErr)

	m.input.SetValue("Example.kst")
	m, cmd = updateCmd(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.True(t, m.lookupBusy)

	m = update(t, m, cmd())
	require.NotNil(t, m.nameCheck)
	assert.Equal(t, "example", m.nameCheck.name)
	assert.True(t, m.nameCheck.available)
	assert.Equal(t, []string{"/names/check/example"}, node.paths())
	assert.Contains(t, m.View(), "example.kst is available")
}

func TestTransactionDetail(t *testing.T) {
	m, _ := newTestModel(t, nil)

	m, cmd := goTo(t, m, route{state: StateTransactionDetail, subject: "42"})
	require.NotNil(t, cmd)

	m = update(t, m, transactionMsg{id: 7, err: &api.APIError{Code: api.CodeTransactionNotFound}})
	assert.Nil(t, m.lookupErr)

	m = update(t, m, cmd())
	require.NotNil(t, m.transaction)
	assert.Equal(t, "kbbbbbbbbb", m.transaction.To)

	m, cmd = updateCmd(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Equal(t, StateTransactions, m.state)
	assert.Equal(t, []string{"kbbbbbbbbb"}, m.txs.ctrl.Filter().Addresses)
}

func TestInputStatesSwallowGlobalKeys(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = goTo(t, m, route{state: StateAddressInput})

	m = update(t, m, keyMsg("q"))
	assert.Equal(t, StateAddressInput, m.state)
	assert.Equal(t, "q", m.input.Value())

	m.input.SetValue("kaaaaaaaaa")
	m, _ = updateCmd(t, m, keyMsg("enter"))
	assert.Equal(t, StateTransactions, m.state)
	assert.Equal(t, scopeAddress, m.current.scope)
}

func TestParseWalletList(t *testing.T) {
	list := parseWalletList("kaaaaaaaaa:savings, kbbbbbbbbb")
	assert.Equal(t, []models.Wallet{
		{Address: "kaaaaaaaaa", Label: "savings"},
		{Address: "kbbbbbbbbb"},
	}, list)
	assert.Empty(t, parseWalletList("  "))
}

func TestImportWalletsRunsOffTheUpdateLoop(t *testing.T) {
	m, _ := newTestModel(t, nil)
	m, _ = goTo(t, m, route{state: StateWalletInput})

	var events []string
	handler := func(e bus.LockEvent) {
		events = append(events, e.Listing)
	}
	require.NoError(t, m.deps.Bus.Subscribe(bus.TopicListingLock, handler))
	defer m.deps.Bus.Unsubscribe(bus.TopicListingLock, handler)

	m.input.SetValue("kaaaaaaaaa")
	m, cmd := updateCmd(t, m, keyMsg("enter"))
	require.NotNil(t, cmd)
	assert.Empty(t, events, "store changes must wait for the command")

	m = update(t, m, cmd())
	assert.Equal(t, []string{"kaaaaaaaaa"}, m.deps.Wallets.Addresses())
	assert.Len(t, events, 4)
	assert.False(t, m.lookupBusy)
}

func TestDashboardHalvesFailIndependently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == "/motd" {
			_, _ = w.Write([]byte(motdBody))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)
	client := api.NewClient(api.ClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, nil)

	msg, ok := dashboardCmd(context.Background(), client, nil, 7, []string{"kaaaaaaaaa"})().(dashboardMsg)
	require.True(t, ok)

	assert.Equal(t, uint64(7), msg.seq)
	var netErr *api.NetworkError
	assert.ErrorAs(t, msg.walletErr, &netErr)
	require.NoError(t, msg.motdErr)
	require.NotNil(t, msg.motd)
	assert.Equal(t, "hello", msg.motd.MOTD)
}
