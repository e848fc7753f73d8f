package tui

import (
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"krist-explorer/api"
	"krist-explorer/bus"
	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/ui"
	"krist-explorer/utils"
)

// Listing slots; one per listing shown on a history entry
const (
	slotNames        = "names"
	slotTransactions = "transactions"
	slotAddresses    = "addresses"
)

func nameLine(n models.Name, _ int) (string, string) {
	return ui.NameLine(n, time.Now())
}

func transactionLine(tx models.Transaction, _ int) (string, string) {
	return ui.TransactionLine(tx, time.Now())
}

func openNameHistory(n models.Name) (route, bool) {
	return route{state: StateTransactions, scope: scopeNameHistory, subject: n.Name}, true
}

func openNameSent(n models.Name) (route, bool) {
	return route{state: StateTransactions, scope: scopeNameSent, subject: n.Name}, true
}

func openTransaction(tx models.Transaction) (route, bool) {
	return route{state: StateTransactionDetail, subject: strconv.Itoa(tx.ID)}, true
}

func openAddress(a models.Address) (route, bool) {
	return route{state: StateTransactions, scope: scopeAddress, subject: a.Address}, true
}

// walletFilter scopes a listing to the tracked wallets
func (m Model) walletFilter() listing.Filter {
	return listing.Filter{Addresses: m.deps.Wallets.Addresses(), AddressScoped: true}
}

func minedDefaults() listing.Options {
	return listing.Options{Filters: map[string]string{"includeMined": "true"}}
}

func (m Model) namesConfig(r route) (paneConfig[models.Name], error) {
	cfg := paneConfig[models.Name]{
		slot:   slotNames,
		title:  "Network names",
		kind:   listing.Names,
		lookup: m.deps.Client.LookupNames,
		cols:   ui.NameColumns,
		cell:   ui.NameCells,
		line:   nameLine,
		open:   openNameHistory,
		alt:    openNameSent,
	}
	switch r.scope {
	case scopeNetwork:
	case scopeWallets:
		cfg.title = "My names"
		cfg.filter = m.walletFilter()
	case scopeRecent:
		cfg.title = "Recently registered names"
		cfg.kind = listing.RecentNames
	default:
		return cfg, errors.Errorf("unknown names listing %q", r.scope)
	}
	return cfg, nil
}

func (m Model) transactionsConfig(r route) (paneConfig[models.Transaction], error) {
	client := m.deps.Client
	cfg := paneConfig[models.Transaction]{
		slot:   slotTransactions,
		title:  "Network transactions",
		kind:   listing.Transactions,
		lookup: client.TransactionLookup(api.ScopeAddresses),
		cols:   ui.TransactionColumns,
		cell:   ui.TransactionCells,
		line:   transactionLine,
		open:   openTransaction,
	}

	switch r.scope {
	case scopeNetwork:
	case scopeWallets:
		cfg.title = "My transactions"
		cfg.filter = m.walletFilter()
		cfg.defaults = minedDefaults()
	case scopeAddress:
		if err := utils.ValidateAddress(r.subject); err != nil {
			return cfg, err
		}
		cfg.title = "Transactions of " + r.subject
		cfg.filter = listing.Filter{Addresses: []string{r.subject}, AddressScoped: true}
		cfg.defaults = minedDefaults()
	case scopeNameHistory, scopeNameSent:
		name := utils.NormalizeName(r.subject)
		if err := utils.ValidateName(name); err != nil {
			return cfg, err
		}
		cfg.filter = listing.Filter{Name: name}
		if r.scope == scopeNameHistory {
			cfg.title = "History of " + name + utils.NameSuffix
			cfg.lookup = client.TransactionLookup(api.ScopeNameHistory)
		} else {
			cfg.title = "Transactions sent to " + name + utils.NameSuffix
			cfg.lookup = client.TransactionLookup(api.ScopeNameSent)
		}
	default:
		return cfg, errors.Errorf("unknown transactions listing %q", r.scope)
	}
	return cfg, nil
}

func (m Model) addressesConfig() paneConfig[models.Address] {
	return paneConfig[models.Address]{
		slot:   slotAddresses,
		title:  "Rich list",
		kind:   listing.Addresses,
		lookup: m.deps.Client.RichAddresses,
		cols:   ui.AddressColumns,
		cell:   ui.AddressCell,
		line:   ui.AddressLine,
		open:   openAddress,
	}
}

// openListing builds the pane for a listing route and issues its first fetch
func (m Model) openListing(r route) (Model, tea.Cmd) {
	w, h := m.listingSize()

	var cmd tea.Cmd
	var err error
	switch r.state {
	case StateNames:
		var cfg paneConfig[models.Name]
		if cfg, err = m.namesConfig(r); err == nil {
			m.names, cmd, err = startPane(m, cfg, w, h)
		}
	case StateTransactions:
		var cfg paneConfig[models.Transaction]
		if cfg, err = m.transactionsConfig(r); err == nil {
			m.txs, cmd, err = startPane(m, cfg, w, h)
		}
	case StateAddresses:
		m.addrs, cmd, err = startPane(m, m.addressesConfig(), w, h)
	}

	if err != nil {
		m.log.WithError(err).WithField("route", r.String()).Warn("could not open listing")
		m.err = err
		m.state = StateError
		return m, nil
	}
	return m, cmd
}

func startPane[T any](m Model, cfg paneConfig[T], width, height int) (*pane[T], tea.Cmd, error) {
	p, err := newPane(m.deps.History, m.entryID, m.caps, m.pageSize(), m.deps.Log, cfg)
	if err != nil {
		return nil, nil, err
	}
	p.resize(width, height, m.breakpoint())
	return p, p.fetch(m.ctx, p.ctrl.Start()), nil
}

// releasePanes frees the history slots of the current listing
func (m Model) releasePanes() Model {
	if m.names != nil {
		m.names.release()
		m.names = nil
	}
	if m.txs != nil {
		m.txs.release()
		m.txs = nil
	}
	if m.addrs != nil {
		m.addrs.release()
		m.addrs = nil
	}
	return m
}

// walletScoped reports whether the current listing follows the wallet set
func (m Model) walletScoped() bool {
	return m.current.scope == scopeWallets && (m.state == StateNames || m.state == StateTransactions)
}

// applyWallets re-scopes wallet listings after the wallet set changed
func (m Model) applyWallets(addresses []string) tea.Cmd {
	if !m.walletScoped() {
		return nil
	}
	f := listing.Filter{Addresses: addresses, AddressScoped: true}
	switch {
	case m.names != nil:
		return m.names.fetch(m.ctx, m.names.ctrl.SetFilter(f))
	case m.txs != nil:
		return m.txs.fetch(m.ctx, m.txs.ctrl.SetFilter(f))
	}
	return nil
}

// applyLock engages or releases the lock of a wallet listing
func (m Model) applyLock(name string, locked bool) tea.Cmd {
	if !m.walletScoped() {
		return nil
	}
	switch {
	case name == bus.ListingNames && m.names != nil:
		return m.names.fetch(m.ctx, m.names.setLocked(locked))
	case name == bus.ListingTransactions && m.txs != nil:
		return m.txs.fetch(m.ctx, m.txs.setLocked(locked))
	}
	return nil
}

// setCapabilities records the network flags and narrows the names sort
func (m Model) setCapabilities(caps listing.Capability) (Model, tea.Cmd) {
	m.caps = caps
	if m.deps.History != nil {
		m.deps.History.SetCapabilities(caps)
	}
	if m.names == nil {
		return m, nil
	}
	return m, m.names.fetch(m.ctx, m.names.ctrl.SetCapabilities(caps))
}

// refreshListing re-fetches whichever listing is open
func (m Model) refreshListing() tea.Cmd {
	switch {
	case m.names != nil:
		return m.names.fetch(m.ctx, m.names.ctrl.Refresh())
	case m.txs != nil:
		return m.txs.fetch(m.ctx, m.txs.ctrl.Refresh())
	case m.addrs != nil:
		return m.addrs.fetch(m.ctx, m.addrs.ctrl.Refresh())
	}
	return nil
}

func (m Model) resizeListing() {
	w, h := m.listingSize()
	bp := m.breakpoint()
	switch {
	case m.names != nil:
		m.names.resize(w, h, bp)
	case m.txs != nil:
		m.txs.resize(w, h, bp)
	case m.addrs != nil:
		m.addrs.resize(w, h, bp)
	}
}

// Listing state handlers
func (m Model) updateListing(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case m.names != nil:
		return listingKey(m, m.names, msg)
	case m.txs != nil:
		return listingKey(m, m.txs, msg)
	case m.addrs != nil:
		return listingKey(m, m.addrs, msg)
	}
	return m, nil
}

func listingKey[T any](m Model, p *pane[T], msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Select) && p.cfg.open != nil:
		if item, ok := p.selected(); ok {
			if r, ok := p.cfg.open(item); ok {
				return m.navigate(r)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Sent) && p.cfg.alt != nil:
		if item, ok := p.selected(); ok {
			if r, ok := p.cfg.alt(item); ok {
				return m.navigate(r)
			}
		}
		return m, nil
	case key.Matches(msg, m.keys.Sent) && m.current.scope == scopeNameHistory:
		return m.navigate(route{state: StateTransactions, scope: scopeNameSent, subject: m.current.subject})
	case key.Matches(msg, m.keys.Sent) && m.current.scope == scopeNameSent:
		return m.navigate(route{state: StateTransactions, scope: scopeNameHistory, subject: m.current.subject})
	}

	wasLocked := p.ctrl.Locked()
	req, handled, err := p.handleKey(msg, m.keys)
	if !handled {
		return m, nil
	}
	if err != nil {
		m.addFormattedStatus(p.cfg.title, ui.ResultFor(err).Message)
		return m, nil
	}
	if locked := p.ctrl.Locked(); locked != wasLocked {
		m.addFormattedAction(p.cfg.title)
		m.addFormattedStatus("Lock", lockWord(locked))
	}
	p.sync()
	return m, p.fetch(m.ctx, req)
}

func lockWord(locked bool) string {
	if locked {
		return "engaged"
	}
	return "released"
}

func (m Model) viewListing() string {
	spin := m.spin.View()
	bp := m.breakpoint()

	var body string
	switch {
	case m.names != nil:
		body = m.names.render(bp, spin)
	case m.txs != nil:
		body = m.txs.render(bp, spin)
	case m.addrs != nil:
		body = m.addrs.render(bp, spin)
	}

	return m.renderWithDynamicWidth(body + "\n\n" + m.help.View(m.keys))
}
