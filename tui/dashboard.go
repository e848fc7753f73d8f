package tui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"krist-explorer/api"
	"krist-explorer/listing"
	"krist-explorer/models"
	"krist-explorer/ui"
	"krist-explorer/utils"
)

type menuChoice struct {
	label string
	desc  string
	to    route
}

var menuChoices = []menuChoice{
	{"My transactions", "Transactions of your wallets, including mined blocks", route{state: StateTransactions, scope: scopeWallets}},
	{"My names", "Names owned by your wallets", route{state: StateNames, scope: scopeWallets}},
	{"Network transactions", "Every transaction on the network", route{state: StateTransactions}},
	{"Network names", "Every registered name", route{state: StateNames}},
	{"Recently registered names", "Names, newest first", route{state: StateNames, scope: scopeRecent}},
	{"Rich list", "Addresses by balance", route{state: StateAddresses}},
	{"Check a name", "Is a name still available?", route{state: StateNameCheck}},
	{"Look up a transaction", "Find a transaction by its ID", route{state: StateTransactionLookup}},
	{"Browse an address", "Transactions of any address", route{state: StateAddressInput}},
	{"Manage wallets", "Add, import or remove tracked addresses", route{state: StateWalletInput}},
	{"Help", "Keys and screens", route{state: StateHelp}},
}

// recentLimit is how many wallet transactions the dashboard shows
const recentLimit = 6

// recentMsg carries the dashboard's recent wallet transactions
type recentMsg struct {
	result listing.Result[models.Transaction]
	err    error
}

// recentFeed fetches recent wallet transactions behind a trailing throttle,
// so a burst of wallet changes costs one request
type recentFeed struct {
	ctx      context.Context
	client   *api.Client
	throttle *listing.Throttle[[]string]
	log      logrus.FieldLogger

	mu     sync.Mutex
	sendMu sync.RWMutex
	send   func(tea.Msg)
}

func newRecentFeed(ctx context.Context, client *api.Client, window time.Duration, log logrus.FieldLogger) *recentFeed {
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	f := &recentFeed{ctx: ctx, client: client, log: log.WithField("component", "recent-transactions")}
	f.throttle = listing.NewThrottle(window, f.fetch)
	return f
}

// attach sets where results are delivered, normally Program.Send
func (f *recentFeed) attach(send func(tea.Msg)) {
	f.sendMu.Lock()
	defer f.sendMu.Unlock()
	f.send = send
}

func (f *recentFeed) trigger(addresses []string) {
	f.throttle.Trigger(addresses)
}

func (f *recentFeed) stop() {
	f.throttle.Stop()
}

func (f *recentFeed) fetch(addresses []string) {
	// fetches settle in the order they started
	f.mu.Lock()
	defer f.mu.Unlock()

	res, err := fetchRecent(f.ctx, f.client, addresses)
	if err != nil {
		f.log.WithError(err).Warn("could not load recent transactions")
	}

	f.sendMu.RLock()
	send := f.send
	f.sendMu.RUnlock()
	if send != nil {
		send(recentMsg{result: res, err: err})
	}
}

// fetchRecent looks up the newest wallet transactions. With no wallets the
// lookup would list the whole network, so it is skipped.
func fetchRecent(ctx context.Context, client *api.Client, addresses []string) (listing.Result[models.Transaction], error) {
	if len(addresses) == 0 {
		return listing.EmptyResult[models.Transaction](), nil
	}
	return client.LookupTransactions(ctx,
		listing.Filter{Addresses: addresses, AddressScoped: true},
		listing.Options{
			OrderBy:  "id",
			Order:    listing.OrderDesc,
			PageSize: recentLimit,
			Filters:  map[string]string{"includeMined": "true"},
		})
}

// refreshDashboard reloads balances and the MOTD and schedules the recent
// transactions
func (m Model) refreshDashboard() (Model, tea.Cmd) {
	addresses := m.deps.Wallets.Addresses()
	m.walletLoading = true
	m.recentState = listing.FetchState[models.Transaction]{Status: listing.StatusLoading, Result: m.recentState.Result}
	m.recent.trigger(addresses)
	m.dashboardSeq++
	return m, dashboardCmd(m.ctx, m.deps.Client, m.deps.Caches, m.dashboardSeq, addresses)
}

// handleDashboard applies the overview of the latest refresh only; an older
// one may lack wallets added since
func (m Model) handleDashboard(msg dashboardMsg) (Model, tea.Cmd) {
	if msg.seq != m.dashboardSeq {
		m.log.WithFields(logrus.Fields{"seq": msg.seq, "latest": m.dashboardSeq}).Debug("discarding stale dashboard")
		return m, nil
	}
	m.walletLoading = false
	m.walletData, m.walletErr = msg.wallets, msg.walletErr
	if msg.walletErr != nil {
		m.addFormattedStatus("Wallets", ui.ResultFor(msg.walletErr).Title)
	}
	if msg.motdErr != nil {
		m.log.WithError(msg.motdErr).Warn("could not load MOTD")
		return m, nil
	}
	m.motd = msg.motd
	return m.setCapabilities(api.Capabilities(msg.motd))
}

func (m Model) handleRecent(msg recentMsg) (Model, tea.Cmd) {
	if msg.err != nil {
		m.recentState = listing.FetchState[models.Transaction]{Status: listing.StatusFailed, Err: msg.err}
		return m, nil
	}
	m.recentState = listing.FetchState[models.Transaction]{Status: listing.StatusLoaded, Result: msg.result}
	return m, nil
}

// Dashboard state handlers
func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		return m.navigate(m.choices[m.cursor].to)
	case key.Matches(msg, m.keys.Refresh):
		return m.refreshDashboard()
	}
	return m, nil
}

func (m Model) viewDashboard() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Krist Explorer") + "\n")
	if m.motd != nil && m.motd.MOTD != "" {
		s.WriteString(subtitleStyle.Render(m.motd.MOTD) + "\n")
	} else if m.deps.Client != nil {
		s.WriteString(subtitleStyle.Render(m.deps.Client.BaseURL()) + "\n")
	}

	s.WriteString(highlightStyle.Render("Wallets") + "\n")
	s.WriteString(m.viewWalletSummary() + "\n\n")

	s.WriteString(highlightStyle.Render("Recent transactions") + "\n")
	s.WriteString(m.viewRecent() + "\n\n")

	for i, choice := range m.choices {
		if m.cursor == i {
			s.WriteString("> " + selectedStyle.Render(choice.label))
			s.WriteString("  " + helpStyle.Render(choice.desc) + "\n")
		} else {
			s.WriteString("  " + choiceStyle.Render(choice.label) + "\n")
		}
	}

	footer := "↑/↓ navigate · enter select · r refresh · ? help · q quit"
	if every := m.autoRefresh(); every > 0 {
		footer += " · auto refresh " + utils.FormatDuration(every)
	}
	s.WriteString("\n" + helpStyle.Render(footer))

	return m.renderWithDynamicWidth(s.String())
}

func (m Model) viewWalletSummary() string {
	tracked := m.deps.Wallets.Wallets()
	if len(tracked) == 0 {
		return placeholderStyle.Render("No wallets yet. Choose Manage wallets to add one.")
	}
	if m.walletErr != nil {
		return renderResult(ui.ResultFor(m.walletErr))
	}
	if m.walletData == nil {
		return m.spin.View() + " " + helpStyle.Render("Loading balances...")
	}

	var s strings.Builder
	var total int64
	for _, w := range tracked {
		label := w.Address
		if w.Label != "" {
			label += " (" + w.Label + ")"
		}
		addr, ok := m.walletData.Addresses[w.Address]
		if !ok {
			s.WriteString("  " + utils.PadRight(label, 32) + " " + helpStyle.Render("not seen yet") + "\n")
			continue
		}
		total += addr.Balance
		s.WriteString(fmt.Sprintf("  %s %s  %s\n",
			utils.PadRight(label, 32),
			successStyle.Render(utils.PadRight(utils.FormatKrist(addr.Balance), 16)),
			helpStyle.Render(fmt.Sprintf("%d names", addr.Names))))
	}
	s.WriteString("  " + utils.PadRight("Total", 32) + " " + highlightStyle.Render(utils.FormatKrist(total)))
	return s.String()
}

func (m Model) viewRecent() string {
	if m.deps.Wallets.Len() == 0 {
		return placeholderStyle.Render("Nothing to show")
	}

	switch m.recentState.Status {
	case listing.StatusFailed:
		return errorStyle.Render("Could not load your transactions.")
	case listing.StatusLoaded:
		res := m.recentState.Result
		if res.Count == 0 {
			return placeholderStyle.Render("Nothing to show")
		}
		var s strings.Builder
		now := time.Now()
		for _, tx := range res.Items {
			title, detail := ui.TransactionLine(tx, now)
			s.WriteString("  " + title + "  " + helpStyle.Render(detail) + "\n")
		}
		if res.Total > res.Count {
			s.WriteString("  " + helpStyle.Render(fmt.Sprintf("and %s more in My transactions", utils.FormatNumber(int64(res.Total-res.Count)))))
		}
		return strings.TrimRight(s.String(), "\n")
	}
	return m.spin.View() + " " + helpStyle.Render("Loading...")
}
