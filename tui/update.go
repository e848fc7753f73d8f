package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"krist-explorer/listing"
	"krist-explorer/models"
)

// activityMinWidth is the terminal width from which the activity pane shows
const activityMinWidth = 140

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleWindowSize(msg)
	case tea.KeyMsg:
		return m.handleKeyMessage(msg)
	case tea.MouseMsg:
		return m.handleMouseMessage(msg)
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case restoreMsg:
		return m.restore()
	case fetchedMsg[models.Name]:
		if m.names == nil {
			return m, nil
		}
		return m, m.names.apply(m.ctx, msg)
	case fetchedMsg[models.Transaction]:
		if m.txs == nil {
			return m, nil
		}
		return m, m.txs.apply(m.ctx, msg)
	case fetchedMsg[models.Address]:
		if m.addrs == nil {
			return m, nil
		}
		return m, m.addrs.apply(m.ctx, msg)
	case dashboardMsg:
		return m.handleDashboard(msg)
	case recentMsg:
		return m.handleRecent(msg)
	case walletsChangedMsg:
		return m.handleWalletsChanged(msg)
	case lockMsg:
		m.addFormattedStatus("Lock "+msg.listing, lockWord(msg.locked))
		return m, m.applyLock(msg.listing, msg.locked)
	case nameCheckMsg:
		return m.handleNameCheck(msg)
	case transactionMsg:
		return m.handleTransaction(msg)
	case walletOpMsg:
		return m.handleWalletOp(msg)
	case refreshTickMsg:
		return m.handleRefreshTick()
	}

	return m, nil
}

// handleWindowSize handles window resize events
func (m Model) handleWindowSize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height

	m.showRightPane = m.width >= activityMinWidth
	if m.showRightPane {
		m.leftPaneWidth = int(float64(m.width) * 0.7)
		m.rightPaneWidth = m.width - m.leftPaneWidth - 1
	} else {
		m.leftPaneWidth = m.width
		m.rightPaneWidth = 0
	}

	m.help.Width = m.contentWidth()
	m.input.Width = max(m.contentWidth()-4, 10)
	m.resizeListing()

	return m, nil
}

// contentWidth is the usable width inside the main pane
func (m Model) contentWidth() int {
	if m.showRightPane {
		return m.leftPaneWidth - 6
	}
	// margins, border and padding
	return max(m.width-10, 20)
}

// listingSize is the area a listing body renders into
func (m Model) listingSize() (int, int) {
	if m.width == 0 {
		return 0, 0
	}
	// title, status line, help and frame
	return m.contentWidth(), max(m.height-14, 5)
}

// inputState reports whether keys are typed into the text input
func (m Model) inputState() bool {
	switch m.state {
	case StateNameCheck, StateTransactionLookup, StateAddressInput:
		return true
	case StateWalletInput:
		return !m.walletFocus
	}
	return false
}

// handleKeyMessage handles keyboard input based on current state
func (m Model) handleKeyMessage(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	if m.showRightPane {
		switch msg.String() {
		case "pgup":
			m.scrollActivity(-5)
			return m, nil
		case "pgdown":
			m.scrollActivity(5)
			return m, nil
		}
	}

	if !m.inputState() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			return m.asModel(m.navigate(route{state: StateHelp}))
		case key.Matches(msg, m.keys.Menu):
			if m.state == StateDashboard {
				return m, nil
			}
			return m.asModel(m.navigate(route{state: StateDashboard}))
		case key.Matches(msg, m.keys.Back):
			return m.back()
		case key.Matches(msg, m.keys.Forward):
			return m.forward()
		}
	}

	// Delegate to state-specific handlers
	var model tea.Model
	var cmd tea.Cmd
	switch m.state {
	case StateDashboard:
		model, cmd = m.updateDashboard(msg)
	case StateNames, StateTransactions, StateAddresses:
		model, cmd = m.updateListing(msg)
	case StateNameCheck:
		model, cmd = m.updateNameCheck(msg)
	case StateTransactionLookup:
		model, cmd = m.updateTransactionLookup(msg)
	case StateTransactionDetail:
		model, cmd = m.updateTransactionDetail(msg)
	case StateWalletInput:
		model, cmd = m.updateWalletInput(msg)
	case StateAddressInput:
		model, cmd = m.updateAddressInput(msg)
	case StateHelp, StateError:
		model, cmd = m.updateError(msg)
	default:
		return m, nil
	}
	return model.(Model), cmd
}

func (m Model) asModel(model tea.Model, cmd tea.Cmd) (Model, tea.Cmd) {
	return model.(Model), cmd
}

// handleMouseMessage scrolls the activity pane
func (m Model) handleMouseMessage(msg tea.MouseMsg) (Model, tea.Cmd) {
	if !m.showRightPane {
		return m, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		m.scrollActivity(-2)
	case tea.MouseButtonWheelDown:
		m.scrollActivity(2)
	}
	return m, nil
}

// restore reopens the current history entry, or starts a fresh one
func (m Model) restore() (Model, tea.Cmd) {
	entry, ok := m.deps.History.Current()
	if !ok {
		entry = m.deps.History.Push(route{state: StateDashboard}.String())
	}
	m, cmd := m.enter(entry)

	// balances and MOTD are needed on every screen for capabilities
	if m.state != StateDashboard {
		dm, dcmd := m.refreshDashboard()
		return dm, tea.Batch(cmd, dcmd)
	}
	return m, cmd
}

// navigate pushes a route onto history and shows it
func (m Model) navigate(r route) (tea.Model, tea.Cmd) {
	m = m.releasePanes()
	entry := m.deps.History.Push(r.String())
	return m.enter(entry)
}

func (m Model) back() (Model, tea.Cmd) {
	return m.move(m.deps.History.Back)
}

func (m Model) forward() (Model, tea.Cmd) {
	return m.move(m.deps.History.Forward)
}

func (m Model) move(step func() (listing.Entry, bool)) (Model, tea.Cmd) {
	entry, ok := step()
	if !ok {
		return m, nil
	}
	return m.enter(entry)
}

func (m Model) isListing() bool {
	return m.state == StateNames || m.state == StateTransactions || m.state == StateAddresses
}

// enter shows a history entry
func (m Model) enter(entry listing.Entry) (Model, tea.Cmd) {
	m = m.releasePanes()
	r := parseRoute(entry.Route)
	m.entryID = entry.ID
	m.current = r
	m.state = r.state
	m.err = nil
	m.inputErr = ""
	m.lookupErr = nil
	m.lookupBusy = false
	m.log.WithField("route", entry.Route).Debug("entering screen")

	switch r.state {
	case StateDashboard:
		return m.refreshDashboard()
	case StateNames, StateTransactions, StateAddresses:
		return m.openListing(r)
	case StateTransactionDetail:
		return m.openTransaction(r.subject)
	case StateNameCheck:
		m.nameCheck = nil
		return m.focusInput("Name to check, e.g. example")
	case StateTransactionLookup:
		return m.focusInput("Transaction ID")
	case StateAddressInput:
		return m.focusInput("Address, e.g. kaaaaaaaaa")
	case StateWalletInput:
		m.walletFocus = false
		m.walletCursor = 0
		return m.focusInput("Addresses to add, e.g. kaaaaaaaaa:savings kbbbbbbbbb")
	}
	return m, nil
}

func (m Model) handleWalletsChanged(msg walletsChangedMsg) (Model, tea.Cmd) {
	m.addFormattedAction("Wallets changed")
	m.addFormattedStatus("Tracked", strconv.Itoa(len(msg.addresses)))

	cmd := m.applyWallets(msg.addresses)
	if m.walletCursor >= len(msg.addresses) {
		m.walletCursor = max(len(msg.addresses)-1, 0)
	}
	m, dcmd := m.refreshDashboard()
	return m, tea.Batch(cmd, dcmd)
}

func (m Model) handleRefreshTick() (Model, tea.Cmd) {
	next := autoRefreshCmd(m.autoRefresh())
	switch {
	case m.state == StateDashboard:
		m, cmd := m.refreshDashboard()
		return m, tea.Batch(cmd, next)
	case m.isListing():
		return m, tea.Batch(m.refreshListing(), next)
	}
	return m, next
}
