package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"krist-explorer/models"
	"krist-explorer/utils"
)

// focusInput clears the text input and gives it focus
func (m Model) focusInput(placeholder string) (Model, tea.Cmd) {
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.inputErr = ""
	return m, m.input.Focus()
}

// typeInput forwards a key to the text input
func (m Model) typeInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// Name check state handlers
func (m Model) updateNameCheck(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.navigate(route{state: StateDashboard})
	case "enter":
		name := utils.NormalizeName(m.input.Value())
		if err := utils.ValidateName(name); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		m.inputErr = ""
		m.nameCheck = nil
		m.lookupBusy = true
		return m, checkNameCmd(m.ctx, m.deps.Client, m.deps.Caches, name)
	}
	return m.typeInput(msg)
}

func (m Model) viewNameCheck() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Check a name") + "\n")
	s.WriteString(subtitleStyle.Render("Names are 1-64 characters, a-z and 0-9. The "+utils.NameSuffix+" suffix is optional.") + "\n")
	s.WriteString(inputFieldStyle.Render(m.input.View()) + "\n\n")

	switch {
	case m.inputErr != "":
		s.WriteString(errorStyle.Render(m.inputErr))
	case m.lookupBusy:
		s.WriteString(m.spin.View() + " " + helpStyle.Render("Checking..."))
	case m.nameCheck != nil:
		s.WriteString(m.viewNameCheckResult())
	}

	s.WriteString("\n\n" + helpStyle.Render("enter check · esc dashboard"))
	return m.renderWithDynamicWidth(s.String())
}

// Transaction lookup state handlers
func (m Model) updateTransactionLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.navigate(route{state: StateDashboard})
	case "enter":
		id, err := utils.ParseTransactionID(m.input.Value())
		if err != nil {
			m.inputErr = "Transaction IDs are positive whole numbers."
			return m, nil
		}
		return m.navigate(route{state: StateTransactionDetail, subject: strconv.Itoa(id)})
	}
	return m.typeInput(msg)
}

func (m Model) viewTransactionLookup() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Look up a transaction") + "\n")
	s.WriteString(subtitleStyle.Render("Enter a transaction ID.") + "\n")
	s.WriteString(inputFieldStyle.Render(m.input.View()) + "\n\n")

	if m.inputErr != "" {
		s.WriteString(errorStyle.Render(m.inputErr) + "\n\n")
	}

	s.WriteString(helpStyle.Render("enter look up · esc dashboard"))
	return m.renderWithDynamicWidth(s.String())
}

// Address input state handlers
func (m Model) updateAddressInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return m.navigate(route{state: StateDashboard})
	case "enter":
		address := strings.TrimSpace(m.input.Value())
		if err := utils.ValidateAddress(address); err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		return m.navigate(route{state: StateTransactions, scope: scopeAddress, subject: address})
	}
	return m.typeInput(msg)
}

func (m Model) viewAddressInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Browse an address") + "\n")
	s.WriteString(subtitleStyle.Render("Shows every transaction sent or received by the address.") + "\n")
	s.WriteString(inputFieldStyle.Render(m.input.View()) + "\n\n")

	if m.inputErr != "" {
		s.WriteString(errorStyle.Render(m.inputErr) + "\n\n")
	}

	s.WriteString(helpStyle.Render("enter browse · esc dashboard"))
	return m.renderWithDynamicWidth(s.String())
}

// parseWalletList reads "address[:label]" entries separated by commas or
// whitespace
func parseWalletList(input string) []models.Wallet {
	var list []models.Wallet
	for _, item := range utils.ParseCommaSeparatedList(input) {
		address, label, _ := strings.Cut(item, ":")
		list = append(list, models.Wallet{Address: address, Label: label})
	}
	return list
}

// Wallet manager state handlers
func (m Model) updateWalletInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "tab" {
		if m.walletFocus {
			m.walletFocus = false
			return m, m.input.Focus()
		}
		if m.deps.Wallets.Len() > 0 {
			m.walletFocus = true
			m.input.Blur()
		}
		return m, nil
	}

	if m.walletFocus {
		return m.updateWalletList(msg)
	}

	switch msg.String() {
	case "esc":
		return m.navigate(route{state: StateDashboard})
	case "enter":
		list := parseWalletList(m.input.Value())
		if len(list) == 0 {
			m.inputErr = "enter at least one address"
			return m, nil
		}
		m.inputErr = ""
		m.lookupBusy = true
		m.input.Reset()
		m.addFormattedAction("Importing wallets")
		return m, importWalletsCmd(m.deps.Wallets, list)
	}
	return m.typeInput(msg)
}

func (m Model) updateWalletList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tracked := m.deps.Wallets.Wallets()

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.walletCursor > 0 {
			m.walletCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.walletCursor < len(tracked)-1 {
			m.walletCursor++
		}
	case key.Matches(msg, m.keys.Select):
		if m.walletCursor < len(tracked) {
			return m.navigate(route{state: StateTransactions, scope: scopeAddress, subject: tracked[m.walletCursor].Address})
		}
	case msg.String() == "x", msg.String() == "delete":
		if m.walletCursor < len(tracked) {
			m.lookupBusy = true
			m.addFormattedAction("Removing wallet")
			return m, removeWalletCmd(m.deps.Wallets, tracked[m.walletCursor].Address)
		}
	}
	return m, nil
}

func (m Model) handleWalletOp(msg walletOpMsg) (Model, tea.Cmd) {
	m.lookupBusy = false
	if msg.err != nil {
		m.inputErr = msg.err.Error()
		m.addFormattedStatus("Wallets", "failed: "+msg.err.Error())
		return m, nil
	}
	m.addFormattedStatus("Wallets", msg.summary)
	if n := m.deps.Wallets.Len(); m.walletCursor >= n {
		m.walletCursor = max(n-1, 0)
	}
	if m.deps.Wallets.Len() == 0 && m.walletFocus {
		m.walletFocus = false
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) viewWalletInput() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Manage wallets") + "\n")
	s.WriteString(subtitleStyle.Render("Addresses are tracked read-only; no keys are stored.") + "\n")
	s.WriteString(inputFieldStyle.Render(m.input.View()) + "\n\n")

	switch {
	case m.inputErr != "":
		s.WriteString(errorStyle.Render(m.inputErr) + "\n\n")
	case m.lookupBusy:
		s.WriteString(m.spin.View() + " " + helpStyle.Render("Saving...") + "\n\n")
	}

	tracked := m.deps.Wallets.Wallets()
	if len(tracked) == 0 {
		s.WriteString(placeholderStyle.Render("No wallets tracked") + "\n")
	}
	for i, w := range tracked {
		line := w.Address
		if w.Label != "" {
			line += "  " + helpStyle.Render(w.Label)
		}
		if m.walletFocus && i == m.walletCursor {
			s.WriteString("> " + selectedStyle.Render(w.Address))
			if w.Label != "" {
				s.WriteString("  " + helpStyle.Render(w.Label))
			}
			s.WriteString("\n")
			continue
		}
		s.WriteString("  " + choiceStyle.Render(line) + "\n")
	}

	if m.walletFocus {
		s.WriteString("\n" + helpStyle.Render("↑/↓ navigate · enter transactions · x remove · tab add · esc dashboard"))
	} else {
		s.WriteString("\n" + helpStyle.Render("enter add · tab wallet list · esc dashboard"))
	}
	return m.renderWithDynamicWidth(s.String())
}
