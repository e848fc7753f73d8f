package tui

import (
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"krist-explorer/models"
	"krist-explorer/ui"
	"krist-explorer/utils"
)

// nameCheckResult is the outcome of the last availability check
type nameCheckResult struct {
	name      string
	available bool
	err       error
}

func (m Model) handleNameCheck(msg nameCheckMsg) (Model, tea.Cmd) {
	m.lookupBusy = false
	m.nameCheck = &nameCheckResult{name: msg.name, available: msg.available, err: msg.err}

	m.addFormattedAction("Checked " + msg.name + utils.NameSuffix)
	switch {
	case msg.err != nil:
		m.addFormattedStatus("Available", ui.ResultFor(msg.err).Title)
	case msg.available:
		m.addFormattedStatus("Available", "yes")
	default:
		m.addFormattedStatus("Available", "no")
	}
	return m, nil
}

func (m Model) viewNameCheckResult() string {
	r := m.nameCheck
	full := r.name + utils.NameSuffix
	switch {
	case r.err != nil:
		return renderResult(ui.ResultFor(r.err))
	case r.available:
		return successStyle.Render("✓ " + full + " is available")
	}
	return warningStyle.Render("✗ " + full + " is already registered")
}

// openTransaction starts loading the transaction shown by a detail route
func (m Model) openTransaction(subject string) (Model, tea.Cmd) {
	m.transaction = nil
	id, err := utils.ParseTransactionID(subject)
	if err != nil {
		m.lookupErr = err
		return m, nil
	}
	m.lookupBusy = true
	return m, transactionCmd(m.ctx, m.deps.Client, id)
}

func (m Model) handleTransaction(msg transactionMsg) (Model, tea.Cmd) {
	if m.state != StateTransactionDetail || m.current.subject != strconv.Itoa(msg.id) {
		return m, nil
	}
	m.lookupBusy = false
	m.transaction, m.lookupErr = msg.tx, msg.err

	m.addFormattedAction("Transaction #" + strconv.Itoa(msg.id))
	if msg.err != nil {
		m.addFormattedStatus("Lookup", ui.TransactionResultFor(msg.err).Title)
	} else {
		m.addFormattedStatus("Lookup", "found")
	}
	return m, nil
}

// Transaction detail state handlers
func (m Model) updateTransactionDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tx := m.transaction
	switch {
	case key.Matches(msg, m.keys.Refresh):
		return m.openTransaction(m.current.subject)
	case tx == nil:
		return m, nil
	case key.Matches(msg, m.keys.Select):
		return m.navigate(route{state: StateTransactions, scope: scopeAddress, subject: tx.To})
	case msg.String() == "a" && tx.From != "":
		return m.navigate(route{state: StateTransactions, scope: scopeAddress, subject: tx.From})
	case key.Matches(msg, m.keys.Sent) && tx.SentName != "":
		return m.navigate(route{state: StateTransactions, scope: scopeNameSent, subject: tx.SentName})
	case msg.String() == "h" && tx.Name != "":
		return m.navigate(route{state: StateTransactions, scope: scopeNameHistory, subject: tx.Name})
	}
	return m, nil
}

func (m Model) viewTransactionDetail() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Transaction #"+m.current.subject) + "\n\n")

	switch {
	case m.lookupErr != nil:
		s.WriteString(renderResult(ui.TransactionResultFor(m.lookupErr)))
	case m.lookupBusy || m.transaction == nil:
		s.WriteString(m.spin.View() + " " + helpStyle.Render("Loading..."))
	default:
		s.WriteString(m.viewTransactionFields(*m.transaction))
	}

	s.WriteString("\n\n" + helpStyle.Render(m.transactionHelp()))
	return m.renderWithDynamicWidth(s.String())
}

func (m Model) viewTransactionFields(tx models.Transaction) string {
	var s strings.Builder
	field := func(label, value string) {
		if value == "" {
			return
		}
		s.WriteString(highlightStyle.Render(utils.PadRight(label, 12)) + " " + value + "\n")
	}

	field("Type", ui.TransactionTypeLabel(tx))
	field("Value", successStyle.Render(utils.FormatKrist(tx.Value)))
	field("From", tx.From)
	field("To", tx.To)
	field("Time", utils.FormatTime(tx.Time)+"  "+helpStyle.Render(utils.FormatAge(tx.Time, time.Now())))
	if tx.Name != "" {
		field("Name", tx.Name+utils.NameSuffix)
	}
	if tx.SentName != "" {
		sent := tx.SentName + utils.NameSuffix
		if tx.SentMetaname != "" {
			sent = tx.SentMetaname + "@" + sent
		}
		field("Sent to", sent)
	}
	field("Metadata", tx.Metadata)

	return strings.TrimRight(s.String(), "\n")
}

func (m Model) transactionHelp() string {
	parts := []string{"enter recipient", "r reload"}
	if tx := m.transaction; tx != nil {
		if tx.From != "" {
			parts = append(parts, "a sender")
		}
		if tx.SentName != "" {
			parts = append(parts, "t sent to name")
		}
		if tx.Name != "" {
			parts = append(parts, "h name history")
		}
	}
	return strings.Join(append(parts, "b back", "esc dashboard"), " · ")
}

// Help and error state handlers
func (m Model) updateError(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Select) {
		return m.back()
	}
	return m, nil
}

func (m Model) viewError() string {
	var s strings.Builder

	s.WriteString(errorTitleStyle.Render("Something went wrong") + "\n")
	if m.err != nil {
		s.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString("\n" + helpStyle.Render("enter or b back · esc dashboard · q quit"))

	return m.renderWithDynamicWidth(s.String())
}

func (m Model) viewHelp() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render("Keys") + "\n\n")
	s.WriteString(m.help.FullHelpView(m.keys.FullHelp()) + "\n\n")

	s.WriteString(highlightStyle.Render("Listings") + "\n")
	s.WriteString(helpStyle.Render(strings.Join([]string{
		"Narrow terminals show a condensed list instead of a table.",
		"L locks a table so it stops refreshing; changes made while locked load on unlock.",
		"Sorting or resizing pages returns to the first page.",
		"Every screen is kept in history; b and f move through it, even after a restart.",
	}, "\n")) + "\n\n")

	s.WriteString(helpStyle.Render("enter or b back · esc dashboard"))
	return m.renderWithDynamicWidth(s.String())
}

// renderResult draws a result message in its severity's colours
func renderResult(r ui.Result) string {
	style := errorStyle
	switch r.Severity {
	case ui.SeverityWarning:
		style = warningStyle
	case ui.SeverityInfo:
		style = highlightStyle
	}
	return style.Render(r.Title) + "\n" + helpStyle.Render(r.Message)
}
