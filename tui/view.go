package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// View implements tea.Model
func (m Model) View() string {
	switch m.state {
	case StateDashboard:
		return m.viewDashboard()
	case StateNames, StateTransactions, StateAddresses:
		return m.viewListing()
	case StateNameCheck:
		return m.viewNameCheck()
	case StateTransactionLookup:
		return m.viewTransactionLookup()
	case StateTransactionDetail:
		return m.viewTransactionDetail()
	case StateWalletInput:
		return m.viewWalletInput()
	case StateAddressInput:
		return m.viewAddressInput()
	case StateHelp:
		return m.viewHelp()
	case StateError:
		return m.viewError()
	}

	return ""
}

// renderWithDynamicWidth renders content with two-pane layout
func (m Model) renderWithDynamicWidth(content string) string {
	if m.width > 0 && m.height > 0 {
		if m.showRightPane && m.leftPaneWidth > 0 && m.rightPaneWidth > 0 {
			return m.renderTwoPaneLayout(content)
		}
		return m.renderSinglePaneLayout(content)
	}

	return boxStyle.Render(content)
}

// renderSinglePaneLayout renders content in single pane mode
func (m Model) renderSinglePaneLayout(content string) string {
	marginHorizontal := 1
	marginVertical := 1

	contentWidth := m.width - (marginHorizontal * 2) - 2 // 2 for border
	contentHeight := m.height - (marginVertical * 2) - 2 // 2 for border

	if contentWidth < 30 {
		contentWidth = 30
	}
	if contentHeight < 10 {
		contentHeight = 10
	}

	mainStyle := lipgloss.NewStyle().
		Width(contentWidth).
		Height(contentHeight).
		Padding(1, 2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor).
		Align(lipgloss.Left)

	return lipgloss.NewStyle().
		Padding(marginVertical, marginHorizontal).
		Render(mainStyle.Render(content))
}

// renderTwoPaneLayout renders content with the activity pane on the right
func (m Model) renderTwoPaneLayout(content string) string {
	marginVertical := 1
	contentHeight := m.height - (marginVertical * 2) - 2 // 2 for border

	if contentHeight < 10 {
		contentHeight = 10
	}

	leftWidth := m.leftPaneWidth - 4 // border and padding
	rightWidth := m.rightPaneWidth - 4

	paneStyle := lipgloss.NewStyle().
		Height(contentHeight).
		Padding(1).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(secondaryColor)

	leftPane := paneStyle.Width(leftWidth).Render(content)
	rightPane := paneStyle.Width(rightWidth).BorderForeground(mutedColor).Render(m.renderActivity())

	combinedPanes := lipgloss.JoinHorizontal(lipgloss.Top, leftPane, " ", rightPane)

	return lipgloss.NewStyle().
		Padding(marginVertical, 1).
		Render(combinedPanes)
}
