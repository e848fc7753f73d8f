package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// maxActivity bounds the activity log kept in memory
const maxActivity = 200

// renderActivity generates the content for the right pane with scrolling
func (m Model) renderActivity() string {
	var s strings.Builder

	s.WriteString(highlightStyle.Render("Activity") + "\n\n")

	if len(m.activity) == 0 {
		s.WriteString(helpStyle.Render("Nothing yet.\n\nWallet changes, lookups and\nlisting locks appear here."))
		return s.String()
	}

	visibleLines := m.activityLines()
	startIdx := m.activityScroll
	if startIdx >= len(m.activity) {
		startIdx = max(len(m.activity)-1, 0)
	}
	endIdx := min(startIdx+visibleLines, len(m.activity))

	s.WriteString(strings.Join(m.activity[startIdx:endIdx], "\n"))

	if len(m.activity) > visibleLines {
		s.WriteString("\n\n" + helpStyle.Render("PgUp/PgDn or mouse wheel to scroll"))
	}

	return s.String()
}

func (m Model) activityLines() int {
	// borders, padding and title
	return max(m.height-8, 5)
}

// scrollActivity moves the activity pane by delta lines
func (m *Model) scrollActivity(delta int) {
	maxScroll := max(len(m.activity)-m.activityLines(), 0)
	m.activityScroll = min(max(m.activityScroll+delta, 0), maxScroll)
}

// addActivity appends a line, keeping the newest lines in view
func (m *Model) addActivity(item string) {
	m.activity = append(m.activity, item)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
	m.activityScroll = max(len(m.activity)-m.activityLines(), 0)
}

func formatSessionAction(action string) string {
	return sessionStatusStyle.Render(time.Now().Format("15:04:05")+" ") + sessionActionStyle.Render(action)
}

// formatSessionStatus formats a "key: value" line, colouring the value
func formatSessionStatus(key, value string) string {
	return sessionStatusStyle.Render(key+": ") + determineValueStyle(key, value).Render(value)
}

// determineValueStyle picks a colour for a status value from its wording
func determineValueStyle(key, value string) lipgloss.Style {
	lowerKey := strings.ToLower(key)
	lowerValue := strings.ToLower(value)

	switch lowerKey {
	case "lock":
		if lowerValue == "engaged" {
			return sessionWarningValueStyle
		}
		return sessionSuccessValueStyle
	case "available":
		if lowerValue == "yes" {
			return sessionSuccessValueStyle
		}
		return sessionErrorValueStyle
	}

	for _, pattern := range []string{"error", "failed", "not found", "invalid", "rejected"} {
		if strings.Contains(lowerValue, pattern) {
			return sessionErrorValueStyle
		}
	}
	for _, pattern := range []string{"added", "removed", "found", "loaded"} {
		if strings.Contains(lowerValue, pattern) {
			return sessionSuccessValueStyle
		}
	}
	if strings.Contains(lowerValue, "rate limit") {
		return sessionWarningValueStyle
	}

	return sessionNeutralValueStyle
}

func (m *Model) addFormattedAction(action string) {
	m.addActivity(formatSessionAction(action))
}

func (m *Model) addFormattedStatus(key, value string) {
	m.addActivity("  " + formatSessionStatus(key, value))
}
