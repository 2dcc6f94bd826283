package live

import (
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"

	"flowtap/internal/stream"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if state.Workflow != "" {
		line += " | Workflow: " + state.Workflow
	}
	if state.Status != "" {
		line += " | " + runStatusLabel(state.Status)
	}
	if !state.StartedAt.IsZero() {
		end := now
		if !state.FinishedAt.IsZero() {
			end = state.FinishedAt
		}
		line += " | Elapsed: " + formatDuration(end.Sub(state.StartedAt))
	}
	return stylize(line, noColor, headerColor(state.Status))
}

// renderSummary renders the block counts line.
func renderSummary(state State, noColor bool) string {
	counts := state.Counts
	line := "Executing: " + strconv.Itoa(counts.Executing) +
		" Completed: " + strconv.Itoa(counts.Completed) +
		" Failed: " + strconv.Itoa(counts.Failed)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// headerColor selects the header color for a run status.
func headerColor(status stream.RunStatus) lipgloss.Color {
	switch status {
	case stream.RunCompleted:
		return lipgloss.Color("42")
	case stream.RunError:
		return lipgloss.Color("196")
	case stream.RunAbandoned:
		return lipgloss.Color("220")
	default:
		return lipgloss.Color("33")
	}
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
