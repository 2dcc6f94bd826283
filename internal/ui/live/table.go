package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the column layout before the first resize.
func defaultColumns() []table.Column {
	return columnsForWidth(120)
}

// columnsForWidth splits the available width between the fixed columns and
// the two text columns.
func columnsForWidth(width int) []table.Column {
	const fixed = 12 + 12 + 10
	text := max((width-fixed-8)/2, 20)
	return []table.Column{
		{Title: "Node", Width: 12},
		{Title: "Status", Width: 12},
		{Title: "Reasoning", Width: text},
		{Title: "Output", Width: text},
		{Title: "Elapsed", Width: 10},
	}
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			formatStepID(row),
			formatStatus(row),
			formatChannelText(row.Reasoning),
			formatChannelText(row.Output),
			formatRowDuration(row, now),
		})
	}
	return rows
}
