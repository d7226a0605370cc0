package result

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0caf5")).
			Padding(0, 1)

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// Header returns the column titles, starting with the row index column.
func (t *Table) Header() []string {
	return append([]string{""}, t.Columns...)
}

// Records returns the table as string cells, one slice per row, laid out
// like Header.
func (t *Table) Records() [][]string {
	records := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		rec := make([]string, 0, len(t.Columns)+1)
		rec = append(rec, strconv.Itoa(r.Index))
		for _, col := range t.Columns {
			if col == FreqColumn {
				rec = append(rec, strconv.Itoa(r.Freq))
				continue
			}
			rec = append(rec, r.Values[col])
		}
		records[i] = rec
	}
	return records
}

// Render draws the table with a rounded border for terminal output.
func (t *Table) Render() string {
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(t.Header()...).
		Rows(t.Records()...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return tbl.Render()
}
