// Package render formats aggregation results for the terminal.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/i474232898/participant-map/internal/atlas"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF79C6"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6272A4"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BD93F9"))
)

const emptyMessage = "No participants yet."

// CityTable renders the per-city counts in their aggregation order. With
// styled false the output is plain ASCII, suitable for pipes and files.
func CityTable(counts []atlas.CityStat, styled bool) string {
	if len(counts) == 0 {
		if styled {
			return dimStyle.Render(emptyMessage) + "\n"
		}
		return emptyMessage + "\n"
	}

	rows := make([][]string, 0, len(counts))
	total := 0
	for i, c := range counts {
		total += c.Count
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.City,
			strconv.Itoa(c.Count),
			strings.Join(c.Names, ", "),
			positionLabel(c),
		})
	}

	t := table.New().
		Headers("#", "City", "Participants", "Names", "Position").
		Rows(rows...)

	title := fmt.Sprintf("%d participants in %d cities", total, len(counts))
	if styled {
		t = t.Border(lipgloss.RoundedBorder()).BorderStyle(borderStyle)
		title = titleStyle.Render(title)
	} else {
		t = t.Border(lipgloss.ASCIIBorder())
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}

func positionLabel(c atlas.CityStat) string {
	if c.Coordinates.IsPlaceholder() {
		return "needs coordinates"
	}
	return fmt.Sprintf("%.4f, %.4f", c.Coordinates.Lng(), c.Coordinates.Lat())
}
