// Package termview renders the calendar, follow-up and drawer views for the
// terminal.
package termview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// cellWidth fits "31 •99+" plus a gap.
const cellWidth = 8

// Styles used by every view.
var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Bold(true)
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	emptyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	todayStyle    = lipgloss.NewStyle().Underline(true).Bold(true)
	weekendStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	countStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	overflowStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	alertStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	unreadStyle   = lipgloss.NewStyle().Bold(true)
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	cellStyle     = lipgloss.NewStyle().Width(cellWidth)
	bodyStyle     = lipgloss.NewStyle().PaddingLeft(4)
)

// Title renders a section heading.
func Title(s string) string {
	return titleStyle.Render(s)
}

// Empty renders a placeholder line for a view with nothing in it.
func Empty(s string) string {
	return emptyStyle.Render(s)
}

// MonthCell is one in-month day of the grid.
type MonthCell struct {
	Day     int
	Count   int
	Today   bool
	Weekend bool
}

// Month renders a month grid. weekdays holds the seven column headings in
// display order; leading is the number of blank cells before day 1.
func Month(title string, weekdays []string, leading int, cells []MonthCell) string {
	lines := []string{titleStyle.Render(title)}

	heads := make([]string, 0, len(weekdays))
	for _, wd := range weekdays {
		heads = append(heads, cellStyle.Render(headerStyle.Render(wd)))
	}
	lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, heads...))

	row := make([]string, 0, 7)
	for i := 0; i < leading; i++ {
		row = append(row, cellStyle.Render(""))
	}
	for _, c := range cells {
		row = append(row, cellStyle.Render(monthCell(c)))
		if len(row) == 7 {
			lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = row[:0]
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, cellStyle.Render(""))
		}
		lines = append(lines, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func monthCell(c MonthCell) string {
	day := fmt.Sprintf("%2d", c.Day)
	switch {
	case c.Today:
		day = todayStyle.Render(day)
	case c.Weekend:
		day = weekendStyle.Render(day)
	}
	if c.Count == 0 {
		return day
	}
	return day + " " + countStyle.Render(countLabel(c.Count))
}

func countLabel(n int) string {
	if n > 99 {
		return "•99+"
	}
	return fmt.Sprintf("•%d", n)
}

// WeekDay is one day of the week strip.
type WeekDay struct {
	Label   string
	Today   bool
	Weekend bool
	// Meetings are the visible lines; Overflow counts the rest.
	Meetings  []string
	Overflow  int
	FollowUps int
}

// Week renders the week strip as one block per day.
func Week(days []WeekDay) string {
	blocks := make([]string, 0, len(days))
	for _, d := range days {
		label := d.Label
		switch {
		case d.Today:
			label = todayStyle.Render(label + " (today)")
		case d.Weekend:
			label = weekendStyle.Render(label)
		default:
			label = headerStyle.Render(label)
		}

		body := make([]string, 0, len(d.Meetings)+2)
		body = append(body, d.Meetings...)
		if d.Overflow > 0 {
			body = append(body, overflowStyle.Render(fmt.Sprintf("+%d more", d.Overflow)))
		}
		if d.FollowUps > 0 {
			body = append(body, countStyle.Render(fmt.Sprintf("%d follow-up(s) due", d.FollowUps)))
		}

		block := label
		if len(body) > 0 {
			block = lipgloss.JoinVertical(lipgloss.Left, label, bodyStyle.Render(strings.Join(body, "\n")))
		}
		blocks = append(blocks, block)
	}
	return lipgloss.JoinVertical(lipgloss.Left, blocks...)
}

// Table renders rows under headers. Rows flagged in alert are drawn in the
// alert color; rows flagged in strong are bold.
func Table(headers []string, rows [][]string, alert, strong []bool) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			switch {
			case row == table.HeaderRow:
				return base.Inherit(headerStyle)
			case row < len(alert) && alert[row]:
				return base.Inherit(alertStyle)
			case row < len(strong) && strong[row]:
				return base.Inherit(unreadStyle)
			}
			return base
		})
	return t.Render()
}
