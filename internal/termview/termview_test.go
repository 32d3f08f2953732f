package termview

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func januaryCells(today, busy, count int) []MonthCell {
	cells := make([]MonthCell, 31)
	for i := range cells {
		cells[i] = MonthCell{Day: i + 1}
	}
	cells[today-1].Today = true
	cells[busy-1].Count = count
	return cells
}

var sundayFirst = []string{"Su", "Mo", "Tu", "We", "Th", "Fr", "Sa"}

func TestMonthKeepsColumnsAligned(t *testing.T) {
	// January 2026 starts on a Thursday: four blank cells in a Sunday-first grid.
	out := Month("January 2026", sundayFirst, 4, januaryCells(19, 19, 12))
	lines := strings.Split(out, "\n")
	if len(lines) != 2+5 {
		t.Fatalf("expected title, header and 5 weeks, got %d lines:\n%s", len(lines), out)
	}

	for i, line := range lines[1:] {
		if w := lipgloss.Width(line); w != 7*cellWidth {
			t.Fatalf("row %d: expected width %d, got %d: %q", i, 7*cellWidth, w, line)
		}
	}

	// Week of the 18th: the busy today cell must not push the 20th out of its column.
	row := lines[5]
	if !strings.HasPrefix(row, "18") {
		t.Fatalf("expected week row to start with 18, got %q", row)
	}
	idx := strings.Index(row, "20")
	if idx < 0 {
		t.Fatalf("expected 20 in %q", row)
	}
	if got := lipgloss.Width(row[:idx]); got != 2*cellWidth {
		t.Fatalf("expected 20 at column %d, got %d: %q", 2*cellWidth, got, row)
	}
	if !strings.Contains(row, "19 •12") {
		t.Fatalf("expected day and count to be separated, got %q", row)
	}
}

func TestMonthCapsLargeCounts(t *testing.T) {
	out := Month("January 2026", sundayFirst, 4, januaryCells(1, 31, 250))
	if !strings.Contains(out, "31 •99+") {
		t.Fatalf("expected capped count, got\n%s", out)
	}
	for _, line := range strings.Split(out, "\n")[1:] {
		if w := lipgloss.Width(line); w != 7*cellWidth {
			t.Fatalf("expected width %d, got %d: %q", 7*cellWidth, w, line)
		}
	}
}

func TestWeek(t *testing.T) {
	out := Week([]WeekDay{
		{Label: "Sun Jan 4", Weekend: true},
		{Label: "Mon Jan 5", Today: true, Meetings: []string{"09:00  Standup", "10:00  Review"}, Overflow: 2, FollowUps: 1},
	})
	for _, want := range []string{"Sun Jan 4", "Mon Jan 5 (today)", "    09:00  Standup", "    +2 more", "    1 follow-up(s) due"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
	if strings.Contains(out, "Sun Jan 4 (today)") {
		t.Fatalf("only today should be marked:\n%s", out)
	}
}

func TestTable(t *testing.T) {
	out := Table(
		[]string{"ID", "Person", "Due"},
		[][]string{{"a1", "Sarah Miller", "Overdue"}, {"b2", "Alex Chen", "3 days"}},
		[]bool{true, false}, nil,
	)
	for _, want := range []string{"Person", "Sarah Miller", "Overdue", "Alex Chen", "3 days"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in\n%s", want, out)
		}
	}
	lines := strings.Split(out, "\n")
	width := lipgloss.Width(lines[0])
	for _, line := range lines {
		if w := lipgloss.Width(line); w != width {
			t.Fatalf("expected every table line %d wide, got %d: %q", width, w, line)
		}
	}
}
