package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/stretchr/testify/assert"
)

// ansiPattern matches ANSI escape sequences so assertions are
// terminal-independent.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestTable_AlignmentBreaksAndFooter(t *testing.T) {
	table := Table{
		Headers: []string{"A", "NUM"},
		Rows:    [][]string{{"x", "5"}, {"long", "10"}},
		Align:   []Align{AlignLeft, AlignRight},
		Breaks:  map[int]bool{0: true, 1: true},
		Footer:  []string{"sum", "15"},
	}
	got := strings.Split(stripANSI(table.Render()), "\n")

	assert.Equal(t, []string{
		"A     NUM",
		"────  ───",
		"x       5",
		"",
		"long   10",
		"────  ───",
		"sum    15",
		"",
	}, got)
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(nil, nil))
}

func TestHumanDate(t *testing.T) {
	now := time.Date(2026, 2, 7, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "Today", HumanDate(now.Add(-time.Hour), now))
	assert.Equal(t, "Yesterday", HumanDate(now.Add(-24*time.Hour), now))
	assert.Equal(t, "Sep 30, 2022", HumanDate(time.Date(2022, 9, 30, 0, 0, 0, 0, time.UTC), now))
	assert.Equal(t, "Today 09:30", SessionDate(time.Date(2026, 2, 7, 9, 30, 0, 0, time.UTC), now))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abcdefg...", Truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "héllo w...", Truncate("héllo wörld!", 10))
}

func TestStatePill(t *testing.T) {
	end := time.Now()
	assert.Contains(t, stripANSI(StatePill(&domain.Session{})), "Running")
	assert.Contains(t, stripANSI(StatePill(&domain.Session{IsPaused: true})), "Paused")
	assert.Contains(t, stripANSI(StatePill(&domain.Session{EndTime: &end})), "Stopped")
}

func TestRenderShare(t *testing.T) {
	assert.Equal(t, "█████░░░░░  50%", stripANSI(RenderShare(30, 60, 10)))
	assert.Equal(t, "░░░░░░░░░░   0%", stripANSI(RenderShare(5, 0, 10)))
	assert.Equal(t, "██████████ 100%", stripANSI(RenderShare(60, 60, 10)))
}

func TestRenderTree(t *testing.T) {
	got := stripANSI(RenderTree([]TreeItem{
		{Title: "work", Detail: "2 projects"},
		{Title: "alpha", Level: 1},
		{Title: "beta", Level: 1, IsLast: true},
	}))
	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "work"))
	assert.Contains(t, lines[0], "[ 2 projects ]")
	assert.True(t, strings.HasPrefix(lines[1], "├─ alpha"))
	assert.True(t, strings.HasPrefix(lines[2], "└─ beta"))
}

func TestPriorityBadge(t *testing.T) {
	assert.Equal(t, "P2", stripANSI(PriorityBadge(&domain.Project{Priority: 2})))
	assert.Equal(t, "bg", stripANSI(PriorityBadge(&domain.Project{IsBackground: true})))
}
