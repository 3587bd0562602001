package formatter

import (
	"fmt"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
)

func FormatStarted(s *domain.Session, loc *time.Location) string {
	return fmt.Sprintf("%s  Started tracking %s at %s\n",
		StyleGreen.Render("▶"), Bold(s.ProjectName), ClockTime(s.StartTime, loc))
}

func FormatStopped(s *domain.Session, now time.Time) string {
	return fmt.Sprintf("%s  Stopped %s after %s\n",
		StyleRed.Render("■"), Bold(s.ProjectName), Bold(Duration(s.DurationSeconds(now))))
}

func FormatPaused(s *domain.Session, now time.Time) string {
	return fmt.Sprintf("%s  Paused %s at %s\n",
		StyleYellow.Render("‖"), Bold(s.ProjectName), Bold(Duration(s.DurationSeconds(now))))
}

func FormatResumed(s *domain.Session, now time.Time) string {
	return fmt.Sprintf("%s  Resumed %s %s\n",
		StyleGreen.Render("▶"), Bold(s.ProjectName), Dim(fmt.Sprintf("(%s so far)", Duration(s.DurationSeconds(now)))))
}

func FormatCancelled(s *domain.Session) string {
	return fmt.Sprintf("%s  Discarded the %s session\n", StyleRed.Render("✗"), Bold(s.ProjectName))
}

func FormatLogged(s *domain.Session, now time.Time) string {
	return fmt.Sprintf("%s  Logged %s for %s\n",
		StyleGreen.Render("✓"), Bold(Duration(s.DurationSeconds(now))), Bold(s.ProjectName))
}

// FormatActive renders the active sessions with their live durations.
func FormatActive(sessions []*domain.Session, now time.Time, loc *time.Location) string {
	if len(sessions) == 0 {
		return Dim("●  No active sessions") + "\n"
	}

	headers := []string{"PROJECT", "STATE", "STARTED", "DURATION"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		rows = append(rows, []string{
			Bold(s.ProjectName),
			StatePill(s),
			ClockTime(s.StartTime, loc),
			StyleGreen.Render(domain.FormatClock(s.DurationSeconds(now))),
		})
	}
	table := Table{
		Headers: headers,
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
	return RenderBox(fmt.Sprintf("Active sessions (%d)", len(sessions)), table.Render())
}

// FormatSessionList renders sessions newest first as returned.
func FormatSessionList(sessions []*domain.Session, now time.Time) string {
	if len(sessions) == 0 {
		return Dim("No sessions found.") + "\n"
	}

	headers := []string{"ID", "DATE", "PROJECT", "DURATION", "NOTES"}
	rows := make([][]string, 0, len(sessions))
	for _, s := range sessions {
		dur := Duration(s.DurationSeconds(now))
		if s.IsActive() {
			dur = StyleGreen.Render(dur + " ●")
		}
		rows = append(rows, []string{
			TruncID(s.ID),
			SessionDate(s.StartTime, now),
			Bold(s.ProjectName),
			dur,
			Dim(Truncate(s.Notes, 30)),
		})
	}
	table := Table{
		Headers: headers,
		Rows:    rows,
		Align:   []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft},
	}
	return RenderBox("Sessions", table.Render())
}
