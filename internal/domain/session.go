package domain

import "time"

// PauseInterval is one pause of an active session. ResumedAt is nil while the
// session is still paused.
type PauseInterval struct {
	ID        string
	SessionID string
	PausedAt  time.Time
	ResumedAt *time.Time
}

// Session is one tracked time interval for a project or background task.
type Session struct {
	ID          string
	ProjectName string
	StartTime   time.Time
	EndTime     *time.Time
	IsPaused    bool
	Notes       string
	CreatedAt   time.Time

	// Pauses is ordered by PausedAt and is the source of truth for paused time.
	Pauses []PauseInterval

	// PausedSeconds caches the closed pause intervals. It is refreshed on
	// resume and stop and never read by Duration.
	PausedSeconds int64
}

// IsActive reports whether the session has not been stopped.
func (s *Session) IsActive() bool {
	return s.EndTime == nil
}

// OpenPause returns the pause interval that has not been resumed, if any.
func (s *Session) OpenPause() *PauseInterval {
	for i := range s.Pauses {
		if s.Pauses[i].ResumedAt == nil {
			return &s.Pauses[i]
		}
	}
	return nil
}

// effectiveEnd returns the end used for duration math: EndTime for stopped
// sessions, now otherwise.
func (s *Session) effectiveEnd(now time.Time) time.Time {
	if s.EndTime != nil {
		return *s.EndTime
	}
	return now
}

// PausedDuration sums the paused time up to now. An interval that is still
// open counts until the session end (or now while active).
func (s *Session) PausedDuration(now time.Time) time.Duration {
	end := s.effectiveEnd(now)
	var total time.Duration
	for _, p := range s.Pauses {
		stop := end
		if p.ResumedAt != nil && p.ResumedAt.Before(end) {
			stop = *p.ResumedAt
		}
		if stop.After(p.PausedAt) {
			total += stop.Sub(p.PausedAt)
		}
	}
	return total
}

// Duration is the elapsed time from start to end (or now) minus paused time.
// It never goes negative, even when EndTime is set between two reads.
func (s *Session) Duration(now time.Time) time.Duration {
	end := s.effectiveEnd(now)
	d := end.Sub(s.StartTime) - s.PausedDuration(now)
	if d < 0 {
		return 0
	}
	return d
}

// DurationSeconds is Duration truncated to whole seconds.
func (s *Session) DurationSeconds(now time.Time) int64 {
	return int64(s.Duration(now) / time.Second)
}

// WorkingIntervals returns the running segments of the session: the span
// from start to end (or now) with every pause cut out.
func (s *Session) WorkingIntervals(now time.Time) []Interval {
	end := s.effectiveEnd(now)
	if !end.After(s.StartTime) {
		return nil
	}

	var out []Interval
	cursor := s.StartTime
	for _, p := range s.Pauses {
		if !p.PausedAt.Before(end) {
			break
		}
		if p.PausedAt.After(cursor) {
			out = append(out, Interval{Start: cursor, End: p.PausedAt})
		}
		resumed := end
		if p.ResumedAt != nil && p.ResumedAt.Before(end) {
			resumed = *p.ResumedAt
		}
		if resumed.After(cursor) {
			cursor = resumed
		}
	}
	if end.After(cursor) {
		out = append(out, Interval{Start: cursor, End: end})
	}
	return out
}

// Interval is a half-open time span [Start, End).
type Interval struct {
	Start time.Time
	End   time.Time
}

// Clip intersects the interval with [from, to). Nil bounds are unbounded.
func (iv Interval) Clip(from, to *time.Time) (Interval, bool) {
	if from != nil && iv.Start.Before(*from) {
		iv.Start = *from
	}
	if to != nil && iv.End.After(*to) {
		iv.End = *to
	}
	return iv, iv.End.After(iv.Start)
}
