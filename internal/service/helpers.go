package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/repository"
)

// Clock returns the current time. Services default to time.Now.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// mapNotFound replaces repository.ErrNotFound with a domain error and leaves
// every other error untouched.
func mapNotFound(err error, target error, format string, args ...any) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf(format+": %w", append(args, target)...)
	}
	return err
}

func unknownProject(err error, name string) error {
	return mapNotFound(err, domain.ErrUnknownProject, "project %q", name)
}

// isTracked reports whether name has an active session, including an orphaned
// one left behind by a deleted project.
func isTracked(ctx context.Context, sessions repository.SessionRepo, name string) (bool, error) {
	_, err := sessions.GetActiveByProject(ctx, name)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, repository.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// closedPauseSeconds sums pause intervals that have been resumed.
func closedPauseSeconds(s *domain.Session) int64 {
	var total time.Duration
	for _, p := range s.Pauses {
		if p.ResumedAt != nil && p.ResumedAt.After(p.PausedAt) {
			total += p.ResumedAt.Sub(p.PausedAt)
		}
	}
	return int64(total / time.Second)
}
