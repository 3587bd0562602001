package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/alexanderramin/derby/internal/domain"
	"github.com/alexanderramin/derby/internal/service"
)

// resolveSessionID expands a unique ID prefix, as printed by list, to the
// full session ID.
func resolveSessionID(ctx context.Context, app *App, prefix string) (string, error) {
	if _, err := app.Timer.Get(ctx, prefix); err == nil {
		return prefix, nil
	}

	sessions, err := app.Timer.ListRecent(ctx, service.SessionFilter{})
	if err != nil {
		return "", err
	}
	var matches []string
	for _, s := range sessions {
		if strings.HasPrefix(s.ID, prefix) {
			matches = append(matches, s.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no session matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%d sessions match %q, use a longer prefix", len(matches), prefix)
	}
}

// findActive returns the active session of project, or the most recently
// started active session when project is empty.
func findActive(ctx context.Context, app *App, project string) (*domain.Session, error) {
	active, err := app.Timer.Active(ctx)
	if err != nil {
		return nil, err
	}
	for i := len(active) - 1; i >= 0; i-- {
		if project == "" || active[i].ProjectName == project {
			return active[i], nil
		}
	}
	if project != "" {
		return nil, fmt.Errorf("project %q: %w", project, domain.ErrNotActive)
	}
	return nil, domain.ErrNotActive
}

// resolveActiveSession picks the session for pause and resume: an explicit
// --id, the named project's session, or the only session that wants the
// action.
func resolveActiveSession(ctx context.Context, app *App, args []string, id string, wants func(*domain.Session) bool, none error) (string, error) {
	if id != "" {
		return resolveSessionID(ctx, app, id)
	}
	if len(args) == 1 {
		s, err := findActive(ctx, app, args[0])
		if err != nil {
			return "", err
		}
		return s.ID, nil
	}

	active, err := app.Timer.Active(ctx)
	if err != nil {
		return "", err
	}
	var candidates []*domain.Session
	for _, s := range active {
		if wants(s) {
			candidates = append(candidates, s)
		}
	}
	switch len(candidates) {
	case 0:
		return "", none
	case 1:
		return candidates[0].ID, nil
	default:
		return "", fmt.Errorf("%d sessions qualify, name a project or pass --id", len(candidates))
	}
}
