package domain

import "errors"

var (
	// ErrAlreadyActive indicates the project already has a session without an end time.
	ErrAlreadyActive = errors.New("session already active")

	// ErrUnknownProject indicates the named project does not exist.
	ErrUnknownProject = errors.New("unknown project")

	// ErrNotActive indicates the session is stopped, missing, or already paused.
	ErrNotActive = errors.New("no active session")

	// ErrNotPaused indicates resume was called on a session that is not paused.
	ErrNotPaused = errors.New("session not paused")

	// ErrInvalidRange indicates a date range whose start is after its end.
	ErrInvalidRange = errors.New("invalid date range")

	ErrInvalidDuration = errors.New("invalid duration")
	ErrInvalidPriority = errors.New("invalid priority")

	// ErrBackgroundTask indicates an operation that only applies to regular projects.
	ErrBackgroundTask = errors.New("not allowed on background task")

	ErrDuplicateProject = errors.New("project already exists")
)
