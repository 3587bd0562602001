package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/derby/internal/db"
	"github.com/alexanderramin/derby/internal/domain"
	"github.com/google/uuid"
)

// SQLiteSessionRepo implements SessionRepo using a SQLite database.
type SQLiteSessionRepo struct {
	db db.DBTX
}

// NewSQLiteSessionRepo creates a new SQLiteSessionRepo.
func NewSQLiteSessionRepo(db db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: db}
}

const sessionColumns = `s.id, s.project_name, s.start_time, s.end_time, s.notes,
	s.is_paused, s.paused_seconds, s.created_at`

// pauseBatch bounds the IN list used when loading pauses.
const pauseBatch = 500

// Create inserts the session and any pauses it carries. An empty ID is assigned.
func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO sessions (id, project_name, start_time, end_time, notes, is_paused, paused_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.ID,
		s.ProjectName,
		formatTime(s.StartTime),
		nullableTimeToString(s.EndTime),
		s.Notes,
		boolToInt(s.IsPaused),
		s.PausedSeconds,
		formatTime(s.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}

	for i := range s.Pauses {
		p := &s.Pauses[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.SessionID = s.ID
		if err := r.insertPause(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Update writes the mutable columns of an existing session. Pauses are
// managed through AddPause and ClosePause.
func (r *SQLiteSessionRepo) Update(ctx context.Context, s *domain.Session) error {
	query := `UPDATE sessions SET project_name = ?, start_time = ?, end_time = ?, notes = ?,
		is_paused = ?, paused_seconds = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		s.ProjectName,
		formatTime(s.StartTime),
		nullableTimeToString(s.EndTime),
		s.Notes,
		boolToInt(s.IsPaused),
		s.PausedSeconds,
		s.ID,
	)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	return requireAffected(res, "session")
}

func (r *SQLiteSessionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return requireAffected(res, "session")
}

func (r *SQLiteSessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s WHERE s.id = ?`
	s, err := r.scanSession(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	if err := r.attachPauses(ctx, []*domain.Session{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// Query returns sessions overlapping the requested range, ordered by start
// time and then insertion order.
func (r *SQLiteSessionRepo) Query(ctx context.Context, q SessionQuery) ([]*domain.Session, error) {
	var (
		where []string
		args  []any
	)
	if q.Project != "" {
		where = append(where, "s.project_name = ?")
		args = append(args, q.Project)
	}
	if q.Start != nil {
		where = append(where, "(s.end_time IS NULL OR s.end_time > ?)")
		args = append(args, formatTime(*q.Start))
	}
	if q.End != nil {
		where = append(where, "s.start_time < ?")
		args = append(args, formatTime(*q.End))
	}
	if q.ClosedOnly {
		where = append(where, "s.end_time IS NOT NULL")
	}
	if q.Background != nil {
		where = append(where, "COALESCE(p.is_background, 0) = ?")
		args = append(args, boolToInt(*q.Background))
	}

	query := `SELECT ` + sessionColumns + ` FROM sessions s
		LEFT JOIN projects p ON p.name = s.project_name`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	if q.Newest {
		query += " ORDER BY s.start_time DESC, s.rowid DESC"
	} else {
		query += " ORDER BY s.start_time, s.rowid"
	}
	if q.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, q.Limit)
	}

	return r.querySessions(ctx, query, args...)
}

// GetActiveByProject returns the project's session without an end time.
func (r *SQLiteSessionRepo) GetActiveByProject(ctx context.Context, projectName string) (*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s
		WHERE s.project_name = ? AND s.end_time IS NULL
		ORDER BY s.start_time DESC LIMIT 1`
	s, err := r.scanSession(r.db.QueryRowContext(ctx, query, projectName))
	if err != nil {
		return nil, err
	}
	if err := r.attachPauses(ctx, []*domain.Session{s}); err != nil {
		return nil, err
	}
	return s, nil
}

// ListActive returns every running or paused session, oldest first.
func (r *SQLiteSessionRepo) ListActive(ctx context.Context) ([]*domain.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s
		WHERE s.end_time IS NULL ORDER BY s.start_time, s.rowid`
	return r.querySessions(ctx, query)
}

// RenameProject moves every session of oldName to newName.
func (r *SQLiteSessionRepo) RenameProject(ctx context.Context, oldName, newName string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET project_name = ? WHERE project_name = ?`, newName, oldName)
	if err != nil {
		return 0, fmt.Errorf("renaming sessions: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteSessionRepo) DeleteByProject(ctx context.Context, projectName string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE project_name = ?`, projectName)
	if err != nil {
		return 0, fmt.Errorf("deleting sessions by project: %w", err)
	}
	return res.RowsAffected()
}

// AddPause opens a pause interval on the session.
func (r *SQLiteSessionRepo) AddPause(ctx context.Context, sessionID string, pausedAt time.Time) (*domain.PauseInterval, error) {
	p := &domain.PauseInterval{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		PausedAt:  pausedAt,
	}
	if err := r.insertPause(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ClosePause sets the resume time on the session's open pause interval.
func (r *SQLiteSessionRepo) ClosePause(ctx context.Context, sessionID string, resumedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE session_pauses SET resumed_at = ? WHERE session_id = ? AND resumed_at IS NULL`,
		formatTime(resumedAt), sessionID,
	)
	if err != nil {
		return fmt.Errorf("closing pause: %w", err)
	}
	return requireAffected(res, "open pause")
}

func (r *SQLiteSessionRepo) insertPause(ctx context.Context, p *domain.PauseInterval) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO session_pauses (id, session_id, paused_at, resumed_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.SessionID, formatTime(p.PausedAt), nullableTimeToString(p.ResumedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting pause: %w", err)
	}
	return nil
}

// querySessions scans all rows, closes them, then loads pauses. The pool may
// hold a single connection, so the two reads must not overlap.
func (r *SQLiteSessionRepo) querySessions(ctx context.Context, query string, args ...any) ([]*domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	sessions, err := r.scanSessions(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}
	if err := r.attachPauses(ctx, sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *SQLiteSessionRepo) attachPauses(ctx context.Context, sessions []*domain.Session) error {
	byID := make(map[string]*domain.Session, len(sessions))
	ids := make([]any, 0, len(sessions))
	for _, s := range sessions {
		byID[s.ID] = s
		ids = append(ids, s.ID)
	}

	for start := 0; start < len(ids); start += pauseBatch {
		end := min(start+pauseBatch, len(ids))
		batch := ids[start:end]
		query := `SELECT id, session_id, paused_at, resumed_at FROM session_pauses
			WHERE session_id IN (` + placeholders(len(batch)) + `)
			ORDER BY paused_at, rowid`
		if err := r.loadPauses(ctx, query, batch, byID); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteSessionRepo) loadPauses(ctx context.Context, query string, args []any, byID map[string]*domain.Session) error {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("loading pauses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			p         domain.PauseInterval
			pausedAt  string
			resumedAt sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.SessionID, &pausedAt, &resumedAt); err != nil {
			return fmt.Errorf("scanning pause row: %w", err)
		}
		if p.PausedAt, err = parseTime(pausedAt); err != nil {
			return fmt.Errorf("parsing paused_at: %w", err)
		}
		p.ResumedAt = parseNullableTime(resumedAt)
		if s, ok := byID[p.SessionID]; ok {
			s.Pauses = append(s.Pauses, p)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating pauses: %w", err)
	}
	return nil
}

// scanSession scans a single session from a *sql.Row.
func (r *SQLiteSessionRepo) scanSession(row *sql.Row) (*domain.Session, error) {
	var raw sessionRow
	if err := row.Scan(raw.dest()...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("session: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning session: %w", err)
	}
	return raw.toDomain()
}

// scanSessions scans multiple sessions from *sql.Rows.
func (r *SQLiteSessionRepo) scanSessions(rows *sql.Rows) ([]*domain.Session, error) {
	var sessions []*domain.Session
	for rows.Next() {
		var raw sessionRow
		if err := rows.Scan(raw.dest()...); err != nil {
			return nil, fmt.Errorf("scanning session row: %w", err)
		}
		s, err := raw.toDomain()
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}
	return sessions, nil
}

type sessionRow struct {
	s         domain.Session
	startTime string
	endTime   sql.NullString
	isPaused  int
	createdAt string
}

func (r *sessionRow) dest() []any {
	return []any{
		&r.s.ID, &r.s.ProjectName, &r.startTime, &r.endTime, &r.s.Notes,
		&r.isPaused, &r.s.PausedSeconds, &r.createdAt,
	}
}

func (r *sessionRow) toDomain() (*domain.Session, error) {
	s := r.s
	var err error
	if s.StartTime, err = parseTime(r.startTime); err != nil {
		return nil, fmt.Errorf("parsing start_time: %w", err)
	}
	if s.CreatedAt, err = parseTime(r.createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	s.EndTime = parseNullableTime(r.endTime)
	s.IsPaused = intToBool(r.isPaused)
	return &s, nil
}
