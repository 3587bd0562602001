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

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

const projectColumns = `id, name, priority, is_background, created_at`

// Create inserts the project and its tags. An empty ID is assigned.
func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	priority := p.Priority
	if p.IsBackground {
		priority = domain.BackgroundPriority
	}

	query := `INSERT INTO projects (id, name, priority, is_background, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Name,
		priority,
		boolToInt(p.IsBackground),
		formatTime(p.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", p.Name, domain.ErrDuplicateProject)
		}
		return fmt.Errorf("inserting project: %w", err)
	}

	for _, tag := range p.Tags {
		if err := r.AddTag(ctx, p.Name, tag); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE name = ?`
	p, err := r.scanProject(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, err
	}
	tags, err := r.tagsByProject(ctx, []string{p.ID})
	if err != nil {
		return nil, err
	}
	p.Tags = tags[p.ID]
	return p, nil
}

// List returns projects in creation order.
func (r *SQLiteProjectRepo) List(ctx context.Context, filter ProjectFilter) ([]*domain.Project, error) {
	var (
		where []string
		args  []any
	)
	if filter.Background != nil {
		where = append(where, "p.is_background = ?")
		args = append(args, boolToInt(*filter.Background))
	}
	if filter.Tag != "" {
		where = append(where, `EXISTS (SELECT 1 FROM project_tags pt JOIN tags t ON t.id = pt.tag_id
			WHERE pt.project_id = p.id AND t.name = ?)`)
		args = append(args, filter.Tag)
	}

	query := `SELECT p.id, p.name, p.priority, p.is_background, p.created_at FROM projects p`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at, p.rowid"

	projects, err := r.queryProjects(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(projects))
	for i, p := range projects {
		ids[i] = p.ID
	}
	tags, err := r.tagsByProject(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, p := range projects {
		p.Tags = tags[p.ID]
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) Rename(ctx context.Context, oldName, newName string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET name = ? WHERE name = ?`, newName, oldName)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("project %q: %w", newName, domain.ErrDuplicateProject)
		}
		return fmt.Errorf("renaming project: %w", err)
	}
	return requireAffected(res, "project")
}

func (r *SQLiteProjectRepo) UpdatePriority(ctx context.Context, name string, priority int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE projects SET priority = ? WHERE name = ? AND is_background = 0`, priority, name)
	if err != nil {
		return fmt.Errorf("updating project priority: %w", err)
	}
	return requireAffected(res, "project")
}

// Delete removes the project and its tag links. Sessions are left alone.
func (r *SQLiteProjectRepo) Delete(ctx context.Context, name string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res, "project")
}

// AddTag links tag to the project, creating the tag on first use. Tag names
// match case-insensitively.
func (r *SQLiteProjectRepo) AddTag(ctx context.Context, projectName, tag string) error {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return fmt.Errorf("tag name is required")
	}

	projectID, isBackground, err := r.lookupID(ctx, projectName)
	if err != nil {
		return err
	}
	if isBackground {
		return fmt.Errorf("tagging %q: %w", projectName, domain.ErrBackgroundTask)
	}

	now := formatTime(time.Now())
	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO tags (id, name, created_at) VALUES (?, ?, ?) ON CONFLICT(name) DO NOTHING`,
		uuid.New().String(), tag, now,
	); err != nil {
		return fmt.Errorf("inserting tag: %w", err)
	}

	var tagID string
	if err := r.db.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, tag).Scan(&tagID); err != nil {
		return fmt.Errorf("loading tag %q: %w", tag, err)
	}

	if _, err := r.db.ExecContext(ctx,
		`INSERT INTO project_tags (project_id, tag_id, created_at) VALUES (?, ?, ?)
		 ON CONFLICT(project_id, tag_id) DO NOTHING`,
		projectID, tagID, now,
	); err != nil {
		return fmt.Errorf("linking tag: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) RemoveTag(ctx context.Context, projectName, tag string) error {
	projectID, _, err := r.lookupID(ctx, projectName)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM project_tags WHERE project_id = ?
		 AND tag_id IN (SELECT id FROM tags WHERE name = ?)`,
		projectID, tag,
	)
	if err != nil {
		return fmt.Errorf("unlinking tag: %w", err)
	}
	return requireAffected(res, "tag")
}

// ListTags returns every tag with the number of projects carrying it.
func (r *SQLiteProjectRepo) ListTags(ctx context.Context) ([]domain.Tag, error) {
	query := `SELECT t.id, t.name, t.created_at, COUNT(pt.project_id)
		FROM tags t LEFT JOIN project_tags pt ON pt.tag_id = t.id
		GROUP BY t.id ORDER BY t.name COLLATE NOCASE`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	defer rows.Close()

	var tags []domain.Tag
	for rows.Next() {
		var (
			t         domain.Tag
			createdAt string
		)
		if err := rows.Scan(&t.ID, &t.Name, &createdAt, &t.ProjectCount); err != nil {
			return nil, fmt.Errorf("scanning tag row: %w", err)
		}
		if t.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, fmt.Errorf("parsing tag created_at: %w", err)
		}
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}
	return tags, nil
}

func (r *SQLiteProjectRepo) lookupID(ctx context.Context, name string) (string, bool, error) {
	var (
		id         string
		background int
	)
	err := r.db.QueryRowContext(ctx, `SELECT id, is_background FROM projects WHERE name = ?`, name).Scan(&id, &background)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, fmt.Errorf("project %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return "", false, fmt.Errorf("looking up project: %w", err)
	}
	return id, intToBool(background), nil
}

// tagsByProject loads tag names for the given project IDs, sorted
// case-insensitively. Callers must have closed any open rows first.
func (r *SQLiteProjectRepo) tagsByProject(ctx context.Context, ids []string) (map[string][]string, error) {
	out := make(map[string][]string, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := `SELECT pt.project_id, t.name FROM project_tags pt
		JOIN tags t ON t.id = pt.tag_id
		WHERE pt.project_id IN (` + placeholders(len(ids)) + `)
		ORDER BY t.name COLLATE NOCASE`
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("loading project tags: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var projectID, name string
		if err := rows.Scan(&projectID, &name); err != nil {
			return nil, fmt.Errorf("scanning project tag: %w", err)
		}
		out[projectID] = append(out[projectID], name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project tags: %w", err)
	}
	return out, nil
}

func (r *SQLiteProjectRepo) queryProjects(ctx context.Context, query string, args ...any) ([]*domain.Project, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := r.scanProjectFromRows(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// scanProject scans a single project from a *sql.Row.
func (r *SQLiteProjectRepo) scanProject(row *sql.Row) (*domain.Project, error) {
	var (
		p          domain.Project
		background int
		createdAt  string
	)
	err := row.Scan(&p.ID, &p.Name, &p.Priority, &background, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return populateProject(&p, background, createdAt)
}

func (r *SQLiteProjectRepo) scanProjectFromRows(rows *sql.Rows) (*domain.Project, error) {
	var (
		p          domain.Project
		background int
		createdAt  string
	)
	if err := rows.Scan(&p.ID, &p.Name, &p.Priority, &background, &createdAt); err != nil {
		return nil, fmt.Errorf("scanning project row: %w", err)
	}
	return populateProject(&p, background, createdAt)
}

func populateProject(p *domain.Project, background int, createdAt string) (*domain.Project, error) {
	p.IsBackground = intToBool(background)
	var err error
	p.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing project created_at: %w", err)
	}
	return p, nil
}
