package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Store keeps the task collection in a single SQLite table.
type Store struct {
	db          *sql.DB
	logger      *slog.Logger
	deleteLimit int
	now         func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open initializes a new SQLite store and runs the required migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("empty database path")
	}

	if logger == nil {
		logger = logging.Discard()
	}

	if err := ensureDir(dbPath); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetConnMaxLifetime(0)

	s := &Store{db: conn, logger: logger, now: time.Now}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	logger.Debug("sqlite store ready", slog.String("path", dbPath))
	return s, nil
}

// SetDeleteLimit bounds how many deletes DeleteAll runs at once.
func (s *Store) SetDeleteLimit(limit int) {
	s.deleteLimit = limit
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	if dbPath == ":memory:" {
		return nil
	}
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
            id TEXT PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NOT NULL DEFAULT '',
            due_date TEXT NOT NULL DEFAULT '',
            status TEXT NOT NULL DEFAULT 'Pending',
            is_checked BOOLEAN NOT NULL DEFAULT 0,
            created_at DATETIME NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_created ON tasks(created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Create inserts a new pending task.
func (s *Store) Create(ctx context.Context, title, description, dueDate string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx, `INSERT INTO tasks(id, title, description, due_date, status, is_checked, created_at) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		id, title, description, dueDate, string(models.StatusPending), false, s.now().UTC())
	if err != nil {
		return "", storage.Wrap("insert task", "", err)
	}
	return id, nil
}

// ListAll returns every task ordered by creation time.
func (s *Store) ListAll(ctx context.Context) ([]models.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, description, due_date, status, is_checked, created_at
        FROM tasks ORDER BY created_at ASC, rowid ASC`)
	if err != nil {
		return nil, storage.Wrap("list tasks", "", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			t      models.Task
			status string
		)
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.DueDate, &status, &t.IsChecked, &t.CreatedAt); err != nil {
			return nil, storage.Wrap("scan task", "", err)
		}
		t.Status = models.Status(status)
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storage.Wrap("list tasks", "", err)
	}
	return tasks, nil
}

// UpdateFields writes only the columns present in fields.
func (s *Store) UpdateFields(ctx context.Context, id string, fields models.Fields) error {
	if fields.Empty() {
		return nil
	}
	if err := fields.Validate(); err != nil {
		return storage.Wrap("update task", id, err)
	}

	var (
		sets []string
		args []any
	)
	if fields.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *fields.Title)
	}
	if fields.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *fields.Description)
	}
	if fields.DueDate != nil {
		sets = append(sets, "due_date = ?")
		args = append(args, *fields.DueDate)
	}
	if fields.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, string(*fields.Status))
	}
	if fields.IsChecked != nil {
		sets = append(sets, "is_checked = ?")
		args = append(args, *fields.IsChecked)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return storage.Wrap("update task", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Wrap("update task", id, err)
	}
	if affected == 0 {
		return storage.Wrap("update task", id, storage.ErrNotFound)
	}
	return nil
}

// DeleteOne removes a task by id.
func (s *Store) DeleteOne(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return storage.Wrap("delete task", id, err)
	}
	return nil
}

// DeleteAll lists the table and deletes each row on its own.
func (s *Store) DeleteAll(ctx context.Context) (models.DeleteReport, error) {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return models.DeleteReport{}, err
	}
	report := storage.DeleteEach(ctx, storage.IDs(tasks), s.deleteLimit, s.DeleteOne)
	if failed := report.Failed(); len(failed) > 0 {
		s.logger.Warn("bulk delete incomplete", slog.Int("failed", len(failed)), slog.Int("total", len(report.Results)))
	}
	return report, nil
}
