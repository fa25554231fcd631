// Package memory keeps tasks in process memory. It backs tests and the
// "memory" backend.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Op names a store operation for fault injection.
type Op string

const (
	OpCreate Op = "create"
	OpList   Op = "list"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// FaultFunc decides whether an operation on id should fail.
type FaultFunc func(op Op, id string) error

// Store is a concurrency safe in-memory task collection.
type Store struct {
	mu    sync.Mutex
	tasks map[string]models.Task
	order []string
	fault FaultFunc
	now   func() time.Time

	deleteLimit int
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDeleteLimit bounds the delete-all fan-out.
func WithDeleteLimit(limit int) Option {
	return func(s *Store) { s.deleteLimit = limit }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		tasks: make(map[string]models.Task),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ storage.Store = (*Store)(nil)

// SetFault installs fn to inject failures. Pass nil to clear it.
func (s *Store) SetFault(fn FaultFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fault = fn
}

func (s *Store) check(op Op, id string) error {
	if s.fault == nil {
		return nil
	}
	return storage.Wrap(string(op), id, s.fault(op, id))
}

// Create stores a new pending task.
func (s *Store) Create(_ context.Context, title, description, dueDate string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(OpCreate, ""); err != nil {
		return "", err
	}

	id := uuid.NewString()
	s.tasks[id] = models.Task{
		ID:          id,
		Title:       title,
		Description: description,
		DueDate:     dueDate,
		Status:      models.StatusPending,
		IsChecked:   false,
		CreatedAt:   s.now(),
	}
	s.order = append(s.order, id)
	return id, nil
}

// ListAll returns the tasks in creation order.
func (s *Store) ListAll(_ context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(OpList, ""); err != nil {
		return nil, err
	}

	tasks := make([]models.Task, 0, len(s.order))
	for _, id := range s.order {
		tasks = append(tasks, s.tasks[id])
	}
	return tasks, nil
}

// UpdateFields merges fields into an existing task.
func (s *Store) UpdateFields(_ context.Context, id string, fields models.Fields) error {
	if fields.Empty() {
		return nil
	}
	if err := fields.Validate(); err != nil {
		return storage.Wrap("update task", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(OpUpdate, id); err != nil {
		return err
	}

	t, ok := s.tasks[id]
	if !ok {
		return storage.Wrap("update task", id, storage.ErrNotFound)
	}
	fields.Apply(&t)
	s.tasks[id] = t
	return nil
}

// DeleteOne removes a task if present.
func (s *Store) DeleteOne(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.check(OpDelete, id); err != nil {
		return err
	}

	if _, ok := s.tasks[id]; !ok {
		return nil
	}
	delete(s.tasks, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// DeleteAll removes every task, one delete per task.
func (s *Store) DeleteAll(ctx context.Context) (models.DeleteReport, error) {
	tasks, err := s.ListAll(ctx)
	if err != nil {
		return models.DeleteReport{}, err
	}
	return storage.DeleteEach(ctx, storage.IDs(tasks), s.deleteLimit, s.DeleteOne), nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}
