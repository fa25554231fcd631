package storage

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"taskmanager/internal/models"
)

// CollectionName is the default name of the collection holding tasks.
const CollectionName = "tasks"

// ErrNotFound is wrapped by StoreError when an update targets an unknown id.
var ErrNotFound = errors.New("task not found")

// Store is the contract every task backend implements.
type Store interface {
	// Create persists a new pending, unchecked task and returns its id.
	Create(ctx context.Context, title, description, dueDate string) (string, error)
	// ListAll returns every task in store-defined order.
	ListAll(ctx context.Context) ([]models.Task, error)
	// UpdateFields merges the set fields into the task with id.
	UpdateFields(ctx context.Context, id string, fields models.Fields) error
	// DeleteOne removes the task with id. Unknown ids are not an error.
	DeleteOne(ctx context.Context, id string) error
	// DeleteAll deletes every task and reports the outcome per id. The error
	// is only set when the tasks could not be listed.
	DeleteAll(ctx context.Context) (models.DeleteReport, error)
	Close() error
}

// StoreError wraps a failure coming from a backend.
type StoreError struct {
	Op  string
	ID  string
	Err error
}

func (e *StoreError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Wrap returns err as a *StoreError, or nil when err is nil. Errors that are
// already StoreErrors are returned unchanged.
func Wrap(op, id string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, ID: id, Err: err}
}

// DeleteEach calls del for every id concurrently and waits for all of them.
// A failing delete never stops the others. limit <= 0 means unbounded.
func DeleteEach(ctx context.Context, ids []string, limit int, del func(ctx context.Context, id string) error) models.DeleteReport {
	results := make([]models.DeleteResult, len(ids))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			results[i] = models.DeleteResult{ID: id, Err: del(ctx, id)}
			return nil
		})
	}
	_ = g.Wait()

	return models.DeleteReport{Results: results}
}

// IDs returns the ids of tasks in order.
func IDs(tasks []models.Task) []string {
	ids := make([]string, len(tasks))
	for i, t := range tasks {
		ids[i] = t.ID
	}
	return ids
}
