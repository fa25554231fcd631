// Package controller holds the state behind the task list screen and turns
// user actions into store calls.
package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"taskmanager/internal/logging"
	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Form is the current content of the input fields.
type Form struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// State is a point in time copy of the controller state.
type State struct {
	Tasks     []models.Task `json:"tasks"`
	Count     int           `json:"count"`
	Loading   bool          `json:"loading"`
	Editing   bool          `json:"editing"`
	EditingID string        `json:"editingId,omitempty"`
	Form      Form          `json:"form"`
}

// Controller mediates between user actions and a storage.Store. Store calls are
// made without holding the state lock, so overlapping actions race and the
// last finished refresh wins.
type Controller struct {
	store  storage.Store
	logger *slog.Logger

	mu        sync.Mutex
	tasks     []models.Task
	inflight  int
	editing   bool
	editingID string
	form      Form
}

// New returns a controller with an empty task list.
func New(store storage.Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Controller{
		store:  store,
		logger: logger,
		tasks:  []models.Task{},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	tasks := make([]models.Task, len(c.tasks))
	copy(tasks, c.tasks)
	return State{
		Tasks:     tasks,
		Count:     len(tasks),
		Loading:   c.inflight > 0,
		Editing:   c.editing,
		EditingID: c.editingID,
		Form:      c.form,
	}
}

// Task looks up a task in the current snapshot.
func (c *Controller) Task(id string) (models.Task, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}

// SetForm replaces the input fields.
func (c *Controller) SetForm(f Form) {
	c.mu.Lock()
	c.form = f
	c.mu.Unlock()
}

// Form returns the input fields.
func (c *Controller) Form() Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// BeginEdit loads task into the form and switches to edit mode.
func (c *Controller) BeginEdit(task models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.editing = true
	c.editingID = task.ID
	c.form = Form{
		Title:       task.Title,
		Description: task.Description,
		DueDate:     task.DueDate,
	}
}

// Submit saves the form: an update of the edited task in edit mode, a new task
// otherwise. Form and edit mode are kept when the store call fails.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	form, editing, id := c.form, c.editing, c.editingID
	c.mu.Unlock()

	if editing {
		return c.saveEdit(ctx, id, form)
	}
	return c.create(ctx, form)
}

func (c *Controller) create(ctx context.Context, form Form) error {
	if strings.TrimSpace(form.Title) == "" {
		c.logger.Info("task title is empty, not adding task")
		return &models.ValidationError{Field: "title", Message: "Please enter a valid task title."}
	}
	if strings.TrimSpace(form.DueDate) == "" {
		return &models.ValidationError{Field: "dueDate", Message: "Please set a due date for the task."}
	}

	id, err := c.store.Create(ctx, form.Title, form.Description, form.DueDate)
	if err != nil {
		c.logger.Error("failed to add task", slog.String("error", err.Error()))
		return err
	}
	c.logger.Info("task added", slog.String("id", id), slog.String("title", form.Title), slog.String("due", form.DueDate))

	c.mu.Lock()
	c.form = Form{}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

func (c *Controller) saveEdit(ctx context.Context, id string, form Form) error {
	if strings.TrimSpace(form.Title) == "" {
		return &models.ValidationError{Field: "title", Message: "Please enter a valid task title."}
	}

	err := c.store.UpdateFields(ctx, id, models.Fields{
		Title:       &form.Title,
		Description: &form.Description,
		DueDate:     &form.DueDate,
	})
	if err != nil {
		c.logger.Error("failed to edit task", slog.String("id", id), slog.String("error", err.Error()))
		return err
	}

	c.mu.Lock()
	c.editing = false
	c.editingID = ""
	c.form = Form{}
	c.mu.Unlock()

	return c.Refresh(ctx)
}

// ToggleStatus flips the task between Pending and Completed.
func (c *Controller) ToggleStatus(ctx context.Context, id string, current models.Status) error {
	next := current.Toggle()
	if err := c.store.UpdateFields(ctx, id, models.Fields{Status: &next}); err != nil {
		c.logger.Error("failed to update task status", slog.String("id", id), slog.String("error", err.Error()))
		return err
	}
	return c.Refresh(ctx)
}

// ToggleChecked flips the checked flag of the task.
func (c *Controller) ToggleChecked(ctx context.Context, id string, current bool) error {
	next := !current
	if err := c.store.UpdateFields(ctx, id, models.Fields{IsChecked: &next}); err != nil {
		c.logger.Error("failed to toggle task check", slog.String("id", id), slog.String("error", err.Error()))
		return err
	}
	return c.Refresh(ctx)
}

// Remove deletes one task.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if err := c.store.DeleteOne(ctx, id); err != nil {
		c.logger.Error("failed to delete task", slog.String("id", id), slog.String("error", err.Error()))
		return err
	}
	return c.Refresh(ctx)
}

// RemoveAll deletes every task. The list is pruned locally from the report
// instead of being fetched again; tasks whose delete failed stay listed.
func (c *Controller) RemoveAll(ctx context.Context) (models.DeleteReport, error) {
	c.beginLoading()
	defer c.endLoading()

	report, err := c.store.DeleteAll(ctx)
	if err != nil {
		c.logger.Error("failed to delete all tasks", slog.String("error", err.Error()))
		return report, err
	}

	failed := report.Failed()

	c.mu.Lock()
	if len(failed) == 0 {
		c.tasks = []models.Task{}
	} else {
		c.tasks = prune(c.tasks, report.Deleted())
	}
	c.mu.Unlock()

	if len(failed) == 0 {
		c.logger.Info("all tasks deleted", slog.Int("count", len(report.Results)))
	}
	for _, f := range failed {
		c.logger.Error("failed to delete task", slog.String("id", f.ID), slog.String("error", f.Err.Error()))
	}
	return report, nil
}

func prune(tasks []models.Task, ids []string) []models.Task {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if _, ok := drop[t.ID]; !ok {
			kept = append(kept, t)
		}
	}
	return kept
}

// Refresh replaces the task list with the store contents. The list is left
// unchanged when the store fails.
func (c *Controller) Refresh(ctx context.Context) error {
	c.beginLoading()
	defer c.endLoading()

	tasks, err := c.store.ListAll(ctx)
	if err != nil {
		c.logger.Error("failed to fetch tasks", slog.String("error", err.Error()))
		return err
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	return nil
}

// beginLoading and endLoading bracket a store round trip. Loading stays set
// until the last overlapping call has finished.
func (c *Controller) beginLoading() {
	c.mu.Lock()
	c.inflight++
	c.mu.Unlock()
}

func (c *Controller) endLoading() {
	c.mu.Lock()
	c.inflight--
	c.mu.Unlock()
}
