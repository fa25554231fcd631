package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Status is the completion state of a task.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is one of the supported statuses.
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusCompleted
}

// Toggle flips Pending and Completed. Any value other than Pending toggles back
// to Pending.
func (s Status) Toggle() Status {
	if s == StatusPending {
		return StatusCompleted
	}
	return StatusPending
}

// Task is the single record kept in the tasks collection.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	DueDate     string    `json:"dueDate"`
	Status      Status    `json:"status"`
	IsChecked   bool      `json:"isChecked"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ActionLabel is the caption of the status toggle for this task.
func (t Task) ActionLabel() string {
	if t.Status == StatusPending {
		return "Check"
	}
	return "Uncheck"
}

// DueLabel renders the due date for display. The stored text is never changed.
func (t Task) DueLabel() string {
	d, err := time.Parse(time.DateOnly, t.DueDate)
	if err != nil {
		return t.DueDate
	}
	return d.Format("Jan 2, 2006")
}

// MarshalJSON adds the display captions next to the stored fields.
func (t Task) MarshalJSON() ([]byte, error) {
	type stored Task
	return json.Marshal(struct {
		stored
		ActionLabel string `json:"actionLabel"`
		DueLabel    string `json:"dueLabel"`
	}{stored(t), t.ActionLabel(), t.DueLabel()})
}

// Fields is a partial update; nil members are left untouched.
type Fields struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
	Status      *Status `json:"status,omitempty"`
	IsChecked   *bool   `json:"isChecked,omitempty"`
}

// Empty reports whether no field is set.
func (f Fields) Empty() bool {
	return f.Title == nil && f.Description == nil && f.DueDate == nil && f.Status == nil && f.IsChecked == nil
}

// Validate rejects a status outside Pending and Completed.
func (f Fields) Validate() error {
	if f.Status != nil && !f.Status.Valid() {
		return &ValidationError{Field: "status", Message: fmt.Sprintf("unknown task status %q", *f.Status)}
	}
	return nil
}

// Apply merges the set fields into t.
func (f Fields) Apply(t *Task) {
	if f.Title != nil {
		t.Title = *f.Title
	}
	if f.Description != nil {
		t.Description = *f.Description
	}
	if f.DueDate != nil {
		t.DueDate = *f.DueDate
	}
	if f.Status != nil {
		t.Status = *f.Status
	}
	if f.IsChecked != nil {
		t.IsChecked = *f.IsChecked
	}
}

// DeleteResult is the outcome of deleting one task during a bulk delete.
type DeleteResult struct {
	ID  string
	Err error
}

// DeleteReport collects the outcome of every delete issued by a bulk delete.
type DeleteReport struct {
	Results []DeleteResult
}

// Deleted returns the ids whose delete succeeded.
func (r DeleteReport) Deleted() []string {
	ids := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Err == nil {
			ids = append(ids, res.ID)
		}
	}
	return ids
}

// Failed returns the results whose delete failed.
func (r DeleteReport) Failed() []DeleteResult {
	var failed []DeleteResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins every per-item failure, or returns nil when all deletes succeeded.
func (r DeleteReport) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("delete %s: %w", res.ID, res.Err))
	}
	return errors.Join(errs...)
}

// ValidationError is returned when user input is rejected before reaching the store.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
