package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusToggle(t *testing.T) {
	assert.Equal(t, StatusCompleted, StatusPending.Toggle())
	assert.Equal(t, StatusPending, StatusCompleted.Toggle())
	assert.Equal(t, StatusPending, StatusPending.Toggle().Toggle())
	assert.True(t, StatusPending.Valid())
	assert.False(t, Status("Archived").Valid())
}

func TestTaskLabels(t *testing.T) {
	task := Task{Status: StatusPending, DueDate: "2024-06-01"}
	assert.Equal(t, "Check", task.ActionLabel())
	assert.Equal(t, "Jun 1, 2024", task.DueLabel())

	task.Status = StatusCompleted
	task.DueDate = "next friday"
	assert.Equal(t, "Uncheck", task.ActionLabel())
	assert.Equal(t, "next friday", task.DueLabel())
}

func TestTaskJSONCarriesLabels(t *testing.T) {
	task := Task{ID: "t1", Title: "Laundry", DueDate: "2024-06-01", Status: StatusCompleted}

	raw, err := json.Marshal(task)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "t1", body["id"])
	assert.Equal(t, "Completed", body["status"])
	assert.Equal(t, "Uncheck", body["actionLabel"])
	assert.Equal(t, "Jun 1, 2024", body["dueLabel"])

	var back Task
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, task.Title, back.Title)
}

func TestFieldsValidate(t *testing.T) {
	assert.NoError(t, Fields{}.Validate())

	completed := StatusCompleted
	assert.NoError(t, Fields{Status: &completed}.Validate())

	bogus := Status("Archived")
	err := Fields{Status: &bogus}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestFieldsApply(t *testing.T) {
	assert.True(t, Fields{}.Empty())

	title := "new"
	checked := true
	f := Fields{Title: &title, IsChecked: &checked}
	assert.False(t, f.Empty())

	task := Task{Title: "old", Description: "keep", Status: StatusPending}
	f.Apply(&task)
	assert.Equal(t, Task{Title: "new", Description: "keep", Status: StatusPending, IsChecked: true}, task)
}

func TestDeleteReport(t *testing.T) {
	boom := errors.New("boom")
	report := DeleteReport{Results: []DeleteResult{{ID: "a"}, {ID: "b", Err: boom}, {ID: "c"}}}

	assert.Equal(t, []string{"a", "c"}, report.Deleted())
	assert.Equal(t, []DeleteResult{{ID: "b", Err: boom}}, report.Failed())
	assert.ErrorIs(t, report.Err(), boom)
	assert.ErrorContains(t, report.Err(), "delete b")

	assert.NoError(t, DeleteReport{}.Err())
}

func TestIsValidation(t *testing.T) {
	err := fmt.Errorf("submit: %w", &ValidationError{Field: "title", Message: "title required"})
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(errors.New("other")))
}
