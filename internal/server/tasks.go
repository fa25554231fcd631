package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

type deleteFailure struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// handleListTasks refreshes and returns the task list.
func (s *Server) handleListTasks(c *gin.Context) {
	if err := s.ctrl.Refresh(c.Request.Context()); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	state := s.ctrl.Snapshot()
	respondSuccess(c, http.StatusOK, gin.H{"tasks": state.Tasks, "count": state.Count})
}

// lookupTask resolves the :id parameter against the current list.
func (s *Server) lookupTask(c *gin.Context) (models.Task, bool) {
	id := c.Param("id")
	task, ok := s.ctrl.Task(id)
	if !ok {
		s.respondError(c, http.StatusNotFound, storage.Wrap("find task", id, storage.ErrNotFound))
		return models.Task{}, false
	}
	return task, true
}

// handleBeginEdit loads a task into the form.
func (s *Server) handleBeginEdit(c *gin.Context) {
	task, ok := s.lookupTask(c)
	if !ok {
		return
	}
	s.ctrl.BeginEdit(task)
	respondSuccess(c, http.StatusOK, s.ctrl.Snapshot())
}

// handleToggleStatus flips a task between Pending and Completed.
func (s *Server) handleToggleStatus(c *gin.Context) {
	task, ok := s.lookupTask(c)
	if !ok {
		return
	}
	if err := s.ctrl.ToggleStatus(c.Request.Context(), task.ID, task.Status); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	s.respondTask(c, task.ID)
}

// handleToggleChecked flips the checked flag of a task.
func (s *Server) handleToggleChecked(c *gin.Context) {
	task, ok := s.lookupTask(c)
	if !ok {
		return
	}
	if err := s.ctrl.ToggleChecked(c.Request.Context(), task.ID, task.IsChecked); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	s.respondTask(c, task.ID)
}

// respondTask writes the refreshed task, or 204 when it vanished meanwhile.
func (s *Server) respondTask(c *gin.Context, id string) {
	task, ok := s.ctrl.Task(id)
	if !ok {
		respondSuccess(c, http.StatusNoContent, nil)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"task": task})
}

// handleDeleteTask removes a task completely.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.ctrl.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"status": "deleted"})
}

// handleDeleteAll removes every task and reports the outcome per id.
func (s *Server) handleDeleteAll(c *gin.Context) {
	report, err := s.ctrl.RemoveAll(c.Request.Context())
	if err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}

	failures := make([]deleteFailure, 0)
	for _, f := range report.Failed() {
		failures = append(failures, deleteFailure{ID: f.ID, Error: f.Err.Error()})
	}

	status := http.StatusOK
	if len(failures) > 0 {
		status = http.StatusMultiStatus
		s.logger.Warn("delete all incomplete", "failed", len(failures), "total", len(report.Results))
	}
	respondSuccess(c, status, gin.H{
		"deleted": report.Deleted(),
		"failed":  failures,
		"message": fmt.Sprintf("%d of %d tasks deleted", len(report.Deleted()), len(report.Results)),
	})
}
