package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/controller"
)

type formRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	DueDate     string `json:"dueDate"`
}

// handleState returns the controller state without touching the store.
func (s *Server) handleState(c *gin.Context) {
	respondSuccess(c, http.StatusOK, s.ctrl.Snapshot())
}

// handleRefresh reloads the task list from the store.
func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.ctrl.Refresh(c.Request.Context()); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	respondSuccess(c, http.StatusOK, s.ctrl.Snapshot())
}

// handleSetForm replaces the input fields.
func (s *Server) handleSetForm(c *gin.Context) {
	var req formRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	s.ctrl.SetForm(controller.Form{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	})
	respondSuccess(c, http.StatusOK, s.ctrl.Snapshot())
}

// handleSubmit adds a task, or saves the one being edited.
func (s *Server) handleSubmit(c *gin.Context) {
	editing := s.ctrl.Snapshot().Editing
	if err := s.ctrl.Submit(c.Request.Context()); err != nil {
		s.respondError(c, statusFor(err), err)
		return
	}
	status := http.StatusCreated
	if editing {
		status = http.StatusOK
	}
	respondSuccess(c, status, s.ctrl.Snapshot())
}
