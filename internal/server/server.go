package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskmanager/internal/controller"
	"taskmanager/internal/models"
	"taskmanager/internal/storage"
)

// Server exposes the task list controller over HTTP.
type Server struct {
	engine    *gin.Engine
	ctrl      *controller.Controller
	logger    *slog.Logger
	staticDir string
}

// New constructs the HTTP server with routes and middleware configured.
func New(ctrl *controller.Controller, logger *slog.Logger, staticDir string) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	srv := &Server{
		engine:    router,
		ctrl:      ctrl,
		logger:    logger,
		staticDir: staticDir,
	}

	srv.registerRoutes()
	return srv
}

// Engine exposes the underlying Gin engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// registerRoutes wires all API and static handlers together.
func (s *Server) registerRoutes() {
	api := s.engine.Group("/api")
	{
		api.GET("/healthz", s.handleHealth)
		api.GET("/state", s.handleState)
		api.POST("/refresh", s.handleRefresh)

		form := api.Group("/form")
		{
			form.PUT("", s.handleSetForm)
			form.POST("/submit", s.handleSubmit)
		}

		tasks := api.Group("/tasks")
		{
			tasks.GET("", s.handleListTasks)
			tasks.DELETE("", s.handleDeleteAll)
			tasks.POST(":id/edit", s.handleBeginEdit)
			tasks.POST(":id/status", s.handleToggleStatus)
			tasks.POST(":id/checked", s.handleToggleChecked)
			tasks.DELETE(":id", s.handleDeleteTask)
		}
	}

	s.mountStatic()
}

// requestLogger logs one line per API request.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if c.FullPath() == "" {
			return
		}
		logger.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()))
	}
}

// handleHealth provides a basic readiness endpoint.
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// statusFor maps controller errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case models.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs the error and returns a JSON payload.
func (s *Server) respondError(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("path", c.FullPath()), slog.String("error", err.Error()))
	}
	body := gin.H{"error": err.Error()}
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		body["field"] = verr.Field
	}
	c.JSON(status, body)
}

// respondSuccess writes payload, or only the status when payload is nil.
func respondSuccess(c *gin.Context, status int, payload any) {
	if payload == nil {
		c.Status(status)
		return
	}
	c.JSON(status, payload)
}
