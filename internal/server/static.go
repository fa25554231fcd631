package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// mountStatic serves the web task list bundle when its directory exists. Unknown
// non-API paths fall back to index.html so client side routes keep working.
func (s *Server) mountStatic() {
	if s.staticDir == "" {
		s.logger.Info("no static directory configured, serving API only")
		return
	}
	if !isDir(s.staticDir) {
		s.logger.Warn("static directory missing, serving API only", "path", s.staticDir)
		return
	}

	index := filepath.Join(s.staticDir, "index.html")
	if isFile(index) {
		s.engine.GET("/", func(c *gin.Context) { c.File(index) })
		s.engine.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				c.JSON(http.StatusNotFound, gin.H{"error": "endpoint not found"})
				return
			}
			c.File(index)
		})
	} else {
		s.logger.Warn("index.html not found", "path", index)
	}

	if assets := filepath.Join(s.staticDir, "assets"); isDir(assets) {
		s.engine.StaticFS("/assets", gin.Dir(assets, false))
	}
	if favicon := filepath.Join(s.staticDir, "favicon.ico"); isFile(favicon) {
		s.engine.StaticFile("/favicon.ico", favicon)
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
