// ABOUTME: HTTP gateway exposing playback sessions over gin routes
// ABOUTME: The server owns no state beyond the shared session manager
package api

import (
	"github.com/gin-gonic/gin"

	"github.com/harper/paperplay/internal/playback"
)

// Server routes HTTP requests onto the session manager
type Server struct {
	manager *playback.Manager
}

// NewServer creates a Server over an initialized session manager
func NewServer(manager *playback.Manager) *Server {
	return &Server{manager: manager}
}

// Router builds the gin engine with all session routes mounted
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	api := r.Group("/api")
	{
		api.GET("/health", s.health)

		sessions := api.Group("/sessions")
		{
			sessions.GET("", s.listSessions)
			sessions.POST("", s.createSession)
			sessions.GET("/:id", s.getSession)
			sessions.POST("/:id/advance", s.advanceSession)
			sessions.POST("/:id/select", s.selectOption)
			sessions.GET("/:id/export", s.exportSession)
			sessions.DELETE("/:id", s.closeSession)
		}
	}

	return r
}
