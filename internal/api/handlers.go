// ABOUTME: Request handlers and error-to-status mapping for the HTTP gateway
// ABOUTME: Recoverable playback errors map to 400, generation failures to 502
package api

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/playback"
	"github.com/harper/paperplay/internal/script"
	"github.com/harper/paperplay/internal/segment"
)

// createSessionRequest opens a document and starts playback
type createSessionRequest struct {
	Document  string `json:"document"`
	Mode      string `json:"mode"`
	Strategy  string `json:"strategy"`
	MaxChunks int    `json:"max_chunks"`
}

// selectRequest resolves a pending quiz or choice by option index (0-based)
type selectRequest struct {
	Option int `json:"option"`
}

// sessionView is the JSON shape shared by every session endpoint
type sessionView struct {
	ID           string            `json:"id"`
	Document     string            `json:"document"`
	Fingerprint  string            `json:"fingerprint"`
	Mode         string            `json:"mode"`
	Strategy     string            `json:"strategy"`
	State        string            `json:"state"`
	ChunkCount   int               `json:"chunk_count"`
	ChunkOrdinal int               `json:"chunk_ordinal"`
	ChunkTitle   string            `json:"chunk_title,omitempty"`
	TurnIndex    int               `json:"turn_index"`
	TurnsPlayed  int               `json:"turns_played"`
	Turn         *models.Turn      `json:"turn,omitempty"`
	Selection    *models.Selection `json:"selection,omitempty"`
	Error        string            `json:"error,omitempty"`
}

func newSessionView(controller *playback.Controller) sessionView {
	snap := controller.Session()
	view := sessionView{
		ID:           snap.ID,
		Document:     snap.Document,
		Fingerprint:  snap.Fingerprint,
		Mode:         string(snap.Mode),
		Strategy:     string(snap.Strategy),
		State:        string(snap.State),
		ChunkCount:   len(controller.Chunks()),
		ChunkOrdinal: snap.ChunkOrdinal,
		TurnIndex:    snap.TurnIndex,
		TurnsPlayed:  len(snap.History),
	}
	if turn, err := controller.Current(); err == nil {
		view.Turn = turn
	}
	if chunk, err := controller.CurrentChunk(); err == nil {
		view.ChunkTitle = chunk.Title
	}
	if err := controller.Err(); err != nil {
		view.Error = err.Error()
	}
	return view
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": len(s.manager.List()),
	})
}

func (s *Server) listSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sessions": s.manager.List()})
}

func (s *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Document == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "document path is required"})
		return
	}

	cfg := playback.Config{MaxChunks: req.MaxChunks}
	if req.Mode != "" {
		mode, err := models.ParsePlayMode(req.Mode)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.Mode = mode
	}
	if req.Strategy != "" {
		strategy, err := models.ParseAutoStrategy(req.Strategy)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		cfg.Strategy = strategy
	}

	controller, err := s.manager.Open(c.Request.Context(), req.Document, cfg)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newSessionView(controller))
}

func (s *Server) getSession(c *gin.Context) {
	controller, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, newSessionView(controller))
}

func (s *Server) advanceSession(c *gin.Context) {
	controller, ok := s.lookup(c)
	if !ok {
		return
	}
	if _, err := controller.Advance(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(controller))
}

func (s *Server) selectOption(c *gin.Context) {
	controller, ok := s.lookup(c)
	if !ok {
		return
	}

	var req selectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	selection, err := controller.Select(c.Request.Context(), req.Option)
	if err != nil {
		writeError(c, err)
		return
	}

	view := newSessionView(controller)
	view.Selection = selection
	c.JSON(http.StatusOK, view)
}

func (s *Server) exportSession(c *gin.Context) {
	controller, ok := s.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, playback.BuildExport(controller.Session(), controller.Chunks()))
}

func (s *Server) closeSession(c *gin.Context) {
	id := c.Param("id")
	if err := s.manager.Close(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"closed": id})
}

// lookup resolves the :id path param, answering 404 when absent
func (s *Server) lookup(c *gin.Context) (*playback.Controller, bool) {
	id := c.Param("id")
	controller, ok := s.manager.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("no session %s", id)})
		return nil, false
	}
	return controller, true
}

// writeError maps pipeline errors onto HTTP statuses: rejected operations
// and unreadable documents are the client's fault, generation failures are
// the backend's
func writeError(c *gin.Context, err error) {
	var playErr *playback.PlaybackError
	var genErr *script.GenerationError

	switch {
	case errors.As(err, &playErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": playErr.Error(),
			"state": string(playErr.State),
		})
	case errors.As(err, &genErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": genErr.Error()})
	case segment.IsFatal(err), errors.Is(err, fs.ErrNotExist):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
