// ABOUTME: Manager is the registry of live playback sessions
// ABOUTME: Shared by the HTTP gateway and the MCP server
package playback

import (
	"context"
	"fmt"
	"sync"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/script"
	"github.com/harper/paperplay/internal/segment"
)

// Manager creates and tracks controllers by session ID. Sessions are
// independent; nothing mutable is shared between them.
type Manager struct {
	gateway *segment.Gateway
	engine  *script.Engine

	mu       sync.Mutex
	sessions map[string]*Controller
}

// NewManager creates an empty session registry
func NewManager(gateway *segment.Gateway, engine *script.Engine) *Manager {
	return &Manager{
		gateway:  gateway,
		engine:   engine,
		sessions: make(map[string]*Controller),
	}
}

// Open loads a document, starts a session over it, and registers the
// controller. The call blocks until the first chunk is playable.
func (m *Manager) Open(ctx context.Context, path string, cfg Config) (*Controller, error) {
	doc, err := models.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	return m.OpenDocument(ctx, doc, cfg)
}

// OpenDocument starts a session over an already-loaded document
func (m *Manager) OpenDocument(ctx context.Context, doc *models.Document, cfg Config) (*Controller, error) {
	controller := NewController(doc, m.gateway, m.engine, cfg)
	if err := controller.Start(ctx); err != nil {
		controller.Close()
		return nil, err
	}

	m.mu.Lock()
	m.sessions[controller.ID()] = controller
	m.mu.Unlock()
	return controller, nil
}

// Get returns the controller for a session ID
func (m *Manager) Get(id string) (*Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	controller, ok := m.sessions[id]
	return controller, ok
}

// List returns snapshots of every live session
func (m *Manager) List() []models.PlaybackSession {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.sessions))
	for _, c := range m.sessions {
		controllers = append(controllers, c)
	}
	m.mu.Unlock()

	sessions := make([]models.PlaybackSession, 0, len(controllers))
	for _, c := range controllers {
		sessions = append(sessions, c.Session())
	}
	return sessions
}

// Close stops a session's background work and removes it from the registry
func (m *Manager) Close(id string) error {
	m.mu.Lock()
	controller, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("no session %s", id)
	}
	controller.Close()
	return nil
}

// CloseAll tears down every live session
func (m *Manager) CloseAll() {
	m.mu.Lock()
	controllers := make([]*Controller, 0, len(m.sessions))
	for id, c := range m.sessions {
		controllers = append(controllers, c)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
