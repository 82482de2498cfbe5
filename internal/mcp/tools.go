// ABOUTME: MCP tool definitions and registration for the playback server
// ABOUTME: Defines JSON schemas for the six session tools over the manager
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/paperplay/internal/playback"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, manager *playback.Manager) *Handlers {
	handlers := &Handlers{manager: manager}

	// 1. open_document - Start a playback session over a document
	server.AddTool(mcp.Tool{
		Name:        "open_document",
		Description: "Open a document and start a playback session. Segments the document, generates the first chunk's script, and returns the session with its opening turn.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"document": map[string]interface{}{
					"type":        "string",
					"description": "Path to the document to play (PDF or plain text)",
				},
				"mode": map[string]interface{}{
					"type":        "string",
					"description": "Play mode: interactive or auto (default: interactive)",
				},
				"strategy": map[string]interface{}{
					"type":        "string",
					"description": "Auto-mode selection strategy: first, correct, or last (default: first)",
				},
				"max_chunks": map[string]interface{}{
					"type":        "number",
					"description": "Limit playback to the first N chunks (default: all)",
				},
			},
			Required: []string{"document"},
		},
	}, handlers.OpenDocument)

	// 2. current_turn - Read the turn waiting to be consumed
	server.AddTool(mcp.Tool{
		Name:        "current_turn",
		Description: "Get the current turn of a session without consuming it, along with the session state.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to inspect",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.CurrentTurn)

	// 3. advance - Consume the current turn
	server.AddTool(mcp.Tool{
		Name:        "advance",
		Description: "Consume the current turn and move to the next one. Blocks at a chunk boundary until the next chunk's script is ready. Rejected while a quiz or choice is pending.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to advance",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.Advance)

	// 4. select_option - Resolve a pending quiz or choice
	server.AddTool(mcp.Tool{
		Name:        "select_option",
		Description: "Resolve the pending quiz or choice of a session by option index (0-based). Returns the recorded selection including the quiz verdict or choice effect.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session with a pending choice",
				},
				"option": map[string]interface{}{
					"type":        "number",
					"description": "0-based index of the chosen option",
				},
			},
			Required: []string{"session_id", "option"},
		},
	}, handlers.SelectOption)

	// 5. session_status - Inspect one session or list all of them
	server.AddTool(mcp.Tool{
		Name:        "session_status",
		Description: "Get the status of one session, or list all open sessions when no session_id is given.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to inspect (optional)",
				},
			},
		},
	}, handlers.SessionStatus)

	// 6. export_history - Serialize the play history
	server.AddTool(mcp.Tool{
		Name:        "export_history",
		Description: "Export a session's play history grouped by chunk. Returns the history as JSON, or writes it to a file when a path is given (format chosen by extension: .yaml, .json, .md).",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": map[string]interface{}{
					"type":        "string",
					"description": "Session to export",
				},
				"path": map[string]interface{}{
					"type":        "string",
					"description": "Output file path (optional; omit to get the history inline)",
				},
			},
			Required: []string{"session_id"},
		},
	}, handlers.ExportHistory)

	return handlers
}
