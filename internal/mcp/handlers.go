// ABOUTME: MCP tool handler implementations for playback sessions
// ABOUTME: Recoverable playback errors become tool-result errors, not protocol errors
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/harper/paperplay/internal/models"
	"github.com/harper/paperplay/internal/playback"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	manager *playback.Manager
}

// OpenDocument handles the open_document tool
func (h *Handlers) OpenDocument(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	document, err := request.RequireString("document")
	if err != nil {
		return mcp.NewToolResultError("document argument is required and must be a string"), nil
	}

	cfg := playback.Config{
		MaxChunks: request.GetInt("max_chunks", 0),
	}
	if mode := request.GetString("mode", ""); mode != "" {
		parsed, err := models.ParsePlayMode(mode)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg.Mode = parsed
	}
	if strategy := request.GetString("strategy", ""); strategy != "" {
		parsed, err := models.ParseAutoStrategy(strategy)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		cfg.Strategy = parsed
	}

	controller, err := h.manager.Open(ctx, document, cfg)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to open document: %v", err)), nil
	}

	return sessionResult(controller)
}

// CurrentTurn handles the current_turn tool
func (h *Handlers) CurrentTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controller, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}
	return sessionResult(controller)
}

// Advance handles the advance tool
func (h *Handlers) Advance(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controller, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	if _, err := controller.Advance(ctx); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return sessionResult(controller)
}

// SelectOption handles the select_option tool
func (h *Handlers) SelectOption(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controller, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	option := request.GetInt("option", -1)
	if option < 0 {
		return mcp.NewToolResultError("option argument is required and must be a non-negative number"), nil
	}

	selection, err := controller.Select(ctx, option)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	response := sessionPayload(controller)
	response["selection"] = selection
	return marshalResult(response)
}

// SessionStatus handles the session_status tool
func (h *Handlers) SessionStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	if sessionID == "" {
		return marshalResult(map[string]interface{}{
			"sessions": h.manager.List(),
		})
	}

	controller, ok := h.manager.Get(sessionID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no session %s", sessionID)), nil
	}
	return sessionResult(controller)
}

// ExportHistory handles the export_history tool
func (h *Handlers) ExportHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	controller, errResult := h.lookup(request)
	if errResult != nil {
		return errResult, nil
	}

	data := playback.BuildExport(controller.Session(), controller.Chunks())

	if path := request.GetString("path", ""); path != "" {
		if err := playback.WriteExport(data, path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("export failed: %v", err)), nil
		}
		return marshalResult(map[string]interface{}{
			"exported": path,
			"state":    data.State,
			"chunks":   len(data.Chunks),
		})
	}

	responseJSON, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}

// Shutdown closes every open session and waits for their prefetchers
func (h *Handlers) Shutdown() {
	log.Println("Closing open playback sessions...")
	h.manager.CloseAll()
	log.Println("All sessions closed")
}

// lookup resolves the session_id argument to a live controller
func (h *Handlers) lookup(request mcp.CallToolRequest) (*playback.Controller, *mcp.CallToolResult) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return nil, mcp.NewToolResultError("session_id argument is required and must be a string")
	}
	controller, ok := h.manager.Get(sessionID)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf("no session %s", sessionID))
	}
	return controller, nil
}

// sessionPayload builds the JSON body shared by the session tools
func sessionPayload(controller *playback.Controller) map[string]interface{} {
	snap := controller.Session()
	payload := map[string]interface{}{
		"session_id":    snap.ID,
		"document":      snap.Document,
		"mode":          string(snap.Mode),
		"strategy":      string(snap.Strategy),
		"state":         string(snap.State),
		"chunk_ordinal": snap.ChunkOrdinal,
		"turn_index":    snap.TurnIndex,
		"chunk_count":   len(controller.Chunks()),
		"turns_played":  len(snap.History),
	}
	if turn, err := controller.Current(); err == nil {
		payload["turn"] = turn
	}
	if chunk, err := controller.CurrentChunk(); err == nil && chunk.Title != "" {
		payload["chunk_title"] = chunk.Title
	}
	if err := controller.Err(); err != nil {
		payload["error"] = err.Error()
	}
	return payload
}

func sessionResult(controller *playback.Controller) (*mcp.CallToolResult, error) {
	return marshalResult(sessionPayload(controller))
}

func marshalResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
