package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
)

// The MCP endpoint speaks a JSON-RPC-flavored dialect: tools/list and
// tools/call against the same registry the REST and chat surfaces use.
// Tool-level failures travel inside a successful result; only transport
// problems become error objects.

type mcpRequest struct {
	ID     any             `json:"id,omitempty"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params,omitempty"`
}

type mcpCallParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments,omitempty"`
}

type mcpToolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

type mcpContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type mcpCallResult struct {
	Content []mcpContentItem `json:"content"`
	IsError bool             `json:"isError,omitempty"`
}

type mcpError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type mcpResponse struct {
	ID     any       `json:"id,omitempty"`
	Result any       `json:"result,omitempty"`
	Error  *mcpError `json:"error,omitempty"`
}

const (
	mcpCodeParse         = -32700
	mcpCodeInvalidParams = -32602
	mcpCodeUnknownMethod = -32601
)

func (h *Handlers) MCP(w http.ResponseWriter, r *http.Request) {
	var req mcpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, mcpResponse{
			Error: &mcpError{Code: mcpCodeParse, Message: "request body is not valid JSON"},
		})
		return
	}

	switch req.Method {
	case "tools/list":
		tools := make([]mcpToolInfo, 0, len(h.Registry.Definitions()))
		for _, def := range h.Registry.Definitions() {
			tools = append(tools, mcpToolInfo{
				Name:        def.Name,
				Description: def.Description,
				InputSchema: def.Parameters,
			})
		}
		writeJSON(w, http.StatusOK, mcpResponse{ID: req.ID, Result: map[string]any{"tools": tools}})

	case "tools/call":
		var params mcpCallParams
		if len(req.Params) > 0 {
			if err := json.Unmarshal(req.Params, &params); err != nil {
				writeJSON(w, http.StatusBadRequest, mcpResponse{ID: req.ID,
					Error: &mcpError{Code: mcpCodeInvalidParams, Message: "invalid tools/call params"}})
				return
			}
		}
		params.Name = strings.TrimSpace(params.Name)
		if params.Name == "" {
			writeJSON(w, http.StatusBadRequest, mcpResponse{ID: req.ID,
				Error: &mcpError{Code: mcpCodeInvalidParams, Message: "tools/call params.name is required"}})
			return
		}

		env := h.Registry.Dispatch(r.Context(), params.Name, params.Arguments)
		text, err := json.Marshal(env)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, mcpResponse{ID: req.ID,
				Error: &mcpError{Code: mcpCodeInvalidParams, Message: "result serialization failed"}})
			return
		}
		writeJSON(w, http.StatusOK, mcpResponse{ID: req.ID, Result: mcpCallResult{
			Content: []mcpContentItem{{Type: "text", Text: string(text)}},
			IsError: !env.Success,
		}})

	default:
		writeJSON(w, http.StatusOK, mcpResponse{ID: req.ID,
			Error: &mcpError{Code: mcpCodeUnknownMethod, Message: "unknown method: " + req.Method}})
	}
}
