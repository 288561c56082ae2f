package a2a

import (
	"encoding/json"
	"net/http"
)

// JSON-RPC error codes used by the RPC endpoint.
const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternalError  = -32000
	codeTaskNotFound   = -32001
)

// NewServerMux builds the HTTP mux for one agent: the RPC endpoint,
// the agent card, and a health check.
func NewServerMux(card AgentCard, handler *Handler) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/rpc", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		serveRPC(w, r, handler)
	})

	mux.HandleFunc("/.well-known/agent-card.json", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, card)
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return mux
}

func serveRPC(w http.ResponseWriter, r *http.Request, handler *Handler) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeRPCError(w, "", codeParseError, "invalid JSON-RPC request")
		return
	}

	switch req.Method {
	case "message/send":
		var params MessageSendParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeRPCError(w, req.ID, codeInvalidParams, "invalid message/send params")
			return
		}
		task, err := handler.OnMessageSend(r.Context(), params)
		if err != nil {
			writeRPCError(w, req.ID, codeInternalError, err.Error())
			return
		}
		writeRPCResult(w, req.ID, task)

	case "task/get":
		var params TaskIDParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeRPCError(w, req.ID, codeInvalidParams, "invalid task/get params")
			return
		}
		task, ok := handler.OnGetTask(params.ID)
		if !ok {
			writeRPCError(w, req.ID, codeTaskNotFound, "task not found")
			return
		}
		writeRPCResult(w, req.ID, task)

	case "task/cancel":
		var params TaskIDParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeRPCError(w, req.ID, codeInvalidParams, "invalid task/cancel params")
			return
		}
		task, ok := handler.OnCancelTask(params.ID)
		if !ok {
			writeRPCError(w, req.ID, codeTaskNotFound, "task not found")
			return
		}
		writeRPCResult(w, req.ID, task)

	default:
		writeRPCError(w, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func writeRPCResult(w http.ResponseWriter, id string, result any) {
	raw, err := json.Marshal(result)
	if err != nil {
		writeRPCError(w, id, codeInternalError, "encode result: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{JSONRPC: "2.0", ID: id, Result: raw})
}

func writeRPCError(w http.ResponseWriter, id string, code int, message string) {
	writeJSON(w, http.StatusOK, Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &Error{Code: code, Message: message},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
