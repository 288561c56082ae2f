package tools

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// ToolRequest is one tool invocation.
type ToolRequest struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// ToolResponse carries a tool's result or its error.
type ToolResponse struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ToolInfo describes one available tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Catalog lists every tool the server exposes.
func Catalog() []ToolInfo {
	return []ToolInfo{
		{Name: "get_customer", Description: "Fetch a customer by id or email"},
		{Name: "list_customers", Description: "List customers, optionally filtered by status"},
		{Name: "update_customer", Description: "Update a customer's name, email, phone or status"},
		{Name: "create_ticket", Description: "Open a support ticket for a customer"},
		{Name: "get_customer_history", Description: "List a customer's tickets, newest first"},
	}
}

// Server exposes the store's tools over HTTP.
type Server struct {
	store *Store
}

// NewServerMux returns an http.ServeMux serving the tool endpoints.
func NewServerMux(store *Store) *http.ServeMux {
	s := &Server{store: store}

	mux := http.NewServeMux()
	mux.HandleFunc("/tools/call", s.handleCall)
	mux.HandleFunc("/tools/list", s.handleList)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": Catalog()})
}

func (s *Server) handleCall(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ToolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ToolResponse{Error: fmt.Sprintf("decode request: %v", err)})
		return
	}

	result, err := s.dispatch(req)
	if err != nil {
		writeJSON(w, http.StatusOK, ToolResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, ToolResponse{Result: result})
}

func (s *Server) dispatch(req ToolRequest) (any, error) {
	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}

	switch req.Name {
	case "get_customer":
		if email, ok := args["email"].(string); ok && email != "" {
			return s.store.FindCustomerByEmail(email)
		}
		id, err := intArg(args, "customer_id")
		if err != nil {
			return nil, err
		}
		return s.store.GetCustomer(id)

	case "list_customers":
		status, _ := args["status"].(string)
		limit := 0
		if _, ok := args["limit"]; ok {
			var err error
			if limit, err = intArg(args, "limit"); err != nil {
				return nil, err
			}
		}
		customers, err := s.store.ListCustomers(status, limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"customers": customers}, nil

	case "update_customer":
		id, err := intArg(args, "customer_id")
		if err != nil {
			return nil, err
		}
		fields, ok := args["fields"].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("fields must be an object")
		}
		return s.store.UpdateCustomer(id, fields)

	case "create_ticket":
		id, err := intArg(args, "customer_id")
		if err != nil {
			return nil, err
		}
		issue, _ := args["issue"].(string)
		priority, _ := args["priority"].(string)
		return s.store.CreateTicket(id, issue, priority)

	case "get_customer_history":
		id, err := intArg(args, "customer_id")
		if err != nil {
			return nil, err
		}
		tickets, err := s.store.GetCustomerHistory(id)
		if err != nil {
			return nil, err
		}
		return map[string]any{"tickets": tickets}, nil

	default:
		return nil, fmt.Errorf("unknown tool %q", req.Name)
	}
}

// intArg reads an integer argument that may arrive as a JSON number or
// a numeric string.
func intArg(args map[string]any, name string) (int, error) {
	switch v := args[name].(type) {
	case float64:
		return int(v), nil
	case int:
		return v, nil
	case string:
		var id int
		if _, err := fmt.Sscanf(v, "%d", &id); err == nil {
			return id, nil
		}
	}
	return 0, fmt.Errorf("%s must be an integer", name)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
