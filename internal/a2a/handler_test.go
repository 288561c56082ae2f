package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func postRPC(t *testing.T, url, method string, params any) Response {
	t.Helper()
	rawParams, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("marshal params: %v", err)
	}
	body, err := json.Marshal(Request{JSONRPC: "2.0", ID: "test-1", Method: method, Params: rawParams})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	resp, err := http.Post(url+"/rpc", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return rpcResp
}

func TestHandler_MessageSend(t *testing.T) {
	handler := NewHandler("upper", func(_ context.Context, msg Message) (Message, error) {
		return NewTextMessage("echo: "+msg.Text(), RoleAgent), nil
	})
	server := httptest.NewServer(NewServerMux(AgentCard{Name: "Upper"}, handler))
	defer server.Close()

	rpcResp := postRPC(t, server.URL, "message/send", MessageSendParams{
		Message: NewTextMessage("hello", RoleUser),
	})

	if rpcResp.Error != nil {
		t.Fatalf("rpc error: %+v", rpcResp.Error)
	}

	var task Task
	if err := json.Unmarshal(rpcResp.Result, &task); err != nil {
		t.Fatalf("decode task: %v", err)
	}

	if task.Status.State != TaskCompleted {
		t.Errorf("Status.State = %q, want %q", task.Status.State, TaskCompleted)
	}
	if len(task.History) != 2 {
		t.Fatalf("len(History) = %d, want 2", len(task.History))
	}
	if got := task.Reply(); got != "echo: hello" {
		t.Errorf("Reply() = %q, want %q", got, "echo: hello")
	}
	if task.History[0].TaskID != task.ID {
		t.Errorf("inbound message TaskID = %q, want task id %q", task.History[0].TaskID, task.ID)
	}
}

func TestHandler_TaskGetAndCancel(t *testing.T) {
	handler := NewHandler("noop", func(_ context.Context, _ Message) (Message, error) {
		return NewTextMessage("done", RoleAgent), nil
	})
	server := httptest.NewServer(NewServerMux(AgentCard{Name: "Noop"}, handler))
	defer server.Close()

	sendResp := postRPC(t, server.URL, "message/send", MessageSendParams{
		Message: NewTextMessage("work", RoleUser),
	})
	var created Task
	if err := json.Unmarshal(sendResp.Result, &created); err != nil {
		t.Fatalf("decode created task: %v", err)
	}

	getResp := postRPC(t, server.URL, "task/get", TaskIDParams{ID: created.ID})
	if getResp.Error != nil {
		t.Fatalf("task/get error: %+v", getResp.Error)
	}

	cancelResp := postRPC(t, server.URL, "task/cancel", TaskIDParams{ID: created.ID})
	if cancelResp.Error != nil {
		t.Fatalf("task/cancel error: %+v", cancelResp.Error)
	}
	var canceled Task
	if err := json.Unmarshal(cancelResp.Result, &canceled); err != nil {
		t.Fatalf("decode canceled task: %v", err)
	}
	if canceled.Status.State != TaskCanceled {
		t.Errorf("Status.State = %q, want %q", canceled.Status.State, TaskCanceled)
	}

	missingResp := postRPC(t, server.URL, "task/get", TaskIDParams{ID: "nope"})
	if missingResp.Error == nil {
		t.Error("task/get for unknown id succeeded, want error")
	}
}

func TestHandler_SkillError(t *testing.T) {
	handler := NewHandler("broken", func(_ context.Context, _ Message) (Message, error) {
		return Message{}, fmt.Errorf("database unreachable")
	})
	server := httptest.NewServer(NewServerMux(AgentCard{Name: "Broken"}, handler))
	defer server.Close()

	rpcResp := postRPC(t, server.URL, "message/send", MessageSendParams{
		Message: NewTextMessage("hi", RoleUser),
	})

	if rpcResp.Error == nil {
		t.Fatal("rpc succeeded, want error")
	}
	if rpcResp.Error.Code != codeInternalError {
		t.Errorf("Error.Code = %d, want %d", rpcResp.Error.Code, codeInternalError)
	}
}

func TestServerMux_UnknownMethod(t *testing.T) {
	handler := NewHandler("noop", func(_ context.Context, _ Message) (Message, error) {
		return NewTextMessage("done", RoleAgent), nil
	})
	server := httptest.NewServer(NewServerMux(AgentCard{Name: "Noop"}, handler))
	defer server.Close()

	rpcResp := postRPC(t, server.URL, "message/stream", nil)
	if rpcResp.Error == nil || rpcResp.Error.Code != codeMethodNotFound {
		t.Errorf("got %+v, want method-not-found error", rpcResp.Error)
	}
}

func TestServerMux_AgentCardAndHealth(t *testing.T) {
	handler := NewHandler("noop", func(_ context.Context, _ Message) (Message, error) {
		return NewTextMessage("done", RoleAgent), nil
	})
	card := AgentCard{Name: "Router Agent", Version: "2.0.0"}
	server := httptest.NewServer(NewServerMux(card, handler))
	defer server.Close()

	resp, err := http.Get(server.URL + "/.well-known/agent-card.json")
	if err != nil {
		t.Fatalf("get card: %v", err)
	}
	defer resp.Body.Close()
	var got AgentCard
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode card: %v", err)
	}
	if got.Name != card.Name {
		t.Errorf("card.Name = %q, want %q", got.Name, card.Name)
	}

	health, err := http.Get(server.URL + "/health")
	if err != nil {
		t.Fatalf("get health: %v", err)
	}
	defer health.Body.Close()
	if health.StatusCode != http.StatusOK {
		t.Errorf("health status = %d, want 200", health.StatusCode)
	}
}
