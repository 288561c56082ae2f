package a2a

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

// echoAgent serves a real RPC endpoint whose skill replies with the
// given text.
func echoAgent(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	handler := NewHandler("echo", func(_ context.Context, _ Message) (Message, error) {
		return NewTextMessage(replyText, RoleAgent), nil
	})
	server := httptest.NewServer(NewServerMux(AgentCard{Name: "Echo"}, handler))
	t.Cleanup(server.Close)
	return server
}

func clientFor(endpoint string, callTimeout time.Duration) *Client {
	return NewClient(ClientConfig{
		Endpoints:   map[models.Capability]string{models.CapabilityData: endpoint + "/rpc"},
		CallTimeout: callTimeout,
	})
}

func TestClient_Call_StructuredReply(t *testing.T) {
	server := echoAgent(t, `{"summary":"two open tickets","handled":true}`)
	client := clientFor(server.URL, 0)

	reply := client.Call(context.Background(), models.CapabilityData, map[string]any{"request": "history"})

	if reply.Failed() {
		t.Fatalf("Call() failed: %+v", reply.Failure)
	}
	if got := reply.Result["summary"]; got != "two open tickets" {
		t.Errorf("Result[summary] = %v, want %q", got, "two open tickets")
	}
}

func TestClient_Call_RawStringReplyWrapped(t *testing.T) {
	server := echoAgent(t, "plain text, not JSON")
	client := clientFor(server.URL, 0)

	reply := client.Call(context.Background(), models.CapabilityData, map[string]any{})

	if reply.Failed() {
		t.Fatalf("Call() failed: %+v", reply.Failure)
	}
	if got := reply.Result["reply"]; got != "plain text, not JSON" {
		t.Errorf(`Result["reply"] = %v, want the raw text`, got)
	}
}

func TestClient_Call_FailureKinds(t *testing.T) {
	tests := []struct {
		name     string
		serve    http.HandlerFunc
		wantKind models.FailureKind
	}{
		{
			"non-2xx status",
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			models.FailureTransport,
		},
		{
			"json-rpc error object",
			func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0","error":{"code":-32000,"message":"boom"}}`))
			},
			models.FailureRemote,
		},
		{
			"empty result",
			func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"jsonrpc":"2.0"}`))
			},
			models.FailureRemote,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.serve)
			defer server.Close()
			client := clientFor(server.URL, 0)

			reply := client.Call(context.Background(), models.CapabilityData, map[string]any{})

			if !reply.Failed() {
				t.Fatal("Call() succeeded, want failure")
			}
			if reply.Failure.Kind != tt.wantKind {
				t.Errorf("Failure.Kind = %q, want %q", reply.Failure.Kind, tt.wantKind)
			}
		})
	}
}

func TestClient_Call_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer server.Close()
	client := clientFor(server.URL, 50*time.Millisecond)

	reply := client.Call(context.Background(), models.CapabilityData, map[string]any{})

	if !reply.Failed() {
		t.Fatal("Call() succeeded, want timeout failure")
	}
	if reply.Failure.Kind != models.FailureTimeout {
		t.Errorf("Failure.Kind = %q, want %q", reply.Failure.Kind, models.FailureTimeout)
	}
}

func TestClient_Call_UnknownCapability(t *testing.T) {
	client := NewClient(ClientConfig{Endpoints: map[models.Capability]string{}})

	reply := client.Call(context.Background(), models.CapabilityBilling, map[string]any{})

	if !reply.Failed() {
		t.Fatal("Call() succeeded, want failure")
	}
	if reply.Failure.Kind != models.FailureTransport {
		t.Errorf("Failure.Kind = %q, want %q", reply.Failure.Kind, models.FailureTransport)
	}
}

func TestParseReplyText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantKey string
	}{
		{"json object passes through", `{"reply":"hi","extra":1}`, "extra"},
		{"plain text wrapped", "hello there", "reply"},
		{"json array wrapped", `[1,2,3]`, "reply"},
		{"empty string wrapped", "", "reply"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseReplyText(tt.text)
			if _, ok := got[tt.wantKey]; !ok {
				t.Errorf("ParseReplyText(%q) = %v, missing key %q", tt.text, got, tt.wantKey)
			}
		})
	}
}
