package a2a

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/helpdesk/pkg/models"
)

const (
	// DefaultConnectTimeout bounds connection establishment. Kept
	// shorter than the call timeout so a dead host fails fast.
	DefaultConnectTimeout = 5 * time.Second
	// DefaultCallTimeout bounds one full capability round trip.
	DefaultCallTimeout = 30 * time.Second
)

// ClientConfig contains configuration for creating a new Client.
type ClientConfig struct {
	// Endpoints maps each capability to its JSON-RPC URL.
	Endpoints map[models.Capability]string
	// ConnectTimeout bounds connection establishment. Zero uses the default.
	ConnectTimeout time.Duration
	// CallTimeout bounds the whole request. Zero uses the default.
	CallTimeout time.Duration
}

// Client dispatches payloads to remote capabilities over the JSON-RPC
// transport. One Client is shared process-wide so outbound connections
// are pooled; per-call state lives entirely in the arguments.
type Client struct {
	httpClient *http.Client
	endpoints  map[models.Capability]string
}

// NewClient creates a capability client with pooled connections.
func NewClient(cfg ClientConfig) *Client {
	connect := cfg.ConnectTimeout
	if connect == 0 {
		connect = DefaultConnectTimeout
	}
	call := cfg.CallTimeout
	if call == 0 {
		call = DefaultCallTimeout
	}

	dialer := &net.Dialer{Timeout: connect}
	return &Client{
		httpClient: &http.Client{
			Timeout: call,
			Transport: &http.Transport{
				DialContext:         dialer.DialContext,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		endpoints: cfg.Endpoints,
	}
}

// Call sends the payload to the named capability and returns either the
// specialist's structured reply or a typed failure. It never returns an
// error: every failure mode is folded into the reply so the caller can
// record it and keep going.
func (c *Client) Call(ctx context.Context, capability models.Capability, payload map[string]any) models.CapabilityReply {
	endpoint, ok := c.endpoints[capability]
	if !ok {
		return failure(models.FailureTransport, fmt.Sprintf("no endpoint configured for capability %q", capability))
	}

	text, err := json.Marshal(payload)
	if err != nil {
		return failure(models.FailureTransport, fmt.Sprintf("encode payload: %v", err))
	}

	params, err := json.Marshal(MessageSendParams{
		Message: NewTextMessage(string(text), RoleUser),
	})
	if err != nil {
		return failure(models.FailureTransport, fmt.Sprintf("encode params: %v", err))
	}

	body, err := json.Marshal(Request{
		JSONRPC: "2.0",
		ID:      uuid.New().String(),
		Method:  "message/send",
		Params:  params,
	})
	if err != nil {
		return failure(models.FailureTransport, fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failure(models.FailureTransport, fmt.Sprintf("build request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return failure(models.FailureTimeout, fmt.Sprintf("call to %s timed out", capability))
		}
		return failure(models.FailureTransport, fmt.Sprintf("call to %s failed: %v", capability, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return failure(models.FailureTransport, fmt.Sprintf("capability %s returned status %d", capability, resp.StatusCode))
	}

	var rpcResp Response
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return failure(models.FailureTransport, fmt.Sprintf("decode response from %s: %v", capability, err))
	}
	if rpcResp.Error != nil {
		return failure(models.FailureRemote, fmt.Sprintf("capability %s error %d: %s", capability, rpcResp.Error.Code, rpcResp.Error.Message))
	}
	if rpcResp.Result == nil {
		return failure(models.FailureRemote, fmt.Sprintf("capability %s returned no result", capability))
	}

	var task Task
	if err := json.Unmarshal(rpcResp.Result, &task); err != nil {
		return failure(models.FailureRemote, fmt.Sprintf("decode task from %s: %v", capability, err))
	}

	return models.CapabilityReply{Result: ParseReplyText(task.Reply())}
}

// ParseReplyText interprets a specialist's reply text as a JSON object
// when possible; anything else is wrapped as {"reply": text} so a
// malformed reply degrades to a raw string instead of an error.
func ParseReplyText(text string) map[string]any {
	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed != nil {
		return parsed
	}
	return map[string]any{"reply": text}
}

func failure(kind models.FailureKind, detail string) models.CapabilityReply {
	return models.CapabilityReply{Failure: &models.CapabilityFailure{Kind: kind, Detail: detail}}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
