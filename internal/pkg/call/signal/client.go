package signal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	call "github.com/pranishuprety/Respondrr/internal/pkg/call/domain"
)

const defaultSignalBaseURL = "http://localhost:3001"

var (
	// ErrInitiateCall wraps a failed initiate; no call exists afterwards.
	ErrInitiateCall = errors.New("signal: initiate call failed")

	// ErrCallAction wraps a failed accept/reject/end.
	ErrCallAction = errors.New("signal: call action failed")

	// ErrConflict means the record settled in a state the action cannot
	// leave. The losing side re-fetches and adopts.
	ErrConflict = errors.New("signal: conflicting call state")

	// ErrCallNotFound means no record exists for the id.
	ErrCallNotFound = errors.New("signal: call not found")
)

// Client is the typed HTTP client for the call signaling endpoints.
type Client struct {
	base string
	http *http.Client
}

// NewClient builds a client for the given signaling base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 15 * time.Second},
	}
}

// NewClientFromEnv reads SIGNAL_BASE_URL, defaulting to localhost:3001.
func NewClientFromEnv() *Client {
	base := strings.TrimSpace(os.Getenv("SIGNAL_BASE_URL"))
	if base == "" {
		base = defaultSignalBaseURL
	}
	return NewClient(base)
}

// InitiateResult is the initiator's half of a freshly rung call.
type InitiateResult struct {
	CallID   string `json:"call_id"`
	RoomName string `json:"room_name"`
	RoomURL  string `json:"room_url"`
	Token    string `json:"token"`
}

// AcceptResult is the callee's join credentials.
type AcceptResult struct {
	Token   string `json:"token"`
	RoomURL string `json:"room_url"`
}

func (c *Client) Initiate(ctx context.Context, conversationID, userID string) (*InitiateResult, error) {
	var out InitiateResult
	err := c.post(ctx, "/api/video/initiate-call", map[string]string{
		"conversation_id": conversationID,
		"initiated_by":    userID,
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInitiateCall, err)
	}
	return &out, nil
}

func (c *Client) Accept(ctx context.Context, callID, userID string) (*AcceptResult, error) {
	var out AcceptResult
	err := c.post(ctx, "/api/video/accept-call", map[string]string{
		"call_id":     callID,
		"accepted_by": userID,
	}, &out)
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrCallNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCallAction, err)
	}
	return &out, nil
}

func (c *Client) Reject(ctx context.Context, callID string) error {
	err := c.post(ctx, "/api/video/reject-call", map[string]string{"call_id": callID}, nil)
	if err != nil && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrCallNotFound) {
		return fmt.Errorf("%w: %v", ErrCallAction, err)
	}
	return err
}

func (c *Client) End(ctx context.Context, callID string) error {
	err := c.post(ctx, "/api/video/end-call", map[string]string{"call_id": callID}, nil)
	if err != nil && !errors.Is(err, ErrConflict) && !errors.Is(err, ErrCallNotFound) {
		return fmt.Errorf("%w: %v", ErrCallAction, err)
	}
	return err
}

// GetCall fetches the authoritative record, typically after a lost race.
func (c *Client) GetCall(ctx context.Context, callID string) (*call.Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/api/v1/video/calls/"+callID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrCallNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrCallAction, resp.StatusCode)
	}

	var row struct {
		ID             string     `json:"id"`
		ConversationID string     `json:"conversation_id"`
		StartedBy      string     `json:"started_by"`
		Status         string     `json:"status"`
		RoomName       string     `json:"room_name"`
		RoomURL        string     `json:"room_url"`
		CreatedAt      time.Time  `json:"created_at"`
		StartedAt      *time.Time `json:"started_at"`
		EndedAt        *time.Time `json:"ended_at"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&row); err != nil {
		return nil, err
	}
	return &call.Record{
		ID:             row.ID,
		ConversationID: row.ConversationID,
		StartedBy:      row.StartedBy,
		Status:         call.Status(row.Status),
		RoomName:       row.RoomName,
		RoomURL:        row.RoomURL,
		CreatedAt:      row.CreatedAt,
		StartedAt:      row.StartedAt,
		EndedAt:        row.EndedAt,
	}, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return ErrConflict
	case resp.StatusCode == http.StatusNotFound:
		return ErrCallNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
