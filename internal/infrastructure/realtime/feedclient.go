package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// FeedClient is the client side of the change notifier: it holds one
// websocket to the notifier endpoint and dispatches decoded events to
// per-conversation handlers. Delivery mirrors the server's guarantees:
// best-effort, at-most-once; consumers reconcile through their poll pass.
type FeedClient struct {
	conn *websocket.Conn

	mu       sync.Mutex
	handlers map[string]map[int]func(Event) // conversationID -> handlerID -> fn
	nextID   int
	closed   bool
}

// DialFeed connects to the notifier socket of the backend at baseURL
// (http/https scheme accepted and rewritten to ws/wss).
func DialFeed(ctx context.Context, baseURL, userID string) (*FeedClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("feed: parse url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path += "/api/v1/ws"
	q := u.Query()
	q.Set("user_id", userID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("feed: dial: %w", err)
	}

	c := &FeedClient{
		conn:     conn,
		handlers: make(map[string]map[int]func(Event)),
	}
	go c.readLoop()
	return c, nil
}

// Subscribe registers fn for the conversation's events and returns an
// unsubscribe func. The server-side subscription is issued on the first
// handler and torn down when the last one is removed.
func (c *FeedClient) Subscribe(conversationID string, fn func(Event)) (func(), error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, fmt.Errorf("feed: client closed")
	}
	set := c.handlers[conversationID]
	first := set == nil
	if first {
		set = make(map[int]func(Event))
		c.handlers[conversationID] = set
	}
	c.nextID++
	id := c.nextID
	set[id] = fn
	c.mu.Unlock()

	if first {
		if err := c.writeFrame("subscribe", conversationID); err != nil {
			c.removeHandler(conversationID, id, false)
			return nil, err
		}
	}

	return func() { c.removeHandler(conversationID, id, true) }, nil
}

// Close tears down the socket; pending handlers stop receiving events.
func (c *FeedClient) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.handlers = make(map[string]map[int]func(Event))
	c.mu.Unlock()
	return c.conn.Close()
}

func (c *FeedClient) removeHandler(conversationID string, id int, notifyServer bool) {
	c.mu.Lock()
	set := c.handlers[conversationID]
	delete(set, id)
	last := len(set) == 0
	if last {
		delete(c.handlers, conversationID)
	}
	closed := c.closed
	c.mu.Unlock()

	if last && notifyServer && !closed {
		_ = c.writeFrame("unsubscribe", conversationID)
	}
}

func (c *FeedClient) writeFrame(frameType, conversationID string) error {
	payload, err := json.Marshal(map[string]string{
		"type":            frameType,
		"conversation_id": conversationID,
	})
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *FeedClient) readLoop() {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			_ = c.Close()
			return
		}

		var frame EventFrame
		if err := json.Unmarshal(data, &frame); err != nil || frame.Type != "event" {
			// acks and unknown frames are ignored
			continue
		}

		c.mu.Lock()
		set := c.handlers[frame.Event.ConversationID]
		fns := make([]func(Event), 0, len(set))
		for _, fn := range set {
			fns = append(fns, fn)
		}
		c.mu.Unlock()

		for _, fn := range fns {
			fn(frame.Event)
		}
	}
}
