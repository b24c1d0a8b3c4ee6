package realtime

import (
	"sync"
)

// Hub is the change notifier fan-out: it tracks websocket sessions and the
// conversations each session watches, and broadcasts row-change events to
// every watcher. Delivery is best-effort and at-most-once per event; clients
// reconcile gaps through their poll pass.
//
// Unlike a chat presence router, the hub deliberately allows many concurrent
// sessions per user and delivers broadcasts to the originating user's other
// sessions too, so multiple open tabs stay consistent.
type Hub struct {
	mu           sync.RWMutex
	sessions     map[string]*Connection            // sessionID -> connection
	userSessions map[string]map[string]struct{}    // userID -> set of sessionIDs
	watchers     map[string]map[string]*Connection // conversationID -> sessionID -> connection
	sessionSubs  map[string]map[string]struct{}    // sessionID -> set of conversationIDs
}

// NewHub constructs an initialized Hub.
func NewHub() *Hub {
	return &Hub{
		sessions:     make(map[string]*Connection),
		userSessions: make(map[string]map[string]struct{}),
		watchers:     make(map[string]map[string]*Connection),
		sessionSubs:  make(map[string]map[string]struct{}),
	}
}

// Attach registers a connection and starts its write loop.
func (h *Hub) Attach(conn *Connection) {
	h.mu.Lock()
	h.sessions[conn.ID] = conn
	set := h.userSessions[conn.UserID]
	if set == nil {
		set = make(map[string]struct{})
		h.userSessions[conn.UserID] = set
	}
	set[conn.ID] = struct{}{}
	h.sessionSubs[conn.ID] = make(map[string]struct{})
	h.mu.Unlock()

	conn.Start()
}

// Detach removes a connection and all of its subscriptions.
func (h *Hub) Detach(conn *Connection) {
	h.mu.Lock()
	h.detachLocked(conn.ID)
	h.mu.Unlock()
}

// Watch subscribes the connection to change events for the conversation.
func (h *Hub) Watch(conversationID string, conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.sessions[conn.ID]; !ok {
		return
	}

	room := h.watchers[conversationID]
	if room == nil {
		room = make(map[string]*Connection)
		h.watchers[conversationID] = room
	}
	room[conn.ID] = conn

	subs := h.sessionSubs[conn.ID]
	if subs == nil {
		subs = make(map[string]struct{})
		h.sessionSubs[conn.ID] = subs
	}
	subs[conversationID] = struct{}{}
}

// Unwatch drops the connection's subscription for the conversation.
func (h *Hub) Unwatch(conversationID string, conn *Connection) {
	h.mu.Lock()
	h.unwatchLocked(conversationID, conn.ID)
	h.mu.Unlock()
}

// Broadcast delivers payload to every session watching the conversation,
// including other sessions of the user that caused the change. Returns the
// number of sessions the payload was handed to.
func (h *Hub) Broadcast(conversationID string, payload []byte) int {
	h.mu.RLock()
	room := h.watchers[conversationID]
	if len(room) == 0 {
		h.mu.RUnlock()
		return 0
	}

	delivered := 0
	for _, conn := range room {
		if err := conn.Send(payload); err == nil {
			delivered++
		}
	}
	h.mu.RUnlock()
	return delivered
}

// Close terminates all tracked connections and clears hub state.
func (h *Hub) Close() {
	h.mu.Lock()
	conns := make([]*Connection, 0, len(h.sessions))
	for _, conn := range h.sessions {
		conns = append(conns, conn)
	}
	h.sessions = make(map[string]*Connection)
	h.userSessions = make(map[string]map[string]struct{})
	h.watchers = make(map[string]map[string]*Connection)
	h.sessionSubs = make(map[string]map[string]struct{})
	h.mu.Unlock()

	for _, conn := range conns {
		conn.Close(1001, "hub shutdown")
	}
}

func (h *Hub) detachLocked(sessionID string) {
	conn, ok := h.sessions[sessionID]
	if !ok {
		return
	}
	delete(h.sessions, sessionID)

	if set, ok := h.userSessions[conn.UserID]; ok {
		delete(set, sessionID)
		if len(set) == 0 {
			delete(h.userSessions, conn.UserID)
		}
	}

	for convID := range h.sessionSubs[sessionID] {
		h.unwatchLocked(convID, sessionID)
	}
	delete(h.sessionSubs, sessionID)
}

func (h *Hub) unwatchLocked(conversationID string, sessionID string) {
	room := h.watchers[conversationID]
	if room == nil {
		return
	}
	delete(room, sessionID)
	if len(room) == 0 {
		delete(h.watchers, conversationID)
	}
	if subs, ok := h.sessionSubs[sessionID]; ok {
		delete(subs, conversationID)
		if len(subs) == 0 {
			delete(h.sessionSubs, sessionID)
		}
	}
}
