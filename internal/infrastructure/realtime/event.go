package realtime

import "encoding/json"

// Watched tables.
const (
	TableMessages   = "messages"
	TableVideoCalls = "video_calls"
)

// EventKind is the row-change variant carried by a push event.
type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
)

// Event is the wire form of one row-change notification, filtered by
// conversation. The row payload stays raw JSON here; subscribers decode it
// against the table they asked for.
type Event struct {
	Table          string          `json:"table"`
	Kind           EventKind       `json:"kind"`
	ConversationID string          `json:"conversation_id"`
	Row            json.RawMessage `json:"row"`
}

// EventFrame is the server-to-client envelope used on the notifier socket.
type EventFrame struct {
	Type  string `json:"type"` // always "event"
	Event Event  `json:"event"`
}

// NewEvent marshals row into an Event for the given table and kind.
func NewEvent(table string, kind EventKind, conversationID string, row any) (Event, error) {
	raw, err := json.Marshal(row)
	if err != nil {
		return Event{}, err
	}
	return Event{Table: table, Kind: kind, ConversationID: conversationID, Row: raw}, nil
}

// EncodeEventFrame renders the envelope for hub broadcast.
func EncodeEventFrame(ev Event) ([]byte, error) {
	return json.Marshal(EventFrame{Type: "event", Event: ev})
}
