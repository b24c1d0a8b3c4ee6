package port

import "context"

// Room is the media session handle issued by the session host. Both sides of
// an accepted call mount the same room.
type Room struct {
	Name string
	URL  string
}

// RoomProvider creates media rooms and mints per-user meeting tokens. The
// provider is the only party that talks to the media backend; the signaling
// layer trusts its responses.
type RoomProvider interface {
	CreateRoom(ctx context.Context, conversationID string) (Room, error)
	MeetingToken(ctx context.Context, roomName, userName string) (string, error)
}
