package messaging

import (
	"errors"
	"testing"
	"time"
)

func strptr(s string) *string { return &s }

func TestNewMessageTrimsBody(t *testing.T) {
	msg, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Body:           strptr("  hello  "),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Body == nil || *msg.Body != "hello" {
		t.Errorf("expected trimmed body, got %v", msg.Body)
	}
	if msg.MsgType != MessageTypeText {
		t.Errorf("expected default type text, got %s", msg.MsgType)
	}
	if msg.CreatedAt.IsZero() {
		t.Error("expected created_at to be stamped")
	}
}

func TestNewMessageRejectsEmpty(t *testing.T) {
	_, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", Body: strptr("   ")})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage, got %v", err)
	}

	_, err = NewMessage(Message{SenderID: "u1", Body: strptr("hi")})
	if !errors.Is(err, ErrMessageIdentity) {
		t.Errorf("expected ErrMessageIdentity, got %v", err)
	}
}

func TestNewMessageMixedNeedsContent(t *testing.T) {
	_, err := NewMessage(Message{ConversationID: "c1", SenderID: "u1", MsgType: MessageTypeMixed})
	if !errors.Is(err, ErrEmptyMessage) {
		t.Errorf("expected ErrEmptyMessage for empty mixed message, got %v", err)
	}

	msg, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		MsgType:        MessageTypeMixed,
		Attachments:    []Attachment{{Bucket: "attachments", ObjectPath: "a/b", FileName: "scan.png"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Body != nil {
		t.Errorf("expected nil body, got %v", msg.Body)
	}
}

func TestNewMessageRejectsUnknownType(t *testing.T) {
	_, err := NewMessage(Message{
		ConversationID: "c1",
		SenderID:       "u1",
		Body:           strptr("hi"),
		MsgType:        MessageType("weird"),
	})
	if !errors.Is(err, ErrBadMessageType) {
		t.Errorf("expected ErrBadMessageType, got %v", err)
	}

	for _, typ := range []MessageType{MessageTypeText, MessageTypeMixed} {
		if !typ.Valid() {
			t.Errorf("expected %q to be valid", typ)
		}
	}
	if MessageType("missed").Valid() {
		t.Error("unknown type passed validation")
	}
}

func TestConversationParticipants(t *testing.T) {
	conv, err := NewConversation("patient-1", "doctor-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !conv.HasParticipant("patient-1") || !conv.HasParticipant("doctor-1") {
		t.Error("expected both parties to be participants")
	}
	if conv.HasParticipant("other") {
		t.Error("expected non-party to be rejected")
	}
	if peer := conv.PeerOf("patient-1"); peer != "doctor-1" {
		t.Errorf("expected doctor-1, got %s", peer)
	}

	if _, err := NewConversation("same", "same", time.Now()); !errors.Is(err, ErrConversationParties) {
		t.Errorf("expected ErrConversationParties, got %v", err)
	}
}
